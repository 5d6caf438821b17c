package app

import (
	"context"

	"gocer/domain/registry"
	"gocer/domain/sample"
	"gocer/ports"

	"github.com/stretchr/testify/mock"
	"gonum.org/v1/gonum/mat"
)

// Mock implementations for testing
type MockDataAccess struct {
	mock.Mock
}

func (m *MockDataAccess) Get(ctx context.Context, protocol registry.Protocol, split registry.Split, classes []registry.Class, variables []registry.Variable) (*sample.Group, error) {
	args := m.Called(ctx, protocol, split, classes, variables)
	g, _ := args.Get(0).(*sample.Group)
	return g, args.Error(1)
}

type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Fit(pooled *mat.Dense) (*sample.NormModel, error) {
	args := m.Called(pooled)
	nm, _ := args.Get(0).(*sample.NormModel)
	return nm, args.Error(1)
}

func (m *MockNormalizer) Apply(g *sample.Group, nm *sample.NormModel) (*sample.Group, error) {
	args := m.Called(g, nm)
	out, _ := args.Get(0).(*sample.Group)
	return out, args.Error(1)
}

type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Train(ctx context.Context, g *sample.Group) (ports.ClassifierPort, error) {
	args := m.Called(ctx, g)
	c, _ := args.Get(0).(ports.ClassifierPort)
	return c, args.Error(1)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Predict(x mat.Matrix) ([]int, error) {
	args := m.Called(x)
	p, _ := args.Get(0).([]int)
	return p, args.Error(1)
}

type MockLabeler struct {
	mock.Mock
}

func (m *MockLabeler) MakeLabels(g *sample.Group) []int {
	args := m.Called(g)
	return args.Get(0).([]int)
}

type MockMetric struct {
	mock.Mock
}

func (m *MockMetric) CER(predictions, labels []int) (float64, error) {
	args := m.Called(predictions, labels)
	return args.Get(0).(float64), args.Error(1)
}

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) EvaluateSubset(ctx context.Context, protocol registry.Protocol, variables []registry.Variable) (sample.Result, error) {
	args := m.Called(ctx, protocol, variables)
	return args.Get(0).(sample.Result), args.Error(1)
}

// spyNormalizer wraps a real normalizer and keeps every fitted model
type spyNormalizer struct {
	ports.NormalizerPort
	fitted  []*sample.NormModel
	applied []*sample.NormModel
}

func (s *spyNormalizer) Fit(pooled *mat.Dense) (*sample.NormModel, error) {
	m, err := s.NormalizerPort.Fit(pooled)
	if err == nil {
		s.fitted = append(s.fitted, &sample.NormModel{
			Mean: append([]float64(nil), m.Mean...),
			Std:  append([]float64(nil), m.Std...),
		})
	}
	return m, err
}

func (s *spyNormalizer) Apply(g *sample.Group, m *sample.NormModel) (*sample.Group, error) {
	s.applied = append(s.applied, m)
	return s.NormalizerPort.Apply(g, m)
}

// fixedData serves canned train and test groups
type fixedData struct {
	train, test *sample.Group
}

func (f *fixedData) Get(_ context.Context, _ registry.Protocol, split registry.Split, _ []registry.Class, _ []registry.Variable) (*sample.Group, error) {
	if split == registry.SplitTrain {
		return f.train, nil
	}
	return f.test, nil
}
