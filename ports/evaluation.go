package ports

import (
	"context"

	"gocer/domain/registry"
	"gocer/domain/sample"

	"gonum.org/v1/gonum/mat"
)

// DataAccessPort serves per-class sample matrices for one protocol split.
// Implementations fail with core.ErrDataUnavailable for unknown protocols,
// splits, classes or variables and must be safe for concurrent reads.
type DataAccessPort interface {
	Get(ctx context.Context, protocol registry.Protocol, split registry.Split, classes []registry.Class, variables []registry.Variable) (*sample.Group, error)
}

// NormalizerPort estimates a location/scale model and applies it column-wise
type NormalizerPort interface {
	// Fit estimates the model from pooled training rows
	Fit(pooled *mat.Dense) (*sample.NormModel, error)

	// Apply returns a new group with the model applied; the input is not modified
	Apply(g *sample.Group, m *sample.NormModel) (*sample.Group, error)
}

// TrainerPort fits a multi-class classifier from a normalized training group.
// Class labels are the entry positions in the group.
type TrainerPort interface {
	Train(ctx context.Context, g *sample.Group) (ClassifierPort, error)
}

// ClassifierPort predicts a class label for each row of x
type ClassifierPort interface {
	Predict(x mat.Matrix) ([]int, error)
}

// LabelerPort derives ground-truth labels aligned with Group.Stack
type LabelerPort interface {
	MakeLabels(g *sample.Group) []int
}

// MetricPort scores predictions against ground truth
type MetricPort interface {
	CER(predictions, labels []int) (float64, error)
}

// IntervalPort derives a confidence interval for an error count
type IntervalPort interface {
	Interval(errors, total int, level float64) (sample.Interval, error)
}
