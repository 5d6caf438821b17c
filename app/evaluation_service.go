package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/domain/sample"
	"gocer/internal/logging"
	"gocer/ports"
)

// EvaluationDeps bundles the collaborators of one evaluation
type EvaluationDeps struct {
	Data       ports.DataAccessPort
	Normalizer ports.NormalizerPort
	Trainer    ports.TrainerPort
	Labeler    ports.LabelerPort
	Metric     ports.MetricPort

	// Interval is optional; with a zero IntervalLevel it is never called
	Interval      ports.IntervalPort
	IntervalLevel float64
}

// EvaluationService runs the train -> normalize -> fit -> predict -> score cycle
// for one protocol and variable subset. Every call owns its normalization model
// and classifier, so calls are independent and may run concurrently.
type EvaluationService struct {
	registry *registry.Registry
	deps     EvaluationDeps
	logger   *slog.Logger
}

// NewEvaluationService creates an evaluation service
func NewEvaluationService(reg *registry.Registry, deps EvaluationDeps, logger *slog.Logger) (*EvaluationService, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if deps.Data == nil || deps.Normalizer == nil || deps.Trainer == nil || deps.Labeler == nil || deps.Metric == nil {
		return nil, fmt.Errorf("data, normalizer, trainer, labeler and metric collaborators are required")
	}
	if deps.IntervalLevel != 0 && deps.Interval == nil {
		return nil, fmt.Errorf("interval level %g set without an interval collaborator", deps.IntervalLevel)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationService{
		registry: reg,
		deps:     deps,
		logger:   logger,
	}, nil
}

// EvaluateSubset returns the test-split CER of a classifier trained on the
// training split of protocol using only variables. Failures carry the protocol
// and subset and keep their kind (see core.Kind).
func (s *EvaluationService) EvaluateSubset(ctx context.Context, protocol registry.Protocol, variables []registry.Variable) (sample.Result, error) {
	names := registry.Names(variables)
	fail := func(err error) (sample.Result, error) {
		return sample.Result{}, core.NewEvaluationError(string(protocol), names, err)
	}

	if !s.registry.HasProtocol(protocol) {
		return fail(core.NewInvalidSelectionError("protocol", fmt.Sprintf("unknown protocol %q", protocol)))
	}
	if err := s.registry.ValidateSubset(variables); err != nil {
		return fail(err)
	}

	start := time.Now()
	classes := s.registry.Classes()

	train, err := s.deps.Data.Get(ctx, protocol, registry.SplitTrain, classes, variables)
	if err != nil {
		return fail(err)
	}
	if err := train.CheckNonEmpty(protocol, registry.SplitTrain); err != nil {
		return fail(err)
	}

	norm, err := s.deps.Normalizer.Fit(train.Stack())
	if err != nil {
		return fail(nameColumn(err, variables))
	}

	trainNormed, err := s.deps.Normalizer.Apply(train, norm)
	if err != nil {
		return fail(err)
	}

	classifier, err := s.deps.Trainer.Train(ctx, trainNormed)
	if err != nil {
		return fail(err)
	}

	test, err := s.deps.Data.Get(ctx, protocol, registry.SplitTest, classes, variables)
	if err != nil {
		return fail(err)
	}
	if err := test.CheckNonEmpty(protocol, registry.SplitTest); err != nil {
		return fail(err)
	}

	// the model fit on training rows; test rows never feed back into it
	testNormed, err := s.deps.Normalizer.Apply(test, norm)
	if err != nil {
		return fail(err)
	}

	predictions, err := classifier.Predict(testNormed.Stack())
	if err != nil {
		return fail(err)
	}
	labels := s.deps.Labeler.MakeLabels(testNormed)

	cer, err := s.deps.Metric.CER(predictions, labels)
	if err != nil {
		return fail(err)
	}

	result := sample.Result{
		Protocol:  protocol,
		Variables: append([]registry.Variable(nil), variables...),
		CER:       cer,
		Total:     len(labels),
		Errors:    int(math.Round(cer * float64(len(labels)))),
	}

	if s.deps.IntervalLevel > 0 {
		iv, err := s.deps.Interval.Interval(result.Errors, result.Total, s.deps.IntervalLevel)
		if err != nil {
			return fail(err)
		}
		result.Interval = &iv
	}

	logging.FromContext(ctx, s.logger).Debug("subset evaluated",
		"component", "evaluation",
		"protocol", protocol,
		"variables", result.Label(),
		"cer", cer,
		"train_counts", train.Counts(),
		"test_counts", test.Counts(),
		"test_samples", result.Total,
		"elapsed", time.Since(start),
	)
	return result, nil
}

// nameColumn rewrites a degenerate-variance error from the normalizer, which only
// knows column positions, so it names the variable instead.
func nameColumn(err error, variables []registry.Variable) error {
	var col *core.VarianceError
	if errors.As(err, &col) && col.Name == "" && col.Column >= 0 && col.Column < len(variables) {
		return core.NewDegenerateVarianceError(col.Column, string(variables[col.Column]))
	}
	return err
}
