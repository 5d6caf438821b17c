package container

import (
	"fmt"
	"log/slog"

	"gocer/adapters/dataset"
	"gocer/adapters/logreg"
	"gocer/adapters/metrics"
	"gocer/adapters/preprocess"
	"gocer/app"
	"gocer/domain/registry"
	"gocer/internal/config"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Data
	Registry *registry.Registry
	Store    *dataset.Store

	// Services
	Evaluation *app.EvaluationService
	Reports    *app.ReportService
	Experiment *app.ExperimentService
}

// New creates the dependency container. The dataset is loaded eagerly and
// checked against the registry so bad data fails before any table is printed.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: registry.Default(),
	}

	if err := c.initStore(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}

	logger.Debug("container initialized",
		"data", c.dataSource(),
		"workers", cfg.Evaluation.Workers,
		"regularizer", cfg.Evaluation.Regularizer,
		"interval", cfg.Evaluation.IntervalLevel,
	)
	return c, nil
}

func (c *Container) initStore() error {
	var (
		store *dataset.Store
		err   error
	)
	if c.Config.Data.File == "" {
		store, err = dataset.LoadEmbedded(c.Logger)
	} else {
		store, err = dataset.LoadFile(c.Config.Data.File, c.Logger)
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset %s: %w", c.dataSource(), err)
	}
	if err := store.CheckRegistry(c.Registry); err != nil {
		return fmt.Errorf("dataset %s does not match the registry: %w", c.dataSource(), err)
	}
	c.Store = store
	return nil
}

func (c *Container) initServices() error {
	eval := c.Config.Evaluation

	deps := app.EvaluationDeps{
		Data:       c.Store,
		Normalizer: preprocess.NewZScore(),
		Trainer: logreg.NewTrainer(
			logreg.WithRegularizer(eval.Regularizer),
			logreg.WithMaxIterations(eval.MaxIterations),
			logreg.WithLogger(c.Logger),
		),
		Labeler: logreg.NewLabeler(),
		Metric:  metrics.NewErrorRate(),
	}
	if eval.IntervalLevel > 0 {
		deps.Interval = metrics.NewErrorRate()
		deps.IntervalLevel = eval.IntervalLevel
	}

	evaluation, err := app.NewEvaluationService(c.Registry, deps, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create evaluation service: %w", err)
	}
	c.Evaluation = evaluation
	c.Reports = app.NewReportService(c.Registry, evaluation, eval.Workers, c.Logger)
	c.Experiment = app.NewExperimentService(c.Registry, c.Reports, c.Logger)
	return nil
}

func (c *Container) dataSource() string {
	if c.Config.Data.File == "" {
		return "(embedded iris)"
	}
	return c.Config.Data.File
}
