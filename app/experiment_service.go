package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/internal/logging"
)

// Selection is what the analyst asked for. A nil Case runs every kind; a nil
// Protocols selects every registry protocol. A non-nil but empty Protocols is
// rejected.
type Selection struct {
	Case      *int
	Protocols []string
}

// CaseOf returns a selection case pointer for n
func CaseOf(n int) *int {
	return &n
}

// ExperimentSummary reports what a run printed
type ExperimentSummary struct {
	RunID  core.RunID
	Kinds  []ReportKind
	Tables int
	Rows   int
}

// ExperimentService chooses which reports to run and threads table numbers
// across them
type ExperimentService struct {
	registry *registry.Registry
	reports  *ReportService
	logger   *slog.Logger
}

// NewExperimentService creates an experiment service
func NewExperimentService(reg *registry.Registry, reports *ReportService, logger *slog.Logger) *ExperimentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExperimentService{
		registry: reg,
		reports:  reports,
		logger:   logger,
	}
}

// Plan validates sel and returns the kinds and protocols to run. It never
// evaluates anything.
func (s *ExperimentService) Plan(sel Selection) ([]ReportKind, []registry.Protocol, error) {
	kinds := AllKinds()
	if sel.Case != nil {
		kind, err := ParseCase(*sel.Case)
		if err != nil {
			return nil, nil, err
		}
		kinds = []ReportKind{kind}
	}

	if sel.Protocols != nil && len(sel.Protocols) == 0 {
		return nil, nil, core.NewInvalidSelectionError("protocol", "empty protocol list")
	}
	protocols, err := s.registry.ParseProtocols(sel.Protocols)
	if err != nil {
		return nil, nil, err
	}
	return kinds, protocols, nil
}

// Run prints the selected reports to w. Table numbers start at 1 and continue
// across kinds. The first failure stops the run; the kind that failed prints
// nothing.
func (s *ExperimentService) Run(ctx context.Context, w io.Writer, sel Selection) (ExperimentSummary, error) {
	kinds, protocols, err := s.Plan(sel)
	if err != nil {
		return ExperimentSummary{}, err
	}

	runID := core.NewRunID()
	logger := s.logger.With("run_id", runID.String())
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("experiment started",
		"kinds", len(kinds),
		"protocols", fmt.Sprint(protocols),
		"registry", s.registry.Fingerprint().Short(),
	)
	start := time.Now()

	summary := ExperimentSummary{RunID: runID}
	table := 1
	for _, kind := range kinds {
		rs, err := s.reports.RunReport(ctx, w, kind, table, protocols)
		if err != nil {
			return summary, fmt.Errorf("%s report: %w", kind, err)
		}
		table = rs.NextTable
		summary.Kinds = append(summary.Kinds, kind)
		summary.Tables += rs.Tables
		summary.Rows += rs.Rows
	}

	logger.Info("experiment finished", "tables", summary.Tables, "rows", summary.Rows, "elapsed", time.Since(start))
	return summary, nil
}
