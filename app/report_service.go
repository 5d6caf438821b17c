package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/domain/sample"
	"gocer/internal/logging"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ReportKind is one of the four combinatorial report strategies
type ReportKind int

const (
	KindSingle ReportKind = iota + 1
	KindPair
	KindTriple
	KindAll
)

// AllKinds lists the kinds in the order a full run prints them
func AllKinds() []ReportKind {
	return []ReportKind{KindSingle, KindPair, KindTriple, KindAll}
}

// ParseCase maps the command-line case number 1..4 to a kind
func ParseCase(n int) (ReportKind, error) {
	k := ReportKind(n)
	if k < KindSingle || k > KindAll {
		return 0, core.NewInvalidSelectionError("case", fmt.Sprintf("%d is not one of 1, 2, 3, 4", n))
	}
	return k, nil
}

func (k ReportKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindPair:
		return "pair"
	case KindTriple:
		return "triple"
	case KindAll:
		return "all"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title is the table caption
func (k ReportKind) Title() string {
	switch k {
	case KindSingle:
		return "Single variables"
	case KindPair:
		return "Variable combinations, 2x2"
	case KindTriple:
		return "Variable combinations, 3x3"
	default:
		return "All variables"
	}
}

// LabelWidth is the padded width of the label column
func (k ReportKind) LabelWidth() int {
	switch k {
	case KindSingle:
		return 15
	case KindPair:
		return 30
	default:
		return 45
	}
}

// Subsets enumerates the variable subsets of kind in report order
func (k ReportKind) Subsets(vars []registry.Variable) [][]registry.Variable {
	switch k {
	case KindSingle:
		return registry.Combinations(vars, 1)
	case KindPair:
		return registry.Combinations(vars, 2)
	case KindTriple:
		return registry.Combinations(vars, 3)
	case KindAll:
		return [][]registry.Variable{append([]registry.Variable(nil), vars...)}
	}
	return nil
}

// ruleWidth is the length of the dashed line under each table caption
const ruleWidth = 60

// Evaluator runs one subset evaluation
type Evaluator interface {
	EvaluateSubset(ctx context.Context, protocol registry.Protocol, variables []registry.Variable) (sample.Result, error)
}

// ReportRow is one printed line
type ReportRow struct {
	Label  string
	Result sample.Result
}

// ReportTable holds every row of one protocol under one kind
type ReportTable struct {
	Number   int
	Kind     ReportKind
	Protocol registry.Protocol
	Rows     []ReportRow
}

// ReportSummary tells the caller how much of the numbering a report consumed
type ReportSummary struct {
	Rows      int
	Tables    int
	NextTable int
}

// ReportService enumerates subsets, drives evaluations and renders tables
type ReportService struct {
	registry  *registry.Registry
	evaluator Evaluator
	workers   int
	logger    *slog.Logger
}

// NewReportService creates a report service. workers bounds concurrent
// evaluations; values below 1 mean 1.
func NewReportService(reg *registry.Registry, evaluator Evaluator, workers int, logger *slog.Logger) *ReportService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		registry:  reg,
		evaluator: evaluator,
		workers:   workers,
		logger:    logger,
	}
}

// BuildTables evaluates every subset of kind for every protocol. Tables are
// numbered from startTable, one per protocol. Nothing is returned unless every
// evaluation succeeded.
func (s *ReportService) BuildTables(ctx context.Context, kind ReportKind, startTable int, protocols []registry.Protocol) ([]ReportTable, error) {
	subsets := kind.Subsets(s.registry.Variables())
	if len(subsets) == 0 {
		return nil, core.NewInvalidSelectionError("kind", fmt.Sprintf("%s has no subsets over %d variables", kind, len(s.registry.Variables())))
	}

	tables := make([]ReportTable, len(protocols))
	for i, p := range protocols {
		tables[i] = ReportTable{
			Number:   startTable + i,
			Kind:     kind,
			Protocol: p,
			Rows:     make([]ReportRow, len(subsets)),
		}
	}

	logger := logging.FromContext(ctx, s.logger).With("component", "report", "kind", kind.String())
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(s.workers))

launch:
	for ti := range tables {
		for si, subset := range subsets {
			ti, si, subset := ti, si, subset // per-iteration copies (pre-Go 1.22 loopvar semantics)
			if err := sem.Acquire(gctx, 1); err != nil {
				break launch
			}
			g.Go(func() error {
				defer sem.Release(1)
				res, err := s.evaluator.EvaluateSubset(gctx, tables[ti].Protocol, subset)
				if err != nil {
					return err
				}
				tables[ti].Rows[si] = ReportRow{Label: sample.Label(subset), Result: res}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("report aborted", "error", err, "failure", core.Kind(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("report computed",
		"protocols", len(protocols), "subsets", len(subsets), "workers", s.workers, "elapsed", time.Since(start))
	return tables, nil
}

// RunReport computes every table of kind and only then writes them to w in
// canonical order.
func (s *ReportService) RunReport(ctx context.Context, w io.Writer, kind ReportKind, startTable int, protocols []registry.Protocol) (ReportSummary, error) {
	tables, err := s.BuildTables(ctx, kind, startTable, protocols)
	if err != nil {
		return ReportSummary{}, err
	}

	bw := bufio.NewWriter(w)
	rows := 0
	for _, t := range tables {
		rows += len(t.Rows)
		if err := RenderTable(bw, t); err != nil {
			return ReportSummary{}, err
		}
	}
	if err := bw.Flush(); err != nil {
		return ReportSummary{}, fmt.Errorf("failed to write report: %w", err)
	}

	return ReportSummary{
		Rows:      rows,
		Tables:    len(tables),
		NextTable: startTable + len(tables),
	}, nil
}

// RenderTable writes the caption, rule and rows of one table
func RenderTable(w io.Writer, t ReportTable) error {
	if _, err := fmt.Fprintf(w, "\nTable %d: %s for Protocol `%s`:\n%s\n",
		t.Number, t.Kind.Title(), t.Protocol, strings.Repeat("-", ruleWidth)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(w, FormatRow(row.Label, t.Kind.LabelWidth(), row.Result)); err != nil {
			return err
		}
	}
	return nil
}

// FormatRow renders "label | NN%". The label is left-aligned and padded to width;
// longer labels are printed whole.
func FormatRow(label string, width int, res sample.Result) string {
	line := fmt.Sprintf("%-*s | %d%%", width, label, Percent(res.CER))
	if res.Interval != nil {
		line += fmt.Sprintf(" [%d%%, %d%%]", Percent(res.Interval.Lower), Percent(res.Interval.Upper))
	}
	return line
}

// Percent converts a fraction to whole percent, truncating toward zero.
// 0.1234 gives 12 and 0.999 gives 99: report tables never round up.
func Percent(fraction float64) int {
	return int(100 * fraction)
}
