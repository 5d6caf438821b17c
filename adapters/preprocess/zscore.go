// Package preprocess estimates and applies per-variable z-score normalization.
package preprocess

import (
	"fmt"
	"math"

	"gocer/domain/core"
	"gocer/domain/sample"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// relTol bounds the standard deviation, relative to the column mean, below which a
// column counts as constant.
const relTol = 1e-12

// ZScore normalizes each column to zero mean and unit sample standard deviation.
// It holds no state; every Fit returns a fresh model.
type ZScore struct{}

// NewZScore creates a z-score normalizer
func NewZScore() *ZScore {
	return &ZScore{}
}

// Fit estimates column means and sample standard deviations (n-1) from pooled rows.
func (z *ZScore) Fit(pooled *mat.Dense) (*sample.NormModel, error) {
	if pooled == nil {
		return nil, fmt.Errorf("%w: no pooled training rows to normalize", core.ErrEmptyClass)
	}
	rows, cols := pooled.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("%w: %d pooled training row(s), need at least 2", core.ErrDegenerateVariance, rows)
	}

	model := &sample.NormModel{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, pooled)

		mean, err := stats.Mean(col)
		if err != nil {
			return nil, fmt.Errorf("column %d mean: %w", j, err)
		}
		std, err := stats.StandardDeviationSample(col)
		if err != nil {
			return nil, fmt.Errorf("column %d standard deviation: %w", j, err)
		}
		if math.IsNaN(std) || std <= relTol*math.Max(1, math.Abs(mean)) {
			return nil, core.NewDegenerateVarianceError(j, "")
		}

		model.Mean[j] = mean
		model.Std[j] = std
	}
	return model, nil
}

// Apply returns a normalized copy of g. Class order and row counts are unchanged.
func (z *ZScore) Apply(g *sample.Group, m *sample.NormModel) (*sample.Group, error) {
	if m == nil {
		return nil, fmt.Errorf("normalization model is nil")
	}
	if m.Dim() != g.Cols() {
		return nil, fmt.Errorf("%w: model has %d columns, samples have %d", core.ErrShapeMismatch, m.Dim(), g.Cols())
	}

	entries := make([]sample.Entry, len(g.Entries))
	for i, e := range g.Entries {
		entries[i] = sample.Entry{Class: e.Class}
		if e.X == nil {
			continue
		}
		r, c := e.X.Dims()
		out := mat.NewDense(r, c, nil)
		out.Apply(func(_, j int, v float64) float64 {
			return (v - m.Mean[j]) / m.Std[j]
		}, e.X)
		entries[i].X = out
	}
	return sample.NewGroup(g.Variables, entries)
}
