// Package metrics scores classifier predictions.
package metrics

import (
	"fmt"

	"gocer/domain/core"
	"gocer/domain/sample"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrorRate computes classification error rates and their confidence intervals
type ErrorRate struct{}

// NewErrorRate creates the metric
func NewErrorRate() *ErrorRate {
	return &ErrorRate{}
}

// CER returns the fraction of predictions that differ from labels
func (e *ErrorRate) CER(predictions, labels []int) (float64, error) {
	if len(predictions) != len(labels) {
		return 0, fmt.Errorf("%w: %d predictions for %d labels", core.ErrShapeMismatch, len(predictions), len(labels))
	}
	if len(labels) == 0 {
		return 0, fmt.Errorf("%w: no test samples to score", core.ErrEmptyClass)
	}

	wrong := 0
	for i, p := range predictions {
		if p != labels[i] {
			wrong++
		}
	}
	return float64(wrong) / float64(len(labels)), nil
}

// Interval returns the exact Clopper-Pearson interval for errors out of total at
// the given two-sided confidence level.
func (e *ErrorRate) Interval(errors, total int, level float64) (sample.Interval, error) {
	if total <= 0 || errors < 0 || errors > total {
		return sample.Interval{}, fmt.Errorf("invalid error count %d of %d", errors, total)
	}
	if level <= 0 || level >= 1 {
		return sample.Interval{}, fmt.Errorf("confidence level must be in (0, 1), got %g", level)
	}

	alpha := 1 - level
	x, n := float64(errors), float64(total)

	iv := sample.Interval{Level: level, Lower: 0, Upper: 1}
	if errors > 0 {
		iv.Lower = distuv.Beta{Alpha: x, Beta: n - x + 1}.Quantile(alpha / 2)
	}
	if errors < total {
		iv.Upper = distuv.Beta{Alpha: x + 1, Beta: n - x}.Quantile(1 - alpha/2)
	}
	return iv, nil
}
