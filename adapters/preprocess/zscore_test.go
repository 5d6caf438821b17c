package preprocess

import (
	"testing"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/domain/sample"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestZScore_FitSampleStatistics(t *testing.T) {
	pooled := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	m, err := NewZScore().Fit(pooled)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 25}, m.Mean, 1e-12)
	// sample std of 1..4 is sqrt(5/3)
	assert.InDelta(t, 1.2909944487358056, m.Std[0], 1e-12)
	assert.InDelta(t, 12.909944487358056, m.Std[1], 1e-12)
}

func TestZScore_ApplyStandardizesTrainingData(t *testing.T) {
	vars := []registry.Variable{"a", "b"}
	g, err := sample.NewGroup(vars, []sample.Entry{
		{Class: "x", X: mat.NewDense(3, 2, []float64{1, 5, 2, 7, 3, 9})},
		{Class: "y", X: mat.NewDense(2, 2, []float64{8, 1, 9, 0})},
	})
	require.NoError(t, err)

	z := NewZScore()
	m, err := z.Fit(g.Stack())
	require.NoError(t, err)

	normed, err := z.Apply(g, m)
	require.NoError(t, err)
	assert.Equal(t, g.Counts(), normed.Counts())
	assert.Equal(t, g.Classes(), normed.Classes())

	stacked := normed.Stack()
	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, stacked)
		mean, std := stat.MeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-12)
		assert.InDelta(t, 1, std, 1e-12)
	}

	// input untouched
	assert.Equal(t, 1.0, g.Entries[0].X.At(0, 0))
}

func TestZScore_DegenerateVariance(t *testing.T) {
	pooled := mat.NewDense(3, 2, []float64{
		1, 0.2,
		2, 0.2,
		3, 0.2,
	})

	_, err := NewZScore().Fit(pooled)
	require.Error(t, err)
	assert.True(t, core.IsDegenerateVariance(err))
	assert.Contains(t, err.Error(), "column 1")
}

func TestZScore_TooFewRows(t *testing.T) {
	_, err := NewZScore().Fit(mat.NewDense(1, 1, []float64{3}))
	assert.True(t, core.IsDegenerateVariance(err))

	_, err = NewZScore().Fit(nil)
	assert.True(t, core.IsEmptyClass(err))
}

func TestZScore_ApplyShapeMismatch(t *testing.T) {
	g, err := sample.NewGroup([]registry.Variable{"a"}, []sample.Entry{
		{Class: "x", X: mat.NewDense(1, 1, []float64{1})},
	})
	require.NoError(t, err)

	_, err = NewZScore().Apply(g, &sample.NormModel{Mean: []float64{0, 0}, Std: []float64{1, 1}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}
