package sample

import (
	"testing"

	"gocer/domain/core"
	"gocer/domain/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func twoClassGroup(t *testing.T) *Group {
	t.Helper()
	g, err := NewGroup([]registry.Variable{"x", "y"}, []Entry{
		{Class: "a", X: mat.NewDense(2, 2, []float64{1, 2, 3, 4})},
		{Class: "b", X: mat.NewDense(1, 2, []float64{5, 6})},
	})
	require.NoError(t, err)
	return g
}

func TestGroup_StackKeepsEntryOrder(t *testing.T) {
	g := twoClassGroup(t)

	stacked := g.Stack()
	require.NotNil(t, stacked)

	r, c := stacked.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 0, stacked))
	assert.Equal(t, []float64{5, 6}, mat.Row(nil, 2, stacked))
	assert.Equal(t, []int{2, 1}, g.Counts())
	assert.Equal(t, []registry.Class{"a", "b"}, g.Classes())
}

func TestGroup_StackDoesNotAliasEntries(t *testing.T) {
	g := twoClassGroup(t)

	stacked := g.Stack()
	stacked.Set(0, 0, 100)

	assert.Equal(t, 1.0, g.Entries[0].X.At(0, 0))
}

func TestNewGroup_ShapeMismatch(t *testing.T) {
	_, err := NewGroup([]registry.Variable{"x"}, []Entry{
		{Class: "a", X: mat.NewDense(1, 2, []float64{1, 2})},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestGroup_CheckNonEmpty(t *testing.T) {
	g := twoClassGroup(t)
	assert.NoError(t, g.CheckNonEmpty("proto1", registry.SplitTrain))

	g.Entries = append(g.Entries, Entry{Class: "c"})
	err := g.CheckNonEmpty("proto1", registry.SplitTest)
	require.Error(t, err)
	assert.True(t, core.IsEmptyClass(err))
	assert.Contains(t, err.Error(), `"c"`)
	assert.Contains(t, err.Error(), "test")
}

func TestGroup_StackEmpty(t *testing.T) {
	g, err := NewGroup([]registry.Variable{"x"}, []Entry{{Class: "a"}})
	require.NoError(t, err)
	assert.Nil(t, g.Stack())
}

func TestResult_Label(t *testing.T) {
	r := Result{Variables: []registry.Variable{"sepal_length", "petal_width"}}
	assert.Equal(t, "sepal_length + petal_width", r.Label())
}

func TestNormModel_Dim(t *testing.T) {
	m := &NormModel{Mean: []float64{1, 3}, Std: []float64{2, 4}}
	assert.Equal(t, 2, m.Dim())
}
