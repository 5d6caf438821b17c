package dataset

import (
	"context"
	"testing"

	"gocer/domain/core"
	"gocer/domain/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func loadIris(t *testing.T) *Store {
	t.Helper()
	s, err := LoadEmbedded(nil)
	require.NoError(t, err)
	return s
}

func TestLoadEmbedded_Shape(t *testing.T) {
	s := loadIris(t)

	assert.Equal(t, []registry.Variable{"sepal_length", "sepal_width", "petal_length", "petal_width"}, s.Variables())
	assert.Equal(t, []registry.Class{"setosa", "versicolor", "virginica"}, s.Classes())
	for _, c := range s.Classes() {
		assert.Len(t, s.rows[c], 50, "class %s", c)
	}
	assert.NoError(t, s.CheckRegistry(registry.Default()))
}

func TestStore_GetProtocolSplits(t *testing.T) {
	s := loadIris(t)
	ctx := context.Background()
	classes := registry.Default().Classes()
	vars := []registry.Variable{"petal_width", "sepal_length"}

	train, err := s.Get(ctx, "proto1", registry.SplitTrain, classes, vars)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 30, 30}, train.Counts())

	require.Equal(t, registry.Class("setosa"), train.Entries[0].Class)
	assert.Equal(t, []float64{0.2, 5.1}, mat.Row(nil, 0, train.Entries[0].X))

	test, err := s.Get(ctx, "proto1", registry.SplitTest, classes, vars)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 20, 20}, test.Counts())

	test2, err := s.Get(ctx, "proto2", registry.SplitTest, classes, vars)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 5.1}, mat.Row(nil, 0, test2.Entries[0].X))

	train2, err := s.Get(ctx, "proto2", registry.SplitTrain, classes, vars)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 30, 30}, train2.Counts())
}

func TestStore_GetUnknownNames(t *testing.T) {
	s := loadIris(t)
	ctx := context.Background()
	classes := registry.Default().Classes()
	vars := []registry.Variable{"sepal_length"}

	tests := []struct {
		name     string
		protocol registry.Protocol
		split    registry.Split
		classes  []registry.Class
		vars     []registry.Variable
		sentinel error
	}{
		{"protocol", "proto9", registry.SplitTrain, classes, vars, core.ErrUnknownProtocol},
		{"split", "proto1", "validation", classes, vars, core.ErrUnknownSplit},
		{"class", "proto1", registry.SplitTrain, []registry.Class{"rosa"}, vars, core.ErrUnknownClass},
		{"variable", "proto1", registry.SplitTest, classes, []registry.Variable{"stem"}, core.ErrUnknownVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := s.Get(ctx, tt.protocol, tt.split, tt.classes, tt.vars)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, core.IsDataUnavailable(err))
		})
	}
}

func TestStore_RangeBeyondDataYieldsEmptyClass(t *testing.T) {
	table := &Table{
		Headers: []string{"x", "species"},
		Rows: []RawRowData{
			{"x": "1", "species": "a"},
			{"x": "2", "species": "a"},
			{"x": "3", "species": "b"},
		},
	}
	s, err := NewStore(table, "species", map[registry.Protocol]ProtocolDef{
		"p": {Train: SplitRange{0, 1}, Test: SplitRange{1, 2}},
	}, nil)
	require.NoError(t, err)

	g, err := s.Get(context.Background(), "p", registry.SplitTest, []registry.Class{"a", "b"}, []registry.Variable{"x"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, g.Counts())

	err = g.CheckNonEmpty("p", registry.SplitTest)
	assert.True(t, core.IsEmptyClass(err))
}

func TestStore_CancelledContext(t *testing.T) {
	s := loadIris(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "proto1", registry.SplitTrain, registry.Default().Classes(), []registry.Variable{"sepal_length"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStore_Rejects(t *testing.T) {
	protocols := DefaultProtocols()

	_, err := NewStore(&Table{Headers: []string{"x"}, Rows: []RawRowData{{"x": "1"}}}, "species", protocols, nil)
	assert.Error(t, err, "missing class column")

	_, err = NewStore(&Table{
		Headers: []string{"x", "species"},
		Rows:    []RawRowData{{"x": "abc", "species": "a"}},
	}, "species", protocols, nil)
	assert.Error(t, err, "non-numeric cell")

	_, err = NewStore(&Table{Headers: []string{"x", "species"}}, "species", map[registry.Protocol]ProtocolDef{
		"bad": {Train: SplitRange{0, 30}, Test: SplitRange{20, 40}},
	}, nil)
	assert.Error(t, err, "overlapping ranges")
}

func TestProtocolDef_Validate(t *testing.T) {
	for name, def := range DefaultProtocols() {
		assert.NoError(t, def.Validate(), name)
	}

	assert.Error(t, ProtocolDef{Train: SplitRange{0, 10}, Test: SplitRange{5, 15}}.Validate())
	assert.Error(t, ProtocolDef{Train: SplitRange{5, 5}, Test: SplitRange{5, 15}}.Validate())
	assert.NoError(t, ProtocolDef{Train: SplitRange{10, 20}, Test: SplitRange{0, 10}}.Validate())
}
