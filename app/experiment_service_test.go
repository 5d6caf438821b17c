package app

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"gocer/domain/core"
	"gocer/domain/registry"
	"gocer/domain/sample"
	"gocer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var captionPattern = regexp.MustCompile("(?m)^Table (\\d+): (.+) for Protocol `(\\w+)`:$")

func newExperiment(ev Evaluator, workers int) *ExperimentService {
	reg := registry.Default()
	return NewExperimentService(reg, NewReportService(reg, ev, workers, logging.Discard()), logging.Discard())
}

func captions(out string) []string {
	var got []string
	for _, m := range captionPattern.FindAllStringSubmatch(out, -1) {
		got = append(got, fmt.Sprintf("%s|%s|%s", m[1], m[2], m[3]))
	}
	return got
}

func TestExperiment_AllKindsNumbering(t *testing.T) {
	var buf bytes.Buffer
	summary, err := newExperiment(evaluatorFunc(labelDependent), 4).Run(context.Background(), &buf, Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"1|Single variables|proto1",
		"2|Single variables|proto2",
		"3|Variable combinations, 2x2|proto1",
		"4|Variable combinations, 2x2|proto2",
		"5|Variable combinations, 3x3|proto1",
		"6|Variable combinations, 3x3|proto2",
		"7|All variables|proto1",
		"8|All variables|proto2",
	}, captions(buf.String()))

	assert.Equal(t, AllKinds(), summary.Kinds)
	assert.Equal(t, 8, summary.Tables)
	assert.Equal(t, 2*(4+6+4+1), summary.Rows)
	assert.NotEmpty(t, summary.RunID.String())
}

func TestExperiment_SingleCase(t *testing.T) {
	var buf bytes.Buffer
	summary, err := newExperiment(evaluatorFunc(labelDependent), 1).Run(context.Background(), &buf, Selection{Case: CaseOf(3)})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"1|Variable combinations, 3x3|proto1",
		"2|Variable combinations, 3x3|proto2",
	}, captions(buf.String()))
	assert.Equal(t, []ReportKind{KindTriple}, summary.Kinds)
	assert.Equal(t, 8, summary.Rows)
}

func TestExperiment_ProtocolSubset(t *testing.T) {
	var buf bytes.Buffer
	_, err := newExperiment(evaluatorFunc(labelDependent), 2).Run(context.Background(), &buf, Selection{Case: CaseOf(1), Protocols: []string{"proto2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1|Single variables|proto2"}, captions(buf.String()))
}

func TestExperiment_InvalidSelectionRunsNothing(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"case too large", Selection{Case: CaseOf(5)}},
		{"negative case", Selection{Case: CaseOf(-2)}},
		{"explicit case zero", Selection{Case: CaseOf(0)}},
		{"empty protocol list", Selection{Case: CaseOf(1), Protocols: []string{}}},
		{"unknown protocol", Selection{Case: CaseOf(1), Protocols: []string{"proto1", "proto9"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := new(MockEvaluator)
			var buf bytes.Buffer
			_, err := newExperiment(ev, 2).Run(context.Background(), &buf, tt.sel)

			require.Error(t, err)
			assert.True(t, core.IsInvalidSelection(err))
			assert.Empty(t, buf.String())
			ev.AssertNotCalled(t, "EvaluateSubset", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExperiment_StopsAtFailingKind(t *testing.T) {
	ev := evaluatorFunc(func(ctx context.Context, p registry.Protocol, v []registry.Variable) (sample.Result, error) {
		if len(v) == 3 {
			return sample.Result{}, core.NewEmptyClassError(string(p), "train", "virginica")
		}
		return labelDependent(ctx, p, v)
	})

	var buf bytes.Buffer
	summary, err := newExperiment(ev, 2).Run(context.Background(), &buf, Selection{})
	require.Error(t, err)
	assert.True(t, core.IsEmptyClass(err))
	assert.True(t, strings.HasPrefix(err.Error(), "triple report: "))

	// earlier kinds stay printed, the failing kind prints nothing
	assert.Len(t, captions(buf.String()), 4)
	assert.NotContains(t, buf.String(), "3x3")
	assert.Equal(t, 4, summary.Tables)
}

func TestExperiment_IrisAllVariables(t *testing.T) {
	eval := newEvaluation(t, realDeps(irisStore(t)))

	var buf bytes.Buffer
	_, err := newExperiment(eval, 2).Run(context.Background(), &buf, Selection{Case: CaseOf(4)})
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, []string{"1|All variables|proto1", "2|All variables|proto2"}, captions(out))

	rows := regexp.MustCompile(`(?m)^sepal_length \+ sepal_width \+ petal_length \+ petal_width \| (\d+)%$`).FindAllStringSubmatch(out, -1)
	require.Len(t, rows, 2)
	for _, r := range rows {
		var pct int
		_, err := fmt.Sscan(r[1], &pct)
		require.NoError(t, err)
		assert.Less(t, pct, 20)
	}
}
