// Package sample defines the per-class sample matrices that flow between data
// access, normalization, training and scoring.
package sample

import (
	"fmt"
	"strings"

	"gocer/domain/core"
	"gocer/domain/registry"

	"gonum.org/v1/gonum/mat"
)

// Entry holds the observations of one class. X is nil when the class has no rows.
type Entry struct {
	Class registry.Class
	X     *mat.Dense
}

// Rows returns the number of observations, zero for a nil matrix
func (e Entry) Rows() int {
	if e.X == nil {
		return 0
	}
	r, _ := e.X.Dims()
	return r
}

// Group maps classes to sample matrices for one (protocol, split, variables)
// request. Entry order is the stacking order used for prediction and labels.
type Group struct {
	Variables []registry.Variable
	Entries   []Entry
}

// NewGroup checks that every matrix has one column per variable.
func NewGroup(variables []registry.Variable, entries []Entry) (*Group, error) {
	for _, e := range entries {
		if e.X == nil {
			continue
		}
		if _, c := e.X.Dims(); c != len(variables) {
			return nil, fmt.Errorf("%w: class %q has %d columns, want %d", core.ErrShapeMismatch, e.Class, c, len(variables))
		}
	}
	return &Group{
		Variables: append([]registry.Variable(nil), variables...),
		Entries:   entries,
	}, nil
}

// Cols returns the number of variables
func (g *Group) Cols() int {
	return len(g.Variables)
}

// Rows returns the total number of observations across classes
func (g *Group) Rows() int {
	n := 0
	for _, e := range g.Entries {
		n += e.Rows()
	}
	return n
}

// Counts returns the per-class row counts in entry order
func (g *Group) Counts() []int {
	out := make([]int, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Rows()
	}
	return out
}

// Classes returns the classes in entry order
func (g *Group) Classes() []registry.Class {
	out := make([]registry.Class, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Class
	}
	return out
}

// CheckNonEmpty fails with ErrEmptyClass for the first class without rows.
func (g *Group) CheckNonEmpty(protocol registry.Protocol, split registry.Split) error {
	if len(g.Entries) == 0 {
		return core.NewEmptyClassError(string(protocol), string(split), "(none)")
	}
	for i, n := range g.Counts() {
		if n == 0 {
			return core.NewEmptyClassError(string(protocol), string(split), string(g.Entries[i].Class))
		}
	}
	return nil
}

// Stack stacks all class matrices vertically in entry order. It returns nil when
// the group holds no rows.
func (g *Group) Stack() *mat.Dense {
	rows := g.Rows()
	if rows == 0 || g.Cols() == 0 {
		return nil
	}

	out := mat.NewDense(rows, g.Cols(), nil)
	offset := 0
	for _, e := range g.Entries {
		n := e.Rows()
		if n == 0 {
			continue
		}
		out.Slice(offset, offset+n, 0, g.Cols()).(*mat.Dense).Copy(e.X)
		offset += n
	}
	return out
}

// NormModel holds per-column location and scale estimated from training data
type NormModel struct {
	Mean []float64
	Std  []float64
}

// Dim returns the number of columns the model was fit on
func (m *NormModel) Dim() int {
	return len(m.Mean)
}

// Interval is a two-sided confidence interval on an error rate
type Interval struct {
	Level float64
	Lower float64
	Upper float64
}

// Result is the outcome of one subset evaluation
type Result struct {
	Protocol  registry.Protocol
	Variables []registry.Variable
	CER       float64
	Errors    int
	Total     int
	Interval  *Interval
}

// Label joins the variable names the way report rows show them
func (r Result) Label() string {
	return Label(r.Variables)
}

// Label joins variable names with " + "
func Label(vars []registry.Variable) string {
	return strings.Join(registry.Names(vars), " + ")
}
