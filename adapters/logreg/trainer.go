package logreg

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gocer/domain/core"
	"gocer/domain/sample"
	"gocer/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Defaults for NewTrainer
const (
	DefaultMaxIterations     = 1000
	DefaultGradientThreshold = 1e-6
)

// Trainer fits one-vs-rest logistic machines. A Trainer has no mutable state and
// may be shared between goroutines.
type Trainer struct {
	regularizer       float64
	maxIterations     int
	gradientThreshold float64
	logger            *slog.Logger
}

// Option configures a Trainer
type Option func(*Trainer)

// WithRegularizer sets the L2 penalty weight on non-bias coefficients
func WithRegularizer(lambda float64) Option {
	return func(t *Trainer) { t.regularizer = lambda }
}

// WithMaxIterations caps L-BFGS major iterations per machine
func WithMaxIterations(n int) Option {
	return func(t *Trainer) { t.maxIterations = n }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// NewTrainer creates a trainer
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{
		maxIterations:     DefaultMaxIterations,
		gradientThreshold: DefaultGradientThreshold,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "logreg")
	return t
}

// Train fits one machine per class of g
func (t *Trainer) Train(ctx context.Context, g *sample.Group) (ports.ClassifierPort, error) {
	if len(g.Entries) < 2 {
		return nil, fmt.Errorf("training needs at least 2 classes, got %d", len(g.Entries))
	}
	for _, e := range g.Entries {
		if e.Rows() == 0 {
			return nil, fmt.Errorf("%w: class %q has no training samples", core.ErrEmptyClass, e.Class)
		}
	}

	x := g.Stack()
	labels := NewLabeler().MakeLabels(g)
	_, dim := x.Dims()

	k := len(g.Entries)
	weights := mat.NewDense(k, dim, nil)
	bias := make([]float64, k)

	for class := 0; class < k; class++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		y := make([]float64, len(labels))
		for i, l := range labels {
			if l == class {
				y[i] = 1
			}
		}

		theta, err := t.fitBinary(x, y)
		if err != nil {
			return nil, fmt.Errorf("class %q machine: %w", g.Entries[class].Class, err)
		}
		bias[class] = theta[0]
		weights.SetRow(class, theta[1:])
	}

	t.logger.Debug("machines fitted", "classes", g.Classes(), "samples", len(labels), "variables", dim)
	return &Machine{weights: weights, bias: bias}, nil
}

// fitBinary minimizes the regularized cross-entropy of sigmoid([1 x]·theta)
// against y and returns theta = [bias, w...].
func (t *Trainer) fitBinary(x *mat.Dense, y []float64) ([]float64, error) {
	m, dim := x.Dims()
	n := float64(m)
	lambda := t.regularizer

	z := make([]float64, m)
	linear := func(theta []float64) {
		w := mat.NewVecDense(dim, theta[1:])
		zv := mat.NewVecDense(m, z)
		zv.MulVec(x, w)
		for i := range z {
			z[i] += theta[0]
		}
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			linear(theta)
			var cost float64
			for i, zi := range z {
				cost += softplus(zi) - y[i]*zi
			}
			cost /= n
			if lambda != 0 {
				cost += lambda / (2 * n) * floats.Dot(theta[1:], theta[1:])
			}
			return cost
		},
		Grad: func(grad, theta []float64) {
			linear(theta)
			resid := make([]float64, m)
			for i, zi := range z {
				resid[i] = sigmoid(zi) - y[i]
			}

			grad[0] = floats.Sum(resid) / n
			gw := mat.NewVecDense(dim, grad[1:])
			gw.MulVec(x.T(), mat.NewVecDense(m, resid))
			gw.ScaleVec(1/n, gw)
			if lambda != 0 {
				floats.AddScaled(grad[1:], lambda/n, theta[1:])
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: t.gradientThreshold,
		MajorIterations:   t.maxIterations,
	}

	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("optimizer failed: %w", err)
	}
	if !floats.HasNaN(result.X) && !math.IsInf(result.F, 0) && !math.IsNaN(result.F) {
		if err != nil {
			// Limits and stalled line searches on separable data still leave a
			// usable minimizer.
			t.logger.Debug("optimizer stopped early", "status", result.Status.String(), "cost", result.F, "error", err)
		}
		return result.X, nil
	}
	if err == nil {
		err = fmt.Errorf("non-finite solution (status %s)", result.Status)
	}
	return nil, fmt.Errorf("optimizer failed: %w", err)
}

// Machine is a fitted one-vs-rest classifier
type Machine struct {
	weights *mat.Dense // classes x variables
	bias    []float64
}

// Scores returns the decision value b_k + w_k·x for every row and class. The
// sigmoid is left out: it is monotone and saturates to 1 on well separated rows,
// which would turn clear wins into ties.
func (m *Machine) Scores(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	k, dim := m.weights.Dims()
	if cols != dim {
		return nil, fmt.Errorf("%w: machine expects %d variables, got %d", core.ErrShapeMismatch, dim, cols)
	}

	scores := mat.NewDense(rows, k, nil)
	scores.Mul(x, m.weights.T())
	scores.Apply(func(_, j int, v float64) float64 {
		return v + m.bias[j]
	}, scores)
	return scores, nil
}

// Predict returns the highest-scoring class of each row; ties go to the lowest label
func (m *Machine) Predict(x mat.Matrix) ([]int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return nil, err
	}

	rows, _ := scores.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		out[i] = floats.MaxIdx(scores.RawRowView(i))
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1 + e^z) without overflow
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
