package layers

import (
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// CellConfig configures a recurrent cell.
type CellConfig struct {
	Hidden     int                     // State width H
	Activation Activation              // RNNStep only; nil means Tanh
	Init       initializer.Initializer // Initializer of W and U; nil means Glorot uniform
}

// DefaultCellConfig returns a config for a cell with hidden units.
func DefaultCellConfig(hidden int) CellConfig {
	return CellConfig{Hidden: hidden}
}

// NewGRU creates a gated recurrent unit cell:
//
//	z  = σ(x·W_z + h·U_z + b_z)
//	r  = σ(x·W_r + h·U_r + b_r)
//	h̃  = tanh(x·W_h + (r ⊙ h)·U_h + b_h)
//	h' = (1 - z) ⊙ h + z ⊙ h̃
//
// Parameters: W [in_dim, 3H] holding W_z|W_r|W_h, U [H, 2H] holding U_z|U_r,
// Uh [H, H] and b [3H]. The cell is a Step for Recurrence and Fold, and can
// be applied directly to a (state, x) pair of graph outputs.
func NewGRU(name string, cfg CellConfig) (*Layer, error) {
	return newCell(name, KindGRU, cfg)
}

// NewRNNStep creates a plain recurrent cell: h' = activation(x·W + h·U + b).
func NewRNNStep(name string, cfg CellConfig) (*Layer, error) {
	if cfg.Activation == nil {
		cfg.Activation = Tanh
	}
	return newCell(name, KindRNNStep, cfg)
}

func newCell(name string, kind Kind, cfg CellConfig) (*Layer, error) {
	if cfg.Hidden <= 0 {
		return nil, shapes.Invalid(kind.String(), "hidden size must be positive, got %d", cfg.Hidden)
	}
	if cfg.Init == nil {
		cfg.Init = initializer.Default()
	}
	l := newLayer(name, kind)
	l.cell = &cfg
	return l, nil
}

// StateShape implements Step for cell layers.
func (l *Layer) StateShape(in tensor.Shape) (tensor.Shape, error) {
	if l.cell == nil {
		return nil, shapes.Invalid(l.label(), "not a recurrent cell")
	}
	if err := in.Validate(); err != nil {
		return nil, shapes.Incompatible(l.label(), in, "%v", err)
	}
	return tensor.Shape{l.cell.Hidden}, nil
}

// SeedsFromInput implements Step. Cells start from a zero state.
func (l *Layer) SeedsFromInput() bool {
	return false
}

func (l *Layer) outputCell(state, x graph.Type) (graph.Type, error) {
	if state.Sequence || x.Sequence {
		return graph.Type{}, shapes.Invalid(l.label(), "cell inputs must not be sequences")
	}
	want, err := l.StateShape(x.Shape)
	if err != nil {
		return graph.Type{}, err
	}
	if !state.Shape.Equal(want) {
		return graph.Type{}, shapes.Mismatch(l.label(), want, state.Shape)
	}
	return graph.Type{Shape: want}, nil
}

func (l *Layer) bindCell(in tensor.Shape) error {
	return l.bind(in, func() ([]*Parameter, error) {
		cfg := l.cell
		inDim, h := in.NumElements(), cfg.Hidden
		gates := 1
		if l.kind == KindGRU {
			gates = 3
		}

		w, err := cfg.Init.Init(tensor.Shape{inDim, gates * h}, inDim, gates*h)
		if err != nil {
			return nil, err
		}
		if l.kind == KindRNNStep {
			u, err := cfg.Init.Init(tensor.Shape{h, h}, h, h)
			if err != nil {
				return nil, err
			}
			return []*Parameter{
				NewParameter("W", w),
				NewParameter("U", u),
				NewParameter("b", tensor.Zeros(tensor.Shape{h})),
			}, nil
		}

		u, err := cfg.Init.Init(tensor.Shape{h, 2 * h}, h, 2*h)
		if err != nil {
			return nil, err
		}
		uh, err := cfg.Init.Init(tensor.Shape{h, h}, h, h)
		if err != nil {
			return nil, err
		}
		return []*Parameter{
			NewParameter("W", w),
			NewParameter("U", u),
			NewParameter("Uh", uh),
			NewParameter("b", tensor.Zeros(tensor.Shape{3 * h})),
		}, nil
	})
}

// Next implements Step for cell layers.
func (l *Layer) Next(state, x *tensor.Tensor) (*tensor.Tensor, error) {
	if l.cell == nil {
		return nil, shapes.Invalid(l.label(), "not a recurrent cell")
	}
	if want := (tensor.Shape{l.cell.Hidden}); !state.Shape().Equal(want) {
		return nil, shapes.Mismatch(l.label(), want, state.Shape())
	}
	if l.param("W") == nil {
		return nil, shapes.Invalid(l.label(), "parameters are not bound")
	}
	if in := l.InputShape(); !x.Shape().Equal(in) {
		return nil, shapes.Mismatch(l.label(), in, x.Shape())
	}

	if l.kind == KindGRU {
		return l.gruNext(state, x.Flatten())
	}
	return l.rnnNext(state, x.Flatten())
}

func (l *Layer) rnnNext(h, x *tensor.Tensor) (*tensor.Tensor, error) {
	xw, err := l.backend.MatMul(x, l.param("W"))
	if err != nil {
		return nil, err
	}
	hu, err := l.backend.MatMul(h, l.param("U"))
	if err != nil {
		return nil, err
	}
	out, b := xw.Raw(), l.param("b").Raw()
	for i, v := range hu.Raw() {
		out[i] += v + b[i]
	}
	l.cell.Activation.apply(out)
	return xw, nil
}

func (l *Layer) gruNext(h, x *tensor.Tensor) (*tensor.Tensor, error) {
	n := l.cell.Hidden

	xw, err := l.backend.MatMul(x, l.param("W")) // [3H]
	if err != nil {
		return nil, err
	}
	hu, err := l.backend.MatMul(h, l.param("U")) // [2H]
	if err != nil {
		return nil, err
	}
	pre, rec, b, prev := xw.Raw(), hu.Raw(), l.param("b").Raw(), h.Raw()

	z := make([]float32, n)
	rh := make([]float32, n)
	for i := 0; i < n; i++ {
		z[i] = Sigmoid(pre[i] + rec[i] + b[i])
		r := Sigmoid(pre[n+i] + rec[n+i] + b[n+i])
		rh[i] = r * prev[i]
	}

	rhT, err := tensor.Wrap(rh, tensor.Shape{n})
	if err != nil {
		return nil, err
	}
	cand, err := l.backend.MatMul(rhT, l.param("Uh")) // [H]
	if err != nil {
		return nil, err
	}

	next := make([]float32, n)
	for i, c := range cand.Raw() {
		c = Tanh(pre[2*n+i] + c + b[2*n+i])
		next[i] = (1-z[i])*prev[i] + z[i]*c
	}
	return tensor.Wrap(next, tensor.Shape{n})
}
