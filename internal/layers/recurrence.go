package layers

import (
	"fmt"

	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// Step is the function a Recurrence or Fold scans with:
// state_t = Next(state_{t-1}, x_t).
//
// Reductions and the recurrent cells (GRU, RNNStep) implement it.
type Step interface {
	// StateShape returns the state shape for the step shape in.
	StateShape(in tensor.Shape) (tensor.Shape, error)

	// Next computes the state that follows state after consuming x.
	Next(state, x *tensor.Tensor) (*tensor.Tensor, error)

	// SeedsFromInput reports whether the scan starts from the first element
	// of the sequence rather than from a zero state.
	SeedsFromInput() bool
}

// Reduction is a binary function used as a Step. The state has the shape of
// one element and the scan is seeded with the first element.
type Reduction func(state, x *tensor.Tensor) (*tensor.Tensor, error)

// Built-in reductions.
var (
	// Plus adds the elements.
	Plus Reduction = (*tensor.Tensor).Add

	// ElementMax keeps the elementwise maximum.
	ElementMax Reduction = (*tensor.Tensor).Maximum

	// ElementMin keeps the elementwise minimum.
	ElementMin Reduction = (*tensor.Tensor).Minimum
)

// StateShape implements Step.
func (r Reduction) StateShape(in tensor.Shape) (tensor.Shape, error) {
	return in.Clone(), nil
}

// Next implements Step.
func (r Reduction) Next(state, x *tensor.Tensor) (*tensor.Tensor, error) {
	return r(state, x)
}

// SeedsFromInput implements Step.
func (r Reduction) SeedsFromInput() bool {
	return true
}

// RecurrenceConfig configures a Recurrence or a Fold.
type RecurrenceConfig struct {
	Step        Step
	GoBackwards bool // Scan from the last element to the first

	// InitialState replaces the default seed: the first element for
	// reductions, zeros for cells.
	InitialState *tensor.Tensor
}

// NewRecurrence creates a layer that scans every sequence sample with
// cfg.Step and outputs the sequence of states, one per input element, in
// input order even when scanning backwards.
//
// Example:
//
//	gru, _ := layers.NewGRU("gru", layers.DefaultCellConfig(16))
//	rnn, _ := layers.NewRecurrence("rnn", layers.RecurrenceConfig{Step: gru})
//	h, err := rnn.Apply(x) // x: Sequence[Tensor(8)] -> h: Sequence[Tensor(16)]
func NewRecurrence(name string, cfg RecurrenceConfig) (*Layer, error) {
	return newScan(name, KindRecurrence, cfg)
}

// NewFold creates a layer that scans every sequence sample with cfg.Step and
// outputs only the final state, as a non-sequence sample.
//
// Example:
//
//	sum, _ := layers.NewFold("sum", layers.RecurrenceConfig{Step: layers.Plus})
func NewFold(name string, cfg RecurrenceConfig) (*Layer, error) {
	return newScan(name, KindFold, cfg)
}

func newScan(name string, kind Kind, cfg RecurrenceConfig) (*Layer, error) {
	if cfg.Step == nil {
		return nil, shapes.Invalid(kind.String(), "step function is nil")
	}
	if cell, ok := cfg.Step.(*Layer); ok && cell.kind != KindGRU && cell.kind != KindRNNStep {
		return nil, shapes.Invalid(kind.String(), "%s layer cannot be used as a step function", cell.kind)
	}
	if cfg.InitialState != nil {
		s, err := tensor.FromSlice(cfg.InitialState.Data(), cfg.InitialState.Shape())
		if err != nil {
			return nil, err
		}
		cfg.InitialState = s
	}

	l := newLayer(name, kind)
	l.recurrence = &cfg
	return l, nil
}

func (l *Layer) outputRecurrence(in graph.Type) (graph.Type, error) {
	cfg := l.recurrence
	if !in.Sequence {
		return graph.Type{}, shapes.Incompatible(l.label(), in.Shape, "input is not a sequence")
	}
	state, err := cfg.Step.StateShape(in.Shape)
	if err != nil {
		return graph.Type{}, fmt.Errorf("%s: %w", l.label(), err)
	}
	if cfg.InitialState != nil && !cfg.InitialState.Shape().Equal(state) {
		return graph.Type{}, shapes.Mismatch(l.label(), state, cfg.InitialState.Shape())
	}
	return graph.Type{Shape: state, Sequence: l.kind == KindRecurrence}, nil
}

// bindRecurrence binds a cell step to the element shape of the sequence.
func (l *Layer) bindRecurrence(in graph.Type) error {
	cell, ok := l.recurrence.Step.(*Layer)
	if !ok {
		return nil
	}
	state, err := cell.StateShape(in.Shape)
	if err != nil {
		return err
	}
	_, err = cell.Infer([]graph.Type{{Shape: state}, {Shape: in.Shape}})
	return err
}

// scan runs the step over a sequence sample [T, element...].
func (l *Layer) scan(x *tensor.Tensor) (*tensor.Tensor, error) {
	cfg := l.recurrence
	elems, err := x.Unstack()
	if err != nil {
		return nil, err
	}

	order := make([]int, len(elems))
	for i := range order {
		order[i] = i
		if cfg.GoBackwards {
			order[i] = len(elems) - 1 - i
		}
	}

	states := make([]*tensor.Tensor, len(elems))
	var state *tensor.Tensor
	switch {
	case cfg.InitialState != nil:
		state = cfg.InitialState
	case cfg.Step.SeedsFromInput():
		state = elems[order[0]]
		states[order[0]] = state
		order = order[1:]
	default:
		shape, err := cfg.Step.StateShape(elems[0].Shape())
		if err != nil {
			return nil, err
		}
		state = tensor.Zeros(shape)
	}

	for _, t := range order {
		if state, err = cfg.Step.Next(state, elems[t]); err != nil {
			return nil, fmt.Errorf("%s: step %d: %w", l.label(), t, err)
		}
		states[t] = state
	}

	if l.kind == KindFold {
		return state, nil
	}
	return tensor.Stack(states)
}
