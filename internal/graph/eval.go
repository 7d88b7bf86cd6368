package graph

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/layers/internal/parallel"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// UnboundInputError reports a placeholder that has no binding.
type UnboundInputError struct {
	Name string
	Type Type
}

// Error implements the error interface.
func (e *UnboundInputError) Error() string {
	return fmt.Sprintf("%v: no value bound to %q (%v)", shapes.ErrUnbound, e.Name, e.Type)
}

// Is makes errors.Is(err, shapes.ErrUnbound) hold.
func (e *UnboundInputError) Is(target error) bool {
	return target == shapes.ErrUnbound
}

// Evaluator runs graphs. Samples of a batch are independent and are
// evaluated concurrently according to the parallel configuration.
type Evaluator struct {
	parallel parallel.Config
}

// NewEvaluator creates an evaluator with the given parallel configuration.
func NewEvaluator(cfg parallel.Config) *Evaluator {
	return &Evaluator{parallel: cfg}
}

// DefaultEvaluatorConfig parallelises across samples once a batch holds at
// least a few of them.
func DefaultEvaluatorConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 4
	return cfg
}

var defaultEvaluator = NewEvaluator(DefaultEvaluatorConfig())

// Eval evaluates out with the default evaluator.
func Eval(ctx context.Context, out *Output, bindings map[string]Value) (Value, error) {
	return defaultEvaluator.Eval(ctx, out, bindings)
}

// Eval resolves the graph behind out, applies every function in dependency
// order and returns the output batch.
//
// Every placeholder reachable from out must be bound by name. All bindings
// must hold the same number of samples, and every sample must conform to its
// placeholder's Type. Each node is evaluated once per sample.
func (e *Evaluator) Eval(ctx context.Context, out *Output, bindings map[string]Value) (Value, error) {
	order := topoOrder(out)

	batch := -1
	var batchFrom string
	for _, n := range order {
		if !n.IsInput() {
			continue
		}
		v, ok := bindings[n.name]
		if !ok {
			return nil, &UnboundInputError{Name: n.name, Type: n.typ}
		}
		if batch < 0 {
			batch, batchFrom = len(v), n.name
		} else if len(v) != batch {
			return nil, shapes.Incompatible("eval", []int{len(v)}, "batch of %q has %d samples, %q has %d", n.name, len(v), batchFrom, batch)
		}
		if err := checkBinding(n, v); err != nil {
			return nil, err
		}
	}
	if batch < 0 {
		batch = 1 // A graph without placeholders evaluates once.
	}

	results := make(Value, batch)
	err := parallel.ForErr(batch, func(i int) error {
		sample, err := e.evalSample(ctx, order, bindings, i)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		results[i] = sample
		return nil
	}, e.parallel)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Evaluator) evalSample(ctx context.Context, order []*Output, bindings map[string]Value, i int) (*tensor.Tensor, error) {
	values := make(map[*Output]*tensor.Tensor, len(order))
	var last *tensor.Tensor
	for _, n := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.IsInput() {
			last = bindings[n.name][i]
			values[n] = last
			continue
		}

		types := make([]Type, len(n.inputs))
		args := make([]*tensor.Tensor, len(n.inputs))
		for j, in := range n.inputs {
			types[j] = in.typ
			args[j] = values[in]
		}
		res, err := n.fn.Forward(types, args)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate %s", label(n))
		}
		if err := conforms(n.typ, res); err != nil {
			return nil, errors.Wrapf(err, "evaluate %s", label(n))
		}
		values[n] = res
		last = res
	}
	return last, nil
}

// checkBinding validates every sample bound to a placeholder.
func checkBinding(n *Output, v Value) error {
	for i, s := range v {
		if s == nil {
			return shapes.Invalid("eval", "sample %d of %q is nil", i, n.name)
		}
		if err := conforms(n.typ, s); err != nil {
			return errors.Wrapf(err, "input %q sample %d", n.name, i)
		}
	}
	return nil
}

// conforms checks a sample against a static Type.
func conforms(typ Type, s *tensor.Tensor) error {
	shape := s.Shape()
	if !typ.Sequence {
		if !shape.Equal(typ.Shape) {
			return shapes.Mismatch("eval", typ.Shape, shape)
		}
		return nil
	}
	if len(shape) != len(typ.Shape)+1 || !shape[1:].Equal(typ.Shape) {
		return shapes.Incompatible("eval", shape, "expected a sequence of %v", typ.Shape)
	}
	return nil
}
