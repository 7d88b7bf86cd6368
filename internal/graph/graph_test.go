package graph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/born-ml/layers/internal/parallel"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addFn adds its inputs elementwise.
type addFn struct {
	name  string
	calls atomic.Int64
}

func (f *addFn) Name() string { return f.name }

func (f *addFn) Infer(in []Type) (Type, error) {
	if len(in) == 0 {
		return Type{}, shapes.Invalid("add", "no inputs")
	}
	for _, t := range in[1:] {
		if !t.Equal(in[0]) {
			return Type{}, shapes.Mismatch("add", in[0].Shape, t.Shape)
		}
	}
	return in[0], nil
}

func (f *addFn) Forward(_ []Type, in []*tensor.Tensor) (*tensor.Tensor, error) {
	f.calls.Add(1)
	out := in[0]
	for _, x := range in[1:] {
		var err error
		if out, err = out.Add(x); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// lastStepFn keeps the last step of a sequence.
type lastStepFn struct{}

func (lastStepFn) Name() string { return "last" }

func (lastStepFn) Infer(in []Type) (Type, error) {
	if !in[0].Sequence {
		return Type{}, shapes.Incompatible("last", in[0].Shape, "expects a sequence")
	}
	return Type{Shape: in[0].Shape}, nil
}

func (lastStepFn) Forward(_ []Type, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return in[0].Index(in[0].Dim(0) - 1)
}

func mustInput(t *testing.T, name string, shape tensor.Shape, axes ...Axis) *Output {
	t.Helper()
	in, err := Input(name, shape, axes...)
	require.NoError(t, err)
	return in
}

func TestEval_Add(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{2})
	y := mustInput(t, "y", tensor.Shape{2})

	sum, err := Apply(&addFn{name: "sum"}, x, y)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, sum.Shape())

	xs, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	ys, err := tensor.FromSlice([]float32{10, 20, 30, 40}, tensor.Shape{2, 2})
	require.NoError(t, err)

	out, err := sum.Eval(map[string]Value{"x": MustBatch(xs), "y": MustBatch(ys)})
	require.NoError(t, err)

	stacked, err := out.Stack()
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 33, 44}, stacked.Data())
}

// TestEval_SharedNodeOnce checks a diamond: the shared node runs once per sample.
func TestEval_SharedNodeOnce(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{1})
	shared := &addFn{name: "shared"}
	a, err := Apply(shared, x)
	require.NoError(t, err)
	b, err := Apply(&addFn{name: "twice"}, a, a)
	require.NoError(t, err)

	out, err := NewEvaluator(parallel.Sequential()).Eval(context.Background(), b, map[string]Value{
		"x": Samples(tensor.Vector(1), tensor.Vector(2), tensor.Vector(3)),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), shared.calls.Load())
	assert.Equal(t, float32(6), out[2].Item())
}

func TestEval_Unbound(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{2})
	y := mustInput(t, "y", tensor.Shape{2})
	sum, err := Apply(&addFn{}, x, y)
	require.NoError(t, err)

	_, err = sum.Eval(map[string]Value{"x": Samples(tensor.Vector(1, 2))})
	require.Error(t, err)
	assert.ErrorIs(t, err, shapes.ErrUnbound)

	var unbound *UnboundInputError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "y", unbound.Name)
}

func TestEval_ShapeErrors(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{2})
	y := mustInput(t, "y", tensor.Shape{2})
	sum, err := Apply(&addFn{}, x, y)
	require.NoError(t, err)

	tests := []struct {
		name     string
		bindings map[string]Value
	}{
		{"wrong sample shape", map[string]Value{
			"x": Samples(tensor.Vector(1, 2, 3)),
			"y": Samples(tensor.Vector(1, 2, 3)),
		}},
		{"batch size mismatch", map[string]Value{
			"x": Samples(tensor.Vector(1, 2), tensor.Vector(1, 2)),
			"y": Samples(tensor.Vector(1, 2)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sum.Eval(tt.bindings)
			assert.ErrorIs(t, err, shapes.ErrShape)
		})
	}
}

func TestApply_InferError(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{2})
	y := mustInput(t, "y", tensor.Shape{3})
	_, err := Apply(&addFn{}, x, y)
	assert.ErrorIs(t, err, shapes.ErrShape)
}

// TestEval_RaggedSequences binds two sequences of different lengths.
func TestEval_RaggedSequences(t *testing.T) {
	seq := mustInput(t, "s", tensor.Shape{2}, SequenceAxis)
	assert.True(t, seq.Type().Sequence)

	last, err := Apply(lastStepFn{}, seq)
	require.NoError(t, err)
	assert.Equal(t, TensorOf(2), last.Type())

	short, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	long := tensor.Arange(tensor.Shape{3, 2})

	out, err := last.Eval(map[string]Value{"s": Samples(short, long)})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, out[0].Data())
	assert.Equal(t, []float32{4, 5}, out[1].Data())

	// A step of the wrong width is rejected.
	_, err = last.Eval(map[string]Value{"s": Samples(tensor.Ones(tensor.Shape{2, 3}))})
	assert.ErrorIs(t, err, shapes.ErrShape)
}

func TestEval_Cancelled(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{1})
	a, err := Apply(&addFn{}, x)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Eval(ctx, a, map[string]Value{"x": Samples(tensor.Vector(1))})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindAndArguments(t *testing.T) {
	x := mustInput(t, "x", tensor.Shape{1})
	y := mustInput(t, "y", tensor.Shape{1})
	inner, err := Apply(&addFn{name: "inner"}, x, y)
	require.NoError(t, err)
	outer, err := Apply(&addFn{name: "outer"}, inner, x)
	require.NoError(t, err)

	found, ok := outer.Find("inner")
	require.True(t, ok)
	assert.Same(t, inner, found)

	_, ok = outer.Find("missing")
	assert.False(t, ok)

	args := outer.Arguments()
	require.Len(t, args, 2)
	assert.Equal(t, "x", args[0].Name())
	assert.Equal(t, "y", args[1].Name())
}

func TestInput_Validation(t *testing.T) {
	_, err := Input("bad", tensor.Shape{0})
	assert.ErrorIs(t, err, shapes.ErrShape)

	_, err = Input("twice", tensor.Shape{1}, SequenceAxis, NewSequenceAxis("other"))
	assert.ErrorIs(t, err, shapes.ErrInvalidArgument)

	in, err := InputOf("seq", SequenceOf(3))
	require.NoError(t, err)
	assert.Equal(t, "Sequence[Tensor(3)]", in.Type().String())
	assert.Equal(t, tensor.Shape{4, 3}, in.Type().SampleShape(4))
}
