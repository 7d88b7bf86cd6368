package layers

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

func mustConv(t *testing.T, cfg ConvolutionConfig) *Layer {
	t.Helper()
	l, err := NewConvolution("conv", cfg)
	require.NoError(t, err)
	return l
}

func TestConvolution_Shapes(t *testing.T) {
	// Input (2, 6, 7): two channels of 6x7, kernel (3, 2), four filters.
	tests := []struct {
		name    string
		strides []int
		pad     []bool
		want    tensor.Shape
	}{
		{"valid", nil, nil, tensor.Shape{4, 4, 6}},
		{"valid stride 2", []int{2}, nil, tensor.Shape{4, 2, 3}},
		{"same", nil, []bool{true}, tensor.Shape{4, 6, 7}},
		{"same stride 2", []int{2}, []bool{true}, tensor.Shape{4, 3, 4}},
		{"per axis", []int{1, 3}, []bool{false, true}, tensor.Shape{4, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConvolutionConfig([]int{3, 2}, 4)
			if tt.strides != nil {
				cfg.Strides = tt.strides
			}
			if tt.pad != nil {
				cfg.Pad = tt.pad
			}
			l, err := NewConvolution2D("conv", cfg)
			require.NoError(t, err)

			typ, err := l.InferOutputShape(graph.TensorOf(2, 6, 7))
			require.NoError(t, err)
			assert.False(t, l.IsBound())
			if diff := cmp.Diff(tt.want, typ.Shape); diff != "" {
				t.Errorf("InferOutputShape mismatch (-want +got):\n%s", diff)
			}

			out := mustApply(t, l, mustInput(t, "x", tensor.Shape{2, 6, 7}))
			assert.Equal(t, tt.want, out.Shape())

			w, ok := l.Parameter("W")
			require.True(t, ok)
			assert.Equal(t, tensor.Shape{4, 2, 3, 2}, w.Shape())
			b, ok := l.Parameter("b")
			require.True(t, ok)
			assert.Equal(t, tensor.Shape{4}, b.Shape())

			v := mustEval(t, out, "x", tensor.Ones(tensor.Shape{2, 6, 7}))
			assert.Equal(t, tt.want, v[0].Shape())
		})
	}
}

func TestConvolution_AllOnes(t *testing.T) {
	cfg := DefaultConvolutionConfig([]int{2, 2}, 1)
	cfg.Init = initializer.Constant(1)
	l := mustConv(t, cfg)

	out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1, 3, 3}))
	v := mustEval(t, out, "x", tensor.Ones(tensor.Shape{1, 3, 3}))
	assert.Equal(t, tensor.Shape{1, 2, 2}, v[0].Shape())
	assert.Equal(t, []float32{4, 4, 4, 4}, v[0].Data())
}

func TestConvolution_StridedPaddedCorners(t *testing.T) {
	// W = [[1, 2, 3], [4, 5, 6], [7, 8, 9]] over a 3x3 input of ones,
	// stride 2 and padding: output (0, 0) only sees W[1:, 1:].
	cfg := DefaultConvolutionConfig([]int{3, 3}, 1)
	cfg.Strides = []int{2}
	cfg.Pad = []bool{true}
	cfg.Init = initializer.Values(1, 2, 3, 4, 5, 6, 7, 8, 9)
	l := mustConv(t, cfg)

	out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1, 3, 3}))
	v := mustEval(t, out, "x", tensor.Ones(tensor.Shape{1, 3, 3}))
	assert.Equal(t, tensor.Shape{1, 2, 2}, v[0].Shape())
	// 5+6+8+9, 4+5+7+8, 2+3+5+6, 1+2+4+5
	assert.Equal(t, []float32{28, 24, 16, 12}, v[0].Data())
}

func TestConvolution_2DAnd3D(t *testing.T) {
	t.Run("2D", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3, 3}, 1)
		cfg.Init = initializer.Constant(1)
		l, err := NewConvolution2D("conv2d", cfg)
		require.NoError(t, err)

		out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1, 3, 3}))
		assert.Equal(t, tensor.Shape{1, 1, 1}, out.Shape())
		v := mustEval(t, out, "x", tensor.Ones(tensor.Shape{1, 3, 3}))
		assert.Equal(t, []float32{9}, v[0].Data())
	})

	t.Run("3D", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3, 3, 3}, 1)
		cfg.Init = initializer.Constant(1)
		l, err := NewConvolution3D("conv3d", cfg)
		require.NoError(t, err)

		out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1, 3, 3, 3}))
		assert.Equal(t, tensor.Shape{1, 1, 1, 1}, out.Shape())
		v := mustEval(t, out, "x", tensor.Ones(tensor.Shape{1, 3, 3, 3}))
		assert.Equal(t, []float32{27}, v[0].Data())
	})
}

func TestConvolution_1D(t *testing.T) {
	x := tensor.Vector(2, 6, 4, 8, 6)

	tests := []struct {
		name string
		pad  bool
		want []float32
	}{
		// 2*4+6*2+4*1, 6*4+4*2+8*1, 4*4+8*2+6*1
		{"valid", false, []float32{24, 40, 38}},
		// Positions 0 and 4 read one implicit zero.
		{"same", true, []float32{10, 24, 40, 38, 44}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConvolutionConfig([]int{3}, 0)
			cfg.ReductionRank = 0
			cfg.Bias = false
			cfg.Pad = []bool{tt.pad}
			cfg.Init = initializer.Values(4, 2, 1)
			l, err := NewConvolution1D("conv1d", cfg)
			require.NoError(t, err)

			out := mustApply(t, l, mustInput(t, "x", tensor.Shape{5}))
			assert.Equal(t, tensor.Shape{len(tt.want)}, out.Shape())
			assert.Empty(t, cmp.Diff(tensor.Shape{3}, l.Parameters()[0].Shape()))

			v := mustEval(t, out, "x", x)
			assert.Equal(t, tt.want, v[0].Data())
		})
	}
}

func TestConvolution_Sequential(t *testing.T) {
	seq := mustTensor(t, []float32{2, 6, 4, 8, 6}, tensor.Shape{5, 1})

	t.Run("no channel axis", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3}, 0)
		cfg.ReductionRank = 0
		cfg.Bias = false
		cfg.Sequential = true
		cfg.Init = initializer.Values(4, 2, 1)
		l := mustConv(t, cfg)

		out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1}, graph.SequenceAxis))
		assert.True(t, out.Type().Equal(graph.SequenceOf(1)), "got %v", out.Type())

		v := mustEval(t, out, "x", seq)
		assert.Equal(t, tensor.Shape{3, 1}, v[0].Shape())
		assert.Equal(t, []float32{24, 40, 38}, v[0].Data())
	})

	t.Run("channel axis", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3}, 2)
		cfg.Bias = false
		cfg.Sequential = true
		cfg.Init = initializer.Constant(1)
		l := mustConv(t, cfg)

		out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1}, graph.SequenceAxis))
		assert.True(t, out.Type().Equal(graph.SequenceOf(2)), "got %v", out.Type())
		assert.Equal(t, tensor.Shape{2, 1, 3}, l.Parameters()[0].Shape())

		v := mustEval(t, out, "x", seq)
		assert.Equal(t, tensor.Shape{3, 2}, v[0].Shape())
		assert.Equal(t, []float32{12, 12, 18, 18, 18, 18}, v[0].Data())
	})

	t.Run("needs a sequence", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3}, 1)
		cfg.Sequential = true
		_, err := mustConv(t, cfg).Apply(mustInput(t, "x", tensor.Shape{1, 5}))
		assert.True(t, errors.Is(err, shapes.ErrShape))
	})
}

func TestConvolution_BiasAndActivation(t *testing.T) {
	cfg := DefaultConvolutionConfig([]int{2}, 2)
	cfg.Init = initializer.Constant(1)
	cfg.Activation = ReLU
	l := mustConv(t, cfg)

	out := mustApply(t, l, mustInput(t, "x", tensor.Shape{1, 3}))
	b, ok := l.Parameter("b")
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{2}, b.Shape())

	v := mustEval(t, out, "x", mustTensor(t, []float32{-3, 1, 2}, tensor.Shape{1, 3}))
	// Window sums -2 and 3 for both filters; ReLU clips the first.
	assert.Equal(t, []float32{0, 3, 0, 3}, v[0].Data())

	noFilters := DefaultConvolutionConfig([]int{2}, 0)
	scalar := mustConv(t, noFilters)
	mustApply(t, scalar, mustInput(t, "x", tensor.Shape{1, 3}))
	b, ok = scalar.Parameter("b")
	require.True(t, ok)
	assert.Equal(t, 0, b.Shape().Rank())
}

func TestConvolution_Errors(t *testing.T) {
	t.Run("stride", func(t *testing.T) {
		for _, s := range []int{0, -1} {
			cfg := DefaultConvolutionConfig([]int{3}, 1)
			cfg.Strides = []int{s}
			_, err := NewConvolution("", cfg)
			assert.True(t, errors.Is(err, shapes.ErrInvalidArgument), "stride %d", s)
		}
	})

	t.Run("kernel rank", func(t *testing.T) {
		_, err := NewConvolution2D("", DefaultConvolutionConfig([]int{3}, 1))
		assert.True(t, errors.Is(err, shapes.ErrInvalidArgument))
		_, err = NewConvolution1D("", DefaultConvolutionConfig([]int{3, 3}, 1))
		assert.True(t, errors.Is(err, shapes.ErrInvalidArgument))
	})

	t.Run("reduction rank", func(t *testing.T) {
		cfg := DefaultConvolutionConfig([]int{3}, 1)
		cfg.ReductionRank = 2
		_, err := NewConvolution("", cfg)
		assert.True(t, errors.Is(err, shapes.ErrInvalidArgument))
	})

	t.Run("kernel larger than input", func(t *testing.T) {
		l := mustConv(t, DefaultConvolutionConfig([]int{5}, 1))
		_, err := l.Apply(mustInput(t, "x", tensor.Shape{1, 3}))
		assert.True(t, errors.Is(err, shapes.ErrShape))
		assert.False(t, l.IsBound())
	})

	t.Run("kernel rank exceeds input", func(t *testing.T) {
		l := mustConv(t, DefaultConvolutionConfig([]int{2, 2}, 1))
		_, err := l.Apply(mustInput(t, "x", tensor.Shape{1, 3}))
		assert.True(t, errors.Is(err, shapes.ErrShape))
	})
}
