package initializer

import (
	"math"
	"testing"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlorotUniform_Bounds(t *testing.T) {
	shape := tensor.Shape{20, 30}
	w, err := GlorotUniform(42).Init(shape, 20, 30)
	require.NoError(t, err)

	assert.Equal(t, shape, w.Shape())
	bound := float32(math.Sqrt(6.0 / 50.0))
	for i, v := range w.Data() {
		if v < -bound || v > bound {
			t.Fatalf("element %d = %v outside [-%v, %v]", i, v, bound, bound)
		}
	}
}

// TestGlorotUniform_Seeded checks that a fixed seed reproduces the weights and
// that the default seed sequence does not.
func TestGlorotUniform_Seeded(t *testing.T) {
	shape := tensor.Shape{4, 4}

	a, err := GlorotUniform(7).Init(shape, 4, 4)
	require.NoError(t, err)
	b, err := GlorotUniform(7).Init(shape, 4, 4)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := Default().Init(shape, 4, 4)
	require.NoError(t, err)
	d, err := Default().Init(shape, 4, 4)
	require.NoError(t, err)
	assert.False(t, c.Equal(d))
}

func TestGlorotUniform_InvalidFan(t *testing.T) {
	_, err := GlorotUniform(1).Init(tensor.Shape{2}, 0, 0)
	assert.ErrorIs(t, err, shapes.ErrInvalidArgument)
}

func TestNormal(t *testing.T) {
	w, err := Normal(0.01, 3).Init(tensor.Shape{1000}, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, w.Mean(), 0.002)
	assert.InDelta(t, 0.01, w.Std(), 0.002)
}

func TestConstantAndZeros(t *testing.T) {
	c, err := Constant(2).Init(tensor.Shape{3}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2, 2}, c.Data())

	z, err := Zeros().Init(tensor.Shape{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0), z.Item())
}

func TestValues(t *testing.T) {
	v, err := Values(4, 2, 1).Init(tensor.Shape{3, 1}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 1}, v.Shape())
	assert.Equal(t, float32(2), v.At(1, 0))

	_, err = Values(4, 2).Init(tensor.Shape{3}, 0, 0)
	assert.ErrorIs(t, err, shapes.ErrShape)

	f, err := FromTensor(tensor.Arange(tensor.Shape{2, 2})).Init(tensor.Shape{4}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3}, f.Data())
}
