package tensor

import (
	"testing"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(data, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 6, x.NumElements())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))

	// The tensor owns a copy of the caller's data.
	data[0] = 100
	assert.Equal(t, float32(1), x.At(0, 0))

	// And Data hands out a copy.
	out := x.Data()
	out[1] = 100
	assert.Equal(t, float32(2), x.At(0, 1))
}

func TestFromSlice_Errors(t *testing.T) {
	_, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.ErrorIs(t, err, shapes.ErrShape)

	_, err = FromSlice([]float32{1, 2}, Shape{2, 0})
	assert.ErrorIs(t, err, shapes.ErrShape)
}

func TestScalar(t *testing.T) {
	s := Scalar(3)
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, 1, s.NumElements())
	assert.Equal(t, float32(3), s.Item())
	assert.Equal(t, float32(3), s.At())
}

func TestCreation(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0, 0}, Zeros(Shape{2, 2}).Data())
	assert.Equal(t, []float32{1, 1, 1}, Ones(Shape{3}).Data())
	assert.Equal(t, []float32{2.5, 2.5}, Full(Shape{2}, 2.5).Data())
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, Arange(Shape{2, 3}).Data())

	assert.Panics(t, func() { Zeros(Shape{-1}) })
}

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	assert.Equal(t, Shape{5, 2, 3, 4}, s.Prepend(5))
	assert.Equal(t, Shape{2, 3, 4, 1}, s.Concat(Shape{1}))
	assert.Equal(t, "(2, 3, 4)", s.String())
	assert.Error(t, Shape{2, 0}.Validate())
}

func TestAllClose(t *testing.T) {
	a := Vector(1, 2, 3)
	b := Vector(1, 2, 3.0000001)
	assert.True(t, a.AllClose(b, 0, 1e-6))
	assert.False(t, a.AllClose(Vector(1, 2, 3.1), 0, 1e-6))
	assert.False(t, a.AllClose(Vector(1, 2), 0, 1))
	assert.True(t, a.Equal(Vector(1, 2, 3)))
}
