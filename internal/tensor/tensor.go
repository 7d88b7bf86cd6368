// Package tensor provides the dense float32 tensor used by the layer engine.
//
// Tensors are immutable: every operation returns a new tensor and
// constructors copy the caller's data. Data is stored row-major.
package tensor

import (
	"fmt"
	"math"

	"github.com/born-ml/layers/internal/shapes"
)

// Tensor is a dense multi-dimensional array of float32 values.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", shapes.Incompatible("tensor", shape, "%v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != len(t.data) {
		return nil, shapes.Incompatible("tensor", shape, "data length %d does not match %d elements", len(data), len(t.data))
	}
	copy(t.data, data)
	return t, nil
}

// FromFloat64 creates a tensor from float64 values.
func FromFloat64(data []float64, shape Shape) (*Tensor, error) {
	conv := make([]float32, len(data))
	for i, v := range data {
		conv[i] = float32(v)
	}
	return FromSlice(conv, shape)
}

// Vector creates a rank-1 tensor holding values.
func Vector(values ...float32) *Tensor {
	if len(values) == 0 {
		panic("tensor.Vector: at least one value required")
	}
	return wrap(Shape{len(values)}, append([]float32(nil), values...))
}

// Scalar creates a rank-0 tensor.
func Scalar(v float32) *Tensor {
	return wrap(Shape{}, []float32{v})
}

// wrap builds a tensor around data without copying. Callers own data exclusively.
func wrap(shape Shape, data []float32) *Tensor {
	return &Tensor{shape: shape, data: data}
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Dim returns the extent of axis i.
func (t *Tensor) Dim(i int) int {
	return t.shape[i]
}

// NumElements returns the number of stored values.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns a copy of the underlying values in row-major order.
func (t *Tensor) Data() []float32 {
	return append([]float32(nil), t.data...)
}

// Item returns the single value of a one-element tensor.
func (t *Tensor) Item() float32 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor.Item: tensor has %d elements", len(t.data)))
	}
	return t.data[0]
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(indices ...int) float32 {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor.At: got %d indices for rank %d", len(indices), len(t.shape)))
	}
	strides := t.shape.ComputeStrides()
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor.At: index %d out of range for axis %d of size %d", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return t.data[offset]
}

// Equal reports whether both tensors have the same shape and identical values.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether both tensors have the same shape and every pair of
// elements differs by at most atol + rtol*|other|.
func (t *Tensor) AllClose(other *Tensor, rtol, atol float64) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		a, b := float64(t.data[i]), float64(other.data[i])
		if math.Abs(a-b) > atol+rtol*math.Abs(b) {
			return false
		}
	}
	return true
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	const maxShown = 8
	if len(t.data) <= maxShown {
		return fmt.Sprintf("Tensor%v%v", t.shape, t.data)
	}
	return fmt.Sprintf("Tensor%v%v...", t.shape, t.data[:maxShown])
}

// Raw exposes the backing slice for kernels that produce new tensors from it.
// The slice must not be modified.
func (t *Tensor) Raw() []float32 {
	return t.data
}

// Wrap adopts data as the buffer of a new tensor without copying. The caller
// must not retain or modify data afterwards. Used by compute kernels.
func Wrap(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, shapes.Incompatible("tensor", shape, "%v", err)
	}
	if len(data) != shape.NumElements() {
		return nil, shapes.Incompatible("tensor", shape, "data length %d does not match %d elements", len(data), shape.NumElements())
	}
	return wrap(shape.Clone(), data), nil
}
