// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/layers/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense float32 tensor.
type Tensor = tensor.Tensor

// Creation functions

// New creates a zero-filled tensor.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice creates a tensor from a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromFloat64 creates a tensor from float64 values.
func FromFloat64(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromFloat64(data, shape)
}

// Vector creates a 1D tensor holding values.
func Vector(values ...float32) *Tensor {
	return tensor.Vector(values...)
}

// Scalar creates a rank 0 tensor.
func Scalar(v float32) *Tensor {
	return tensor.Scalar(v)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
//
// Example:
//
//	x := tensor.Full(tensor.Shape{2, 3}, 3.14)
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Arange creates a tensor of the given shape holding 0, 1, 2, ... in
// row-major order.
func Arange(shape Shape) *Tensor {
	return tensor.Arange(shape)
}

// Stack joins tensors of identical shape along a new leading axis.
func Stack(ts []*Tensor) (*Tensor, error) {
	return tensor.Stack(ts)
}
