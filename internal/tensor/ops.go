package tensor

import (
	"math"

	"github.com/born-ml/layers/internal/shapes"
)

// Reshape returns a tensor with the same values and a new shape.
// The element count must not change.
func (t *Tensor) Reshape(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, shapes.Incompatible("reshape", shape, "%v", err)
	}
	if shape.NumElements() != len(t.data) {
		return nil, shapes.Incompatible("reshape", t.shape, "cannot reshape %d elements to %v", len(t.data), shape)
	}
	return wrap(shape.Clone(), t.data), nil
}

// Flatten returns a rank-1 view of the tensor.
func (t *Tensor) Flatten() *Tensor {
	return wrap(Shape{len(t.data)}, t.data)
}

// Add returns t + other elementwise. A scalar operand is broadcast.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	return t.zip("add", other, func(a, b float32) float32 { return a + b })
}

// Sub returns t - other elementwise. A scalar operand is broadcast.
func (t *Tensor) Sub(other *Tensor) (*Tensor, error) {
	return t.zip("sub", other, func(a, b float32) float32 { return a - b })
}

// Mul returns t * other elementwise. A scalar operand is broadcast.
func (t *Tensor) Mul(other *Tensor) (*Tensor, error) {
	return t.zip("mul", other, func(a, b float32) float32 { return a * b })
}

// Maximum returns the elementwise maximum of t and other.
func (t *Tensor) Maximum(other *Tensor) (*Tensor, error) {
	return t.zip("maximum", other, func(a, b float32) float32 {
		if b > a {
			return b
		}
		return a
	})
}

// Minimum returns the elementwise minimum of t and other.
func (t *Tensor) Minimum(other *Tensor) (*Tensor, error) {
	return t.zip("minimum", other, func(a, b float32) float32 {
		if b < a {
			return b
		}
		return a
	})
}

// zip combines two tensors of equal shape, or a tensor with a one-element
// operand on either side.
func (t *Tensor) zip(op string, other *Tensor, f func(a, b float32) float32) (*Tensor, error) {
	switch {
	case t.shape.Equal(other.shape):
		out := make([]float32, len(t.data))
		for i := range out {
			out[i] = f(t.data[i], other.data[i])
		}
		return wrap(t.shape.Clone(), out), nil
	case len(other.data) == 1 && len(other.shape) <= len(t.shape):
		b := other.data[0]
		out := make([]float32, len(t.data))
		for i := range out {
			out[i] = f(t.data[i], b)
		}
		return wrap(t.shape.Clone(), out), nil
	case len(t.data) == 1 && len(t.shape) <= len(other.shape):
		a := t.data[0]
		out := make([]float32, len(other.data))
		for i := range out {
			out[i] = f(a, other.data[i])
		}
		return wrap(other.shape.Clone(), out), nil
	default:
		return nil, shapes.Mismatch(op, t.shape, other.shape)
	}
}

// Map applies f to every element.
func (t *Tensor) Map(f func(float32) float32) *Tensor {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = f(v)
	}
	return wrap(t.shape.Clone(), out)
}

// Scale multiplies every element by s.
func (t *Tensor) Scale(s float32) *Tensor {
	return t.Map(func(v float32) float32 { return v * s })
}

// Sum returns the sum of all elements, accumulated in float64.
func (t *Tensor) Sum() float32 {
	var sum float64
	for _, v := range t.data {
		sum += float64(v)
	}
	return float32(sum)
}

// Mean returns the arithmetic mean of all elements.
func (t *Tensor) Mean() float32 {
	return t.Sum() / float32(len(t.data))
}

// Std returns the population standard deviation of all elements.
func (t *Tensor) Std() float32 {
	mean := float64(t.Mean())
	var acc float64
	for _, v := range t.data {
		d := float64(v) - mean
		acc += d * d
	}
	return float32(math.Sqrt(acc / float64(len(t.data))))
}

// Index returns the i-th sub-tensor along the leading axis.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if len(t.shape) == 0 {
		return nil, shapes.Incompatible("index", t.shape, "cannot index a scalar")
	}
	if i < 0 || i >= t.shape[0] {
		return nil, shapes.Invalid("index", "index %d out of range for leading axis of size %d", i, t.shape[0])
	}
	inner := t.shape[1:].Clone()
	n := inner.NumElements()
	return wrap(inner, t.data[i*n:(i+1)*n]), nil
}

// Unstack splits the tensor along its leading axis.
func (t *Tensor) Unstack() ([]*Tensor, error) {
	if len(t.shape) == 0 {
		return nil, shapes.Incompatible("unstack", t.shape, "cannot unstack a scalar")
	}
	out := make([]*Tensor, t.shape[0])
	for i := range out {
		sub, err := t.Index(i)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}

// Stack joins tensors of identical shape along a new leading axis.
func Stack(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, shapes.Invalid("stack", "no tensors to stack")
	}
	inner := ts[0].shape
	n := len(ts[0].data)
	out := make([]float32, 0, n*len(ts))
	for _, t := range ts {
		if !t.shape.Equal(inner) {
			return nil, shapes.Mismatch("stack", inner, t.shape)
		}
		out = append(out, t.data...)
	}
	return wrap(inner.Prepend(len(ts)), out), nil
}

// Permute reorders the axes: output axis i is input axis perm[i].
func (t *Tensor) Permute(perm ...int) (*Tensor, error) {
	rank := len(t.shape)
	if len(perm) != rank {
		return nil, shapes.Invalid("permute", "got %d axes for rank %d", len(perm), rank)
	}
	seen := make([]bool, rank)
	outShape := make(Shape, rank)
	for i, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return nil, shapes.Invalid("permute", "invalid permutation %v", perm)
		}
		seen[p] = true
		outShape[i] = t.shape[p]
	}

	inStrides := t.shape.ComputeStrides()
	out := make([]float32, len(t.data))
	idx := make([]int, rank)
	for o := range out {
		src := 0
		for i := range idx {
			src += idx[i] * inStrides[perm[i]]
		}
		out[o] = t.data[src]
		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return wrap(outShape, out), nil
}
