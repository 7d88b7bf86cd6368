package graph

import (
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// Value is a batch of samples, one tensor per sample. Samples of a sequence
// Type carry their own sequence length as the leading dimension.
type Value []*tensor.Tensor

// Batch splits a tensor along its leading (batch) axis.
func Batch(t *tensor.Tensor) (Value, error) {
	samples, err := t.Unstack()
	if err != nil {
		return nil, err
	}
	return Value(samples), nil
}

// MustBatch is like Batch but panics on error.
func MustBatch(t *tensor.Tensor) Value {
	v, err := Batch(t)
	if err != nil {
		panic(err)
	}
	return v
}

// Samples builds a Value from individual samples, e.g. sequences of
// different lengths.
func Samples(samples ...*tensor.Tensor) Value {
	return Value(samples)
}

// Stack joins the samples into one [batch, ...] tensor. It fails when the
// samples are ragged.
func (v Value) Stack() (*tensor.Tensor, error) {
	if len(v) == 0 {
		return nil, shapes.Invalid("stack", "empty value")
	}
	return tensor.Stack(v)
}

// Len returns the batch size.
func (v Value) Len() int {
	return len(v)
}
