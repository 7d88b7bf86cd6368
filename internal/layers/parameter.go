package layers

import (
	"github.com/born-ml/layers/internal/tensor"
)

// Parameter is a named tensor owned by a layer.
//
// Parameters are created when their layer binds to its input shape and are
// read-only afterwards. The name is unique within the owning layer
// (e.g., "W", "b", "E").
//
// Example:
//
//	w, ok := dense.Parameter("W")
//	values := w.Value().Data()
type Parameter struct {
	name  string         // Parameter name (e.g., "W", "b")
	value *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{name: name, value: value}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Shape returns the shape of the parameter tensor.
func (p *Parameter) Shape() tensor.Shape {
	return p.value.Shape()
}
