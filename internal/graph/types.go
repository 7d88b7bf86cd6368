// Package graph composes functions over tensors into a directed acyclic
// computation and evaluates it against bound input values.
//
// A graph is built from placeholders (Input) and applications (Apply). Every
// Output carries the static Type of the values it produces, inferred when the
// application is built, so shape errors surface at construction time.
package graph

import (
	"fmt"

	"github.com/born-ml/layers/internal/tensor"
)

// Axis tags a dimension of an input as dynamic: its extent varies per invocation.
type Axis struct {
	name     string
	sequence bool
}

// Dynamic axes understood by the evaluator.
var (
	// BatchAxis enumerates independent samples. Every input carries it.
	BatchAxis = Axis{name: "batch"}

	// SequenceAxis orders the steps of one sample. Its length may differ
	// between samples of the same batch.
	SequenceAxis = Axis{name: "sequence", sequence: true}
)

// NewSequenceAxis returns a named sequence axis.
func NewSequenceAxis(name string) Axis {
	return Axis{name: name, sequence: true}
}

// Name returns the axis name.
func (a Axis) Name() string {
	return a.name
}

// IsSequence reports whether the axis is a sequence axis.
func (a Axis) IsSequence() bool {
	return a.sequence
}

// Type is the static description of the values on a graph edge: the shape of
// one step and whether a dynamic sequence axis leads it.
//
// A sample of a non-sequence Type has exactly Shape. A sample of a sequence
// Type has shape [T, Shape...] for some T >= 1.
type Type struct {
	Shape    tensor.Shape
	Sequence bool
}

// TensorOf returns a non-sequence Type.
func TensorOf(dims ...int) Type {
	return Type{Shape: tensor.Shape(dims).Clone()}
}

// SequenceOf returns a sequence Type with the given step shape.
func SequenceOf(dims ...int) Type {
	return Type{Shape: tensor.Shape(dims).Clone(), Sequence: true}
}

// Equal reports whether both types describe the same values.
func (t Type) Equal(other Type) bool {
	return t.Sequence == other.Sequence && t.Shape.Equal(other.Shape)
}

// String formats the type, e.g. Tensor(2, 3) or Sequence[Tensor(5)].
func (t Type) String() string {
	if t.Sequence {
		return fmt.Sprintf("Sequence[Tensor%v]", t.Shape)
	}
	return fmt.Sprintf("Tensor%v", t.Shape)
}

// SampleShape returns the shape of one sample with sequence length n.
func (t Type) SampleShape(n int) tensor.Shape {
	if t.Sequence {
		return t.Shape.Prepend(n)
	}
	return t.Shape.Clone()
}
