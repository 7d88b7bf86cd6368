// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph builds and evaluates graphs of layer applications.
//
// Placeholders created with Input are bound to a Value (one tensor per
// sample) at evaluation time. Applying a layer returns an *Output whose
// static Type is inferred immediately; Eval resolves the graph in dependency
// order, evaluating every node once per sample.
//
// Example:
//
//	x, _ := graph.Input("x", tensor.Shape{2})
//	y, _ := dense.Apply(x)
//	out, err := y.Eval(map[string]graph.Value{"x": graph.Samples(tensor.Vector(1, 2))})
package graph

import (
	"context"

	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/parallel"
	"github.com/born-ml/layers/internal/tensor"
)

// Type is the static description of a graph edge: the shape of one step
// and whether a dynamic sequence axis leads it.
type Type = graph.Type

// Axis is a dynamic axis of an input.
type Axis = graph.Axis

// Output is a node of the graph.
type Output = graph.Output

// Function is the computation of a node.
type Function = graph.Function

// Value is a batch of samples, one tensor per sample.
type Value = graph.Value

// Evaluator runs graphs with a given parallel configuration.
type Evaluator = graph.Evaluator

// UnboundInputError reports a placeholder without a binding.
type UnboundInputError = graph.UnboundInputError

// Dynamic axes.
var (
	BatchAxis    = graph.BatchAxis
	SequenceAxis = graph.SequenceAxis
)

// NewSequenceAxis creates a named sequence axis.
func NewSequenceAxis(name string) Axis {
	return graph.NewSequenceAxis(name)
}

// TensorOf returns a non-sequence Type.
func TensorOf(dims ...int) Type {
	return graph.TensorOf(dims...)
}

// SequenceOf returns a sequence Type with the given step shape.
func SequenceOf(dims ...int) Type {
	return graph.SequenceOf(dims...)
}

// Input creates a placeholder for samples of the given shape.
func Input(name string, shape tensor.Shape, axes ...Axis) (*Output, error) {
	return graph.Input(name, shape, axes...)
}

// InputOf creates a placeholder of the given Type.
func InputOf(name string, typ Type) (*Output, error) {
	return graph.InputOf(name, typ)
}

// Apply builds the application of fn to inputs.
func Apply(fn Function, inputs ...*Output) (*Output, error) {
	return graph.Apply(fn, inputs...)
}

// Eval evaluates out with the default evaluator.
func Eval(ctx context.Context, out *Output, bindings map[string]Value) (Value, error) {
	return graph.Eval(ctx, out, bindings)
}

// NewEvaluator creates an evaluator.
func NewEvaluator(cfg parallel.Config) *Evaluator {
	return graph.NewEvaluator(cfg)
}

// Batch splits a tensor along its leading axis into samples.
func Batch(t *tensor.Tensor) (Value, error) {
	return graph.Batch(t)
}

// Samples builds a Value from individual samples.
func Samples(samples ...*tensor.Tensor) Value {
	return graph.Samples(samples...)
}
