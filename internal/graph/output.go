package graph

import (
	"context"
	"fmt"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// Function is a node computation: a layer or any other mapping from input
// samples to an output sample.
type Function interface {
	// Name returns the function name. It may be empty.
	Name() string

	// Infer returns the output Type for the given input types. It is called
	// once per application, when the graph is built; a function with lazily
	// shaped parameters binds them here.
	Infer(in []Type) (Type, error)

	// Forward computes one output sample from one sample of each input.
	// in[i] conforms to types[i].
	Forward(types []Type, in []*tensor.Tensor) (*tensor.Tensor, error)
}

// Output is a node of the graph: either an input placeholder or the result of
// applying a Function to other outputs. Outputs are immutable once built and
// may be shared by several downstream applications.
type Output struct {
	name   string // Placeholder name; empty for applications
	fn     Function
	inputs []*Output
	typ    Type
}

// Input creates a placeholder that is bound to a Value at evaluation time.
//
// shape is the static shape of one sample (or of one step when a sequence
// axis is given). The batch axis is implicit.
//
// Example:
//
//	x, err := graph.Input("features", tensor.Shape{2})
//	seq, err := graph.Input("frames", tensor.Shape{5}, graph.SequenceAxis)
func Input(name string, shape tensor.Shape, axes ...Axis) (*Output, error) {
	if err := shape.Validate(); err != nil {
		return nil, shapes.Incompatible("input", shape, "%v", err)
	}
	typ := Type{Shape: shape.Clone()}
	for _, a := range axes {
		if a.sequence {
			if typ.Sequence {
				return nil, shapes.Invalid("input", "%q declares more than one sequence axis", name)
			}
			typ.Sequence = true
		}
	}
	return &Output{name: name, typ: typ}, nil
}

// InputOf creates a placeholder of the given Type.
func InputOf(name string, typ Type) (*Output, error) {
	if typ.Sequence {
		return Input(name, typ.Shape, SequenceAxis)
	}
	return Input(name, typ.Shape)
}

// Apply builds the application of fn to inputs and infers its output Type.
func Apply(fn Function, inputs ...*Output) (*Output, error) {
	types := make([]Type, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, shapes.Invalid("apply", "input %d of %q is nil", i, fn.Name())
		}
		types[i] = in.typ
	}
	typ, err := fn.Infer(types)
	if err != nil {
		return nil, err
	}
	return &Output{fn: fn, inputs: append([]*Output(nil), inputs...), typ: typ}, nil
}

// Type returns the static type of the values produced by the node.
func (o *Output) Type() Type {
	return Type{Shape: o.typ.Shape.Clone(), Sequence: o.typ.Sequence}
}

// Shape returns the static shape of one sample (one step for sequences).
func (o *Output) Shape() tensor.Shape {
	return o.typ.Shape.Clone()
}

// IsInput reports whether the node is a placeholder.
func (o *Output) IsInput() bool {
	return o.fn == nil
}

// Name returns the placeholder name or, for applications, the function name.
func (o *Output) Name() string {
	if o.fn != nil {
		return o.fn.Name()
	}
	return o.name
}

// Function returns the applied function, or nil for placeholders.
func (o *Output) Function() Function {
	return o.fn
}

// Inputs returns the direct inputs of the node.
func (o *Output) Inputs() []*Output {
	return append([]*Output(nil), o.inputs...)
}

// String describes the node.
func (o *Output) String() string {
	if o.fn == nil {
		return fmt.Sprintf("Input(%q: %v)", o.name, o.typ)
	}
	return fmt.Sprintf("%s -> %v", label(o), o.typ)
}

// Find returns the closest node (breadth-first from o) whose name equals name.
func (o *Output) Find(name string) (*Output, bool) {
	seen := map[*Output]bool{o: true}
	queue := []*Output{o}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.Name() == name {
			return n, true
		}
		for _, in := range n.inputs {
			if !seen[in] {
				seen[in] = true
				queue = append(queue, in)
			}
		}
	}
	return nil, false
}

// Arguments returns the placeholders reachable from o in first-use order.
func (o *Output) Arguments() []*Output {
	var args []*Output
	for _, n := range topoOrder(o) {
		if n.IsInput() {
			args = append(args, n)
		}
	}
	return args
}

// Eval evaluates the node with the default evaluator.
func (o *Output) Eval(bindings map[string]Value) (Value, error) {
	return Eval(context.Background(), o, bindings)
}

// topoOrder lists every node reachable from root with inputs before their users.
func topoOrder(root *Output) []*Output {
	var order []*Output
	visited := make(map[*Output]bool)
	var visit func(n *Output)
	visit = func(n *Output) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, in := range n.inputs {
			visit(in)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

func label(o *Output) string {
	if o.fn == nil {
		return fmt.Sprintf("input %q", o.name)
	}
	if o.fn.Name() != "" {
		return fmt.Sprintf("%q", o.fn.Name())
	}
	if s, ok := o.fn.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", o.fn)
}
