package layers

import (
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// NewSequential chains single-input layers: each layer's output becomes the
// next layer's input.
//
// Example:
//
//	model, err := layers.NewSequential("mlp", hidden, output)
//	y, err := model.Apply(x)
//
// This is equivalent to:
//
//	h, _ := hidden.Apply(x)
//	y, _ := output.Apply(h)
//
// The layers are shared by reference, so the composition and the layers
// applied on their own use the same parameters.
func NewSequential(name string, children ...*Layer) (*Layer, error) {
	if len(children) == 0 {
		return nil, shapes.Invalid("sequential", "no layers to compose")
	}
	for i, c := range children {
		if c == nil {
			return nil, shapes.Invalid("sequential", "layer %d is nil", i)
		}
		if c.arity() != 1 {
			return nil, shapes.Invalid("sequential", "layer %d (%s) takes %d inputs", i, c.label(), c.arity())
		}
	}
	l := newLayer(name, KindSequential)
	l.children = append([]*Layer(nil), children...)
	return l, nil
}

// Layers returns the composed layers in application order.
func (l *Layer) Layers() []*Layer {
	return append([]*Layer(nil), l.children...)
}

// inferSequential threads typ through the children, binding them when bind
// is set.
func (l *Layer) inferSequential(typ graph.Type, bind bool) (graph.Type, error) {
	var err error
	for _, c := range l.children {
		if bind {
			typ, err = c.Infer([]graph.Type{typ})
		} else {
			typ, err = c.InferOutputShape(typ)
		}
		if err != nil {
			return graph.Type{}, err
		}
	}
	return typ, nil
}

func (l *Layer) forwardSequential(typ graph.Type, x *tensor.Tensor) (*tensor.Tensor, error) {
	for _, c := range l.children {
		next, err := c.InferOutputShape(typ)
		if err != nil {
			return nil, err
		}
		if x, err = c.Forward([]graph.Type{typ}, []*tensor.Tensor{x}); err != nil {
			return nil, err
		}
		typ = next
	}
	return x, nil
}
