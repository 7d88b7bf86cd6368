package layers

import (
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// DenseConfig configures a fully connected layer.
type DenseConfig struct {
	Out        tensor.Shape            // Output shape of one step
	Activation Activation              // Applied to the affine result; nil means identity
	Bias       bool                    // Adds the bias parameter b
	Init       initializer.Initializer // Initializer of W; nil means Glorot uniform
}

// DefaultDenseConfig returns a config with bias and no activation.
func DefaultDenseConfig(out ...int) DenseConfig {
	return DenseConfig{
		Out:  tensor.Shape(out).Clone(),
		Bias: true,
	}
}

// NewDense creates a fully connected layer.
//
// Performs the transformation: y = activation(x · W + b)
// where:
//   - x is one step flattened to [in_dim]
//   - W is the weight with shape [in..., out...], used as [in_dim, out_dim]
//   - b is the bias with shape [out...], initialised to zeros
//
// W and b are created when the layer is first applied.
//
// Example:
//
//	dense, err := layers.NewDense("hidden", layers.DefaultDenseConfig(128))
//	h, err := dense.Apply(x) // x: (784) -> h: (128)
func NewDense(name string, cfg DenseConfig) (*Layer, error) {
	if len(cfg.Out) == 0 {
		return nil, shapes.Invalid("dense", "output shape is empty")
	}
	if err := cfg.Out.Validate(); err != nil {
		return nil, shapes.Invalid("dense", "output shape %v: %v", cfg.Out, err)
	}
	cfg.Out = cfg.Out.Clone()
	if cfg.Init == nil {
		cfg.Init = initializer.Default()
	}

	l := newLayer(name, KindDense)
	l.dense = &cfg
	return l, nil
}

// OutputShape returns the step shape produced for the step shape in.
func (c DenseConfig) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if err := in.Validate(); err != nil {
		return nil, shapes.Incompatible("dense", in, "%v", err)
	}
	return c.Out.Clone(), nil
}

func (l *Layer) outputDense(in graph.Type) (graph.Type, error) {
	out, err := l.dense.OutputShape(in.Shape)
	if err != nil {
		return graph.Type{}, err
	}
	return graph.Type{Shape: out, Sequence: in.Sequence}, nil
}

func (l *Layer) bindDense(in tensor.Shape) error {
	return l.bind(in, func() ([]*Parameter, error) {
		cfg := l.dense
		inDim, outDim := in.NumElements(), cfg.Out.NumElements()

		w, err := cfg.Init.Init(in.Concat(cfg.Out), inDim, outDim)
		if err != nil {
			return nil, err
		}
		params := []*Parameter{NewParameter("W", w)}
		if cfg.Bias {
			params = append(params, NewParameter("b", tensor.Zeros(cfg.Out)))
		}
		return params, nil
	})
}

// denseStep computes activation(x · W + b) for one step.
func (l *Layer) denseStep(x *tensor.Tensor) (*tensor.Tensor, error) {
	cfg := l.dense
	w := l.param("W")
	if w == nil {
		return nil, shapes.Invalid(l.label(), "parameters are not bound")
	}

	inDim, outDim := x.NumElements(), cfg.Out.NumElements()
	wm, err := w.Reshape(tensor.Shape{inDim, outDim})
	if err != nil {
		return nil, err
	}
	y, err := l.backend.MatMul(x.Flatten(), wm)
	if err != nil {
		return nil, err
	}
	if cfg.Bias {
		if y, err = y.Add(l.param("b").Flatten()); err != nil {
			return nil, err
		}
	}
	cfg.Activation.apply(y.Raw())
	return y.Reshape(cfg.Out)
}
