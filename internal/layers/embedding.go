package layers

import (
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// EmbeddingConfig configures an embedding layer.
type EmbeddingConfig struct {
	Dim  int                     // Embedding dimension
	Init initializer.Initializer // Initializer of E; nil means Glorot uniform

	// Weights, when set, is the [in_dim, Dim] table used as E. The layer is
	// then bound at construction and Dim may be left zero.
	Weights *tensor.Tensor
}

// NewEmbedding creates an embedding layer: y = x · E.
//
// x is usually a one-hot step of width in_dim, which makes y the row of E
// selected by the hot index. Architecture:
//   - E: [in_dim, Dim] parameter, created on first application unless given
//   - Forward: step (in_dim) -> (Dim)
//
// Example:
//
//	embed, err := layers.NewEmbedding("embed", layers.EmbeddingConfig{Dim: 256})
//	e, err := embed.Apply(tokens) // tokens: Sequence[Tensor(50257)]
func NewEmbedding(name string, cfg EmbeddingConfig) (*Layer, error) {
	l := newLayer(name, KindEmbedding)

	if cfg.Weights != nil {
		shape := cfg.Weights.Shape()
		if len(shape) != 2 {
			return nil, shapes.Incompatible("embedding", shape, "weights must be 2D [in_dim, dim]")
		}
		if cfg.Dim != 0 && cfg.Dim != shape[1] {
			return nil, shapes.Mismatch("embedding", []int{shape[0], cfg.Dim}, shape)
		}
		cfg.Dim = shape[1]
		e, err := tensor.FromSlice(cfg.Weights.Data(), shape)
		if err != nil {
			return nil, err
		}
		cfg.Weights = e
		l.params = []*Parameter{NewParameter("E", e)}
		l.inShape = tensor.Shape{shape[0]}
		l.state = bound
	}

	if cfg.Dim <= 0 {
		return nil, shapes.Invalid("embedding", "dimension must be positive, got %d", cfg.Dim)
	}
	if cfg.Init == nil {
		cfg.Init = initializer.Default()
	}
	l.embedding = &cfg
	return l, nil
}

// OutputShape returns the step shape produced for the step shape in.
func (c EmbeddingConfig) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if err := in.Validate(); err != nil {
		return nil, shapes.Incompatible("embedding", in, "%v", err)
	}
	if c.Weights != nil && in.NumElements() != c.Weights.Dim(0) {
		return nil, shapes.Incompatible("embedding", in, "input has %d elements, weights have %d rows", in.NumElements(), c.Weights.Dim(0))
	}
	return tensor.Shape{c.Dim}, nil
}

func (l *Layer) outputEmbedding(in graph.Type) (graph.Type, error) {
	out, err := l.embedding.OutputShape(in.Shape)
	if err != nil {
		return graph.Type{}, err
	}
	return graph.Type{Shape: out, Sequence: in.Sequence}, nil
}

func (l *Layer) bindEmbedding(in tensor.Shape) error {
	cfg := l.embedding
	if cfg.Weights != nil {
		return nil // Bound at construction; OutputShape checked the width.
	}
	return l.bind(in, func() ([]*Parameter, error) {
		inDim := in.NumElements()
		e, err := cfg.Init.Init(tensor.Shape{inDim, cfg.Dim}, inDim, cfg.Dim)
		if err != nil {
			return nil, err
		}
		return []*Parameter{NewParameter("E", e)}, nil
	})
}

func (l *Layer) embedStep(x *tensor.Tensor) (*tensor.Tensor, error) {
	e := l.param("E")
	if e == nil {
		return nil, shapes.Invalid(l.label(), "parameters are not bound")
	}
	return l.backend.MatMul(x.Flatten(), e)
}

// EmbedIndices returns the rows of E selected by ids, shaped [len(ids), Dim].
// It equals applying the layer to the one-hot encoding of ids.
func (l *Layer) EmbedIndices(ids []int) (*tensor.Tensor, error) {
	if l.kind != KindEmbedding {
		return nil, shapes.Invalid(l.label(), "not an embedding layer")
	}
	if len(ids) == 0 {
		return nil, shapes.Invalid(l.label(), "no indices")
	}
	e := l.param("E")
	if e == nil {
		return nil, shapes.Invalid(l.label(), "parameters are not bound")
	}

	rows, dim := e.Dim(0), e.Dim(1)
	table := e.Raw()
	out := make([]float32, 0, len(ids)*dim)
	for _, id := range ids {
		if id < 0 || id >= rows {
			return nil, shapes.Invalid(l.label(), "index %d out of range [0, %d)", id, rows)
		}
		out = append(out, table[id*dim:(id+1)*dim]...)
	}
	return tensor.Wrap(out, tensor.Shape{len(ids), dim})
}
