package layers

import (
	"fmt"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// LayerNormalizationConfig configures a layer normalization.
type LayerNormalizationConfig struct {
	Epsilon      float32 // Added to the standard deviation
	InitialScale float32 // Initial value of the scale parameter
	InitialBias  float32 // Initial value of the bias parameter
}

// DefaultLayerNormalizationConfig returns epsilon 1e-5, scale 1 and bias 0,
// which makes the layer a plain normalization.
func DefaultLayerNormalizationConfig() LayerNormalizationConfig {
	return LayerNormalizationConfig{
		Epsilon:      1e-5,
		InitialScale: 1,
	}
}

// NewLayerNormalization creates a layer normalization over every element of
// a step.
//
// Formula: y = (x - mean(x)) / (std(x) + epsilon) * scale + bias
//
// Where:
//   - mean and std are the population statistics of the step
//   - scale and bias are scalar parameters
//
// The parameters do not depend on the input shape and exist from construction.
func NewLayerNormalization(name string, cfg LayerNormalizationConfig) (*Layer, error) {
	if cfg.Epsilon < 0 {
		return nil, shapes.Invalid("layer_normalization", "epsilon must be non-negative, got %v", cfg.Epsilon)
	}
	l := newLayer(name, KindLayerNormalization)
	l.norm = &cfg
	l.params = []*Parameter{
		NewParameter("scale", tensor.Scalar(cfg.InitialScale)),
		NewParameter("bias", tensor.Scalar(cfg.InitialBias)),
	}
	return l, nil
}

func (l *Layer) normalizeStep(x *tensor.Tensor) (*tensor.Tensor, error) {
	mean := float64(x.Mean())
	std := float64(x.Std())
	scale := float64(l.param("scale").Item())
	bias := float64(l.param("bias").Item())
	denom := std + float64(l.norm.Epsilon)

	return x.Map(func(v float32) float32 {
		return float32((float64(v)-mean)/denom*scale + bias)
	}), nil
}

// NewBatchNormalization is not supported: evaluation-time statistics of
// batch normalization are not defined for this engine.
func NewBatchNormalization(name string) (*Layer, error) {
	return nil, fmt.Errorf("batch_normalization %q: %w", name, shapes.ErrUnsupported)
}
