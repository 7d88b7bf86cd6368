package layers

import (
	"github.com/born-ml/layers/internal/shapes"
)

// DropoutConfig configures a dropout layer.
type DropoutConfig struct {
	Rate float64 // Drop probability in [0, 1)
}

// NewDropout creates a dropout layer.
//
// The engine only evaluates, so the layer is the identity for every rate;
// the rate is validated and kept for introspection.
func NewDropout(name string, rate float64) (*Layer, error) {
	if !(rate >= 0 && rate < 1) {
		return nil, shapes.Invalid("dropout", "rate must be in [0, 1), got %v", rate)
	}
	l := newLayer(name, KindDropout)
	l.dropout = &DropoutConfig{Rate: rate}
	return l, nil
}
