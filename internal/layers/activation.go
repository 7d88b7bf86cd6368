package layers

import "math"

// Activation is an element-wise function applied to a layer's output.
// A nil Activation is the identity.
type Activation func(float32) float32

// Built-in activations.
var (
	// Identity returns its input unchanged.
	Identity Activation = func(x float32) float32 { return x }

	// Sigmoid applies σ(x) = 1 / (1 + exp(-x)).
	Sigmoid Activation = func(x float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(-float64(x))))
	}

	// Tanh applies the hyperbolic tangent.
	Tanh Activation = func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	}

	// ReLU applies max(0, x).
	ReLU Activation = func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	}

	// Softplus applies log(1 + exp(x)).
	Softplus Activation = func(x float32) float32 {
		v := float64(x)
		if v > 20 {
			return x
		}
		return float32(math.Log1p(math.Exp(v)))
	}
)

// apply replaces every element of x, a freshly computed buffer, by f(x).
// A nil f leaves x unchanged.
func (f Activation) apply(x []float32) {
	if f == nil {
		return
	}
	for i, v := range x {
		x[i] = f(v)
	}
}
