// Package initializer creates the initial values of layer parameters.
//
// Random initializers draw from a Mersenne Twister seeded per parameter, so a
// program that builds the same layers in the same order gets the same weights.
package initializer

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/seehuhn/mt19937"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// Initializer produces the value of a parameter.
//
// fanIn and fanOut are the number of input and output units connected
// through the parameter; initializers that do not scale by fan ignore them.
type Initializer interface {
	Init(shape tensor.Shape, fanIn, fanOut int) (*tensor.Tensor, error)
}

// Func adapts a function to the Initializer interface.
type Func func(shape tensor.Shape, fanIn, fanOut int) (*tensor.Tensor, error)

// Init calls f.
func (f Func) Init(shape tensor.Shape, fanIn, fanOut int) (*tensor.Tensor, error) {
	return f(shape, fanIn, fanOut)
}

// seedCounter hands out a distinct seed to every default random initializer.
var seedCounter atomic.Int64

// NextSeed returns the next seed of the process-wide sequence.
func NextSeed() int64 {
	return seedCounter.Add(1)
}

// GlorotUniform draws from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
//
// A zero seed takes the next value of the process-wide seed sequence on every call.
func GlorotUniform(seed int64) Initializer {
	return Func(func(shape tensor.Shape, fanIn, fanOut int) (*tensor.Tensor, error) {
		if fanIn+fanOut <= 0 {
			return nil, shapes.Invalid("glorot_uniform", "fan_in + fan_out must be positive, got %d", fanIn+fanOut)
		}
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		rng := newRand(seed)
		data := make([]float32, shape.NumElements())
		for i := range data {
			data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
		}
		return tensor.FromSlice(data, shape)
	})
}

// Normal draws from N(0, scale^2).
func Normal(scale float64, seed int64) Initializer {
	return Func(func(shape tensor.Shape, _, _ int) (*tensor.Tensor, error) {
		rng := newRand(seed)
		data := make([]float32, shape.NumElements())
		for i := range data {
			data[i] = float32(rng.NormFloat64() * scale)
		}
		return tensor.FromSlice(data, shape)
	})
}

// Constant fills the parameter with v.
func Constant(v float32) Initializer {
	return Func(func(shape tensor.Shape, _, _ int) (*tensor.Tensor, error) {
		if err := shape.Validate(); err != nil {
			return nil, shapes.Incompatible("constant", shape, "%v", err)
		}
		return tensor.Full(shape, v), nil
	})
}

// Zeros fills the parameter with zeros.
func Zeros() Initializer {
	return Constant(0)
}

// Values uses explicit values. The element count must match the parameter;
// the values are reshaped to the parameter's shape.
func Values(values ...float32) Initializer {
	return Func(func(shape tensor.Shape, _, _ int) (*tensor.Tensor, error) {
		if len(values) != shape.NumElements() {
			return nil, shapes.Incompatible("values", shape, "got %d initial values for %d elements", len(values), shape.NumElements())
		}
		return tensor.FromSlice(values, shape)
	})
}

// FromTensor uses the values of t, reshaped to the parameter's shape.
func FromTensor(t *tensor.Tensor) Initializer {
	return Values(t.Data()...)
}

// Default returns the initializer used when a layer is not given one.
func Default() Initializer {
	return GlorotUniform(0)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = NextSeed()
	}
	src := mt19937.New()
	src.Seed(seed)
	//nolint:gosec // Weight initialization is not security-critical.
	return rand.New(src)
}
