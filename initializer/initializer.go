// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package initializer provides the initial values of layer parameters.
package initializer

import (
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/tensor"
)

// Initializer produces the value of a parameter.
type Initializer = initializer.Initializer

// Func adapts a function to the Initializer interface.
type Func = initializer.Func

// GlorotUniform draws from the Glorot uniform distribution. A zero seed
// takes a fresh seed from the process-wide sequence.
func GlorotUniform(seed int64) Initializer {
	return initializer.GlorotUniform(seed)
}

// Normal draws from N(0, scale^2).
func Normal(scale float64, seed int64) Initializer {
	return initializer.Normal(scale, seed)
}

// Constant fills the parameter with v.
func Constant(v float32) Initializer {
	return initializer.Constant(v)
}

// Zeros fills the parameter with zeros.
func Zeros() Initializer {
	return initializer.Zeros()
}

// Values uses explicit values in row-major order.
//
// Example:
//
//	cfg := layers.DefaultDenseConfig(3)
//	cfg.Init = initializer.Values(1, 2, 3, 4, 5, 6) // W: (2, 3)
func Values(values ...float32) Initializer {
	return initializer.Values(values...)
}

// FromTensor uses the values of t.
func FromTensor(t *tensor.Tensor) Initializer {
	return initializer.FromTensor(t)
}
