// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layers provides composable network layers for forward evaluation.
//
// # Overview
//
// The package provides:
//   - Dense: activation(x · W + b)
//   - Convolution (1D/2D/3D): strided, padded cross-correlation, optionally
//     running over the sequence axis
//   - Embedding: x · E for one-hot steps, or row lookup by index
//   - Recurrence and Fold: scans over a sequence with a reduction (Plus,
//     ElementMax, ElementMin) or a recurrent cell (GRU, RNNStep)
//   - Dropout (identity at evaluation) and LayerNormalization
//   - Sequential composition
//
// Parameters whose shape depends on the input are created when a layer is
// first applied; from then on the layer only accepts that input shape.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/layers/graph"
//	    "github.com/born-ml/layers/layers"
//	    "github.com/born-ml/layers/tensor"
//	)
//
//	func main() {
//	    x, _ := graph.Input("x", tensor.Shape{2})
//	    dense, _ := layers.NewDense("dense", layers.DefaultDenseConfig(3))
//	    y, _ := dense.Apply(x)
//
//	    out, err := y.Eval(map[string]graph.Value{
//	        "x": graph.Samples(tensor.Vector(1, 2)),
//	    })
//	}
//
// # Errors
//
// Every error matches one of ErrShape, ErrInvalidArgument, ErrUnbound or
// ErrUnsupported with errors.Is.
package layers
