// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensors the layers operate on.
//
// # Overview
//
// A Tensor has a row-major buffer and a Shape; an empty Shape is a scalar.
// Tensors are immutable once built: every operation returns a new tensor,
// and constructors copy the caller's slices.
//
// # Basic Usage
//
//	import "github.com/born-ml/layers/tensor"
//
//	func main() {
//	    x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    y := tensor.Ones(tensor.Shape{2, 3})
//	    z, err := x.Add(y)
//	}
package tensor
