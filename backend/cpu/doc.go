// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend the layers compute on.
//
// # Overview
//
// The backend implements the two kernels the layers need:
//   - MatMul: vector·matrix and matrix·matrix products, row-parallel
//   - Correlate: N-dimensional cross-correlation via im2col, with zero padding
//
// Work is split across goroutines once it is large enough; results are
// identical to a sequential run.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/layers/backend/cpu"
//	    "github.com/born-ml/layers/layers"
//	)
//
//	func main() {
//	    backend := cpu.NewWithConfig(cpu.ParallelConfig{Enabled: false})
//	    dense, _ := layers.NewDense("out", layers.DefaultDenseConfig(10))
//	    dense.WithBackend(backend)
//	}
package cpu
