package cpu

import (
	"github.com/born-ml/layers/internal/parallel"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// CorrelateParams describes the geometry of an N-dimensional correlation.
type CorrelateParams struct {
	Strides []int // One stride per spatial axis.
	LowPad  []int // Implicit zeros before the first input position, per spatial axis.
	Out     []int // Output extent per spatial axis.
}

// Correlate performs N-dimensional cross-correlation (the kernel is not
// flipped) using the im2col algorithm.
//
// Input shape:  [C, S_1, ..., S_d]
// Kernel shape: [F, C, K_1, ..., K_d]
// Output shape: [F, O_1, ..., O_d]
//
// Output position o on axis i reads input positions o*stride_i - lowPad_i + k
// for k in [0, K_i); positions outside the input read zero, which is how
// padding is realised.
//
// Algorithm: Im2col
//  1. Gather every receptive field into one row of a column matrix
//  2. Treat the kernel as a [F, C*K_1*...*K_d] matrix
//  3. Multiply: every output value is a dot product of a kernel row and a column row
func (cpu *CPUBackend) Correlate(input, kernel *tensor.Tensor, p CorrelateParams) (*tensor.Tensor, error) {
	inShape := input.Shape()
	kShape := kernel.Shape()
	d := len(inShape) - 1

	if d < 1 {
		return nil, shapes.Incompatible("correlate", inShape, "input must be [C, spatial...]")
	}
	if len(kShape) != d+2 {
		return nil, shapes.Incompatible("correlate", kShape, "kernel must be [F, C, %d spatial axes]", d)
	}
	if kShape[1] != inShape[0] {
		return nil, shapes.Incompatible("correlate", kShape, "kernel channels %d != input channels %d", kShape[1], inShape[0])
	}
	if len(p.Strides) != d || len(p.LowPad) != d || len(p.Out) != d {
		return nil, shapes.Invalid("correlate", "geometry must describe %d spatial axes", d)
	}

	channels := inShape[0]
	filters := kShape[0]
	spatial := inShape[1:]
	window := kShape[2:]
	inStrides := spatial.ComputeStrides()
	channelSize := spatial.NumElements()

	outPositions := tensor.Shape(p.Out).NumElements()
	windowSize := window.NumElements()
	colWidth := channels * windowSize

	inData := input.Raw()
	kData := kernel.Raw()

	// Step 1: Im2col. Row j holds the receptive field of output position j.
	colBuf := make([]float32, outPositions*colWidth)
	outStrides := tensor.Shape(p.Out).ComputeStrides()
	winStrides := window.ComputeStrides()

	parallel.For(outPositions, func(j int) {
		row := colBuf[j*colWidth : (j+1)*colWidth]

		// Origin of the receptive field in input coordinates.
		origin := make([]int, d)
		rem := j
		for a := 0; a < d; a++ {
			o := rem / outStrides[a]
			rem %= outStrides[a]
			origin[a] = o*p.Strides[a] - p.LowPad[a]
		}

		for w := 0; w < windowSize; w++ {
			offset := 0
			inside := true
			wrem := w
			for a := 0; a < d; a++ {
				k := wrem / winStrides[a]
				wrem %= winStrides[a]
				pos := origin[a] + k
				if pos < 0 || pos >= spatial[a] {
					inside = false
					break
				}
				offset += pos * inStrides[a]
			}
			if !inside {
				continue // Zero padding; colBuf is zero-initialised.
			}
			for c := 0; c < channels; c++ {
				row[c*windowSize+w] = inData[c*channelSize+offset]
			}
		}
	}, cpu.parallel)

	// Steps 2-3: out[f, j] = sum_k kernel[f, k] * colBuf[j, k]
	out := make([]float32, filters*outPositions)
	parallel.For(outPositions, func(j int) {
		col := colBuf[j*colWidth : (j+1)*colWidth]
		for f := 0; f < filters; f++ {
			kRow := kData[f*colWidth : (f+1)*colWidth]
			var sum float32
			for k, v := range col {
				sum += kRow[k] * v
			}
			out[f*outPositions+j] = sum
		}
	}, cpu.parallel)

	return tensor.Wrap(out, tensor.Shape(p.Out).Prepend(filters))
}
