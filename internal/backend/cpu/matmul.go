package cpu

import (
	"github.com/born-ml/layers/internal/parallel"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// MatMul computes a · b.
//
// Shapes:
//   - a: [k] or [m, k]
//   - b: [k, n]
//   - result: [n] or [m, n]
func (cpu *CPUBackend) MatMul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if b.Rank() != 2 {
		return nil, shapes.Incompatible("matmul", b.Shape(), "right operand must be 2D")
	}

	var m, k int
	switch a.Rank() {
	case 1:
		m, k = 1, a.Dim(0)
	case 2:
		m, k = a.Dim(0), a.Dim(1)
	default:
		return nil, shapes.Incompatible("matmul", a.Shape(), "left operand must be 1D or 2D")
	}
	if b.Dim(0) != k {
		return nil, shapes.Incompatible("matmul", b.Shape(), "inner dimensions differ: %d vs %d", k, b.Dim(0))
	}
	n := b.Dim(1)

	aData, bData := a.Raw(), b.Raw()
	out := make([]float32, m*n)

	// One row of the result per task; rows are independent.
	parallel.For(m, func(i int) {
		row := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := aData[i*k+p]
			bRow := bData[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * bRow[j]
			}
		}
	}, cpu.parallel)

	if a.Rank() == 1 {
		return tensor.Wrap(out, tensor.Shape{n})
	}
	return tensor.Wrap(out, tensor.Shape{m, n})
}
