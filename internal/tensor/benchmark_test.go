package tensor

import (
	"fmt"
	"testing"
)

func BenchmarkTensorCreation(b *testing.B) {
	shape := Shape{100, 100}

	b.Run("Zeros", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Zeros(shape)
		}
	})

	b.Run("Arange", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Arange(shape)
		}
	})
}

func BenchmarkShapeOperations(b *testing.B) {
	shape := Shape{100, 100}

	b.Run("NumElements", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = shape.NumElements()
		}
	})

	b.Run("ComputeStrides", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = shape.ComputeStrides()
		}
	})

	b.Run("Validate", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = shape.Validate()
		}
	})
}

func BenchmarkTensorElementWise(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		x := Ones(Shape{size})
		y := Arange(Shape{size})

		b.Run(fmt.Sprintf("Add-%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = x.Add(y)
			}
		})

		b.Run(fmt.Sprintf("Maximum-%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = x.Maximum(y)
			}
		})
	}
}

func BenchmarkSequenceSteps(b *testing.B) {
	x := Arange(Shape{64, 32, 32})

	b.Run("Unstack", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = x.Unstack()
		}
	})

	steps, err := x.Unstack()
	if err != nil {
		b.Fatal(err)
	}
	b.Run("Stack", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Stack(steps)
		}
	})

	b.Run("Permute", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = x.Permute(1, 0, 2)
		}
	})
}
