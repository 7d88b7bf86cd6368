// Package cpu implements the compute kernels behind the layers: matrix
// products and N-dimensional correlation.
package cpu

import (
	"sync"

	"github.com/born-ml/layers/internal/parallel"
)

// CPUBackend runs tensor kernels on the CPU, splitting independent output
// rows across goroutines.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

var (
	defaultOnce    sync.Once
	defaultBackend *CPUBackend
)

// Default returns the shared backend used by layers that were not given one.
func Default() *CPUBackend {
	defaultOnce.Do(func() {
		defaultBackend = New()
	})
	return defaultBackend
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the parallel configuration of the backend.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}
