// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"github.com/born-ml/layers/graph"
	"github.com/born-ml/layers/internal/layers"
	"github.com/born-ml/layers/internal/shapes"
)

// Layer is a named, composable function over tensors with parameters.
type Layer = layers.Layer

// Kind identifies the variant of a Layer.
type Kind = layers.Kind

// Layer kinds.
const (
	KindDense              = layers.KindDense
	KindConvolution        = layers.KindConvolution
	KindEmbedding          = layers.KindEmbedding
	KindRecurrence         = layers.KindRecurrence
	KindFold               = layers.KindFold
	KindDropout            = layers.KindDropout
	KindLayerNormalization = layers.KindLayerNormalization
	KindBatchNormalization = layers.KindBatchNormalization
	KindGRU                = layers.KindGRU
	KindRNNStep            = layers.KindRNNStep
	KindSequential         = layers.KindSequential
)

// Parameter is a named tensor owned by a layer.
type Parameter = layers.Parameter

// Activation is an element-wise function. nil means identity.
type Activation = layers.Activation

// Built-in activations.
var (
	Identity = layers.Identity
	Sigmoid  = layers.Sigmoid
	Tanh     = layers.Tanh
	ReLU     = layers.ReLU
	Softplus = layers.Softplus
)

// Errors

// Error classes matched with errors.Is.
var (
	ErrShape           = shapes.ErrShape
	ErrInvalidArgument = shapes.ErrInvalidArgument
	ErrUnbound         = shapes.ErrUnbound
	ErrUnsupported     = shapes.ErrUnsupported
)

// ShapeError reports dimensions that are incompatible with an operation.
type ShapeError = shapes.ShapeError

// Dense

// DenseConfig configures a fully connected layer.
type DenseConfig = layers.DenseConfig

// DefaultDenseConfig returns a config with bias and no activation.
func DefaultDenseConfig(out ...int) DenseConfig {
	return layers.DefaultDenseConfig(out...)
}

// NewDense creates a fully connected layer.
//
// Example:
//
//	dense, err := layers.NewDense("hidden", layers.DefaultDenseConfig(128))
func NewDense(name string, cfg DenseConfig) (*Layer, error) {
	return layers.NewDense(name, cfg)
}

// Convolution

// ConvolutionConfig configures an N-dimensional convolution.
type ConvolutionConfig = layers.ConvolutionConfig

// DefaultConvolutionConfig returns an unpadded, stride 1 config with a
// channel axis and bias.
func DefaultConvolutionConfig(kernel []int, filters int) ConvolutionConfig {
	return layers.DefaultConvolutionConfig(kernel, filters)
}

// NewConvolution creates a convolution with a kernel of any rank.
func NewConvolution(name string, cfg ConvolutionConfig) (*Layer, error) {
	return layers.NewConvolution(name, cfg)
}

// NewConvolution1D creates a convolution with a rank 1 kernel.
func NewConvolution1D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return layers.NewConvolution1D(name, cfg)
}

// NewConvolution2D creates a convolution with a rank 2 kernel.
//
// Example:
//
//	conv, err := layers.NewConvolution2D("conv", layers.DefaultConvolutionConfig([]int{3, 3}, 32))
func NewConvolution2D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return layers.NewConvolution2D(name, cfg)
}

// NewConvolution3D creates a convolution with a rank 3 kernel.
func NewConvolution3D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return layers.NewConvolution3D(name, cfg)
}

// Embedding

// EmbeddingConfig configures an embedding layer.
type EmbeddingConfig = layers.EmbeddingConfig

// NewEmbedding creates an embedding layer.
func NewEmbedding(name string, cfg EmbeddingConfig) (*Layer, error) {
	return layers.NewEmbedding(name, cfg)
}

// Recurrence

// Step is the function a Recurrence or Fold scans with.
type Step = layers.Step

// Reduction is a binary function used as a Step.
type Reduction = layers.Reduction

// Built-in reductions.
var (
	Plus       = layers.Plus
	ElementMax = layers.ElementMax
	ElementMin = layers.ElementMin
)

// RecurrenceConfig configures a Recurrence or a Fold.
type RecurrenceConfig = layers.RecurrenceConfig

// NewRecurrence creates a layer that outputs the sequence of states.
func NewRecurrence(name string, cfg RecurrenceConfig) (*Layer, error) {
	return layers.NewRecurrence(name, cfg)
}

// NewFold creates a layer that outputs the final state.
func NewFold(name string, cfg RecurrenceConfig) (*Layer, error) {
	return layers.NewFold(name, cfg)
}

// CellConfig configures a recurrent cell.
type CellConfig = layers.CellConfig

// DefaultCellConfig returns a config for a cell with hidden units.
func DefaultCellConfig(hidden int) CellConfig {
	return layers.DefaultCellConfig(hidden)
}

// NewGRU creates a gated recurrent unit cell.
func NewGRU(name string, cfg CellConfig) (*Layer, error) {
	return layers.NewGRU(name, cfg)
}

// NewRNNStep creates a plain recurrent cell.
func NewRNNStep(name string, cfg CellConfig) (*Layer, error) {
	return layers.NewRNNStep(name, cfg)
}

// Regularization and normalization

// NewDropout creates a dropout layer, the identity at evaluation.
func NewDropout(name string, rate float64) (*Layer, error) {
	return layers.NewDropout(name, rate)
}

// LayerNormalizationConfig configures a layer normalization.
type LayerNormalizationConfig = layers.LayerNormalizationConfig

// DefaultLayerNormalizationConfig returns epsilon 1e-5, scale 1 and bias 0.
func DefaultLayerNormalizationConfig() LayerNormalizationConfig {
	return layers.DefaultLayerNormalizationConfig()
}

// NewLayerNormalization creates a layer normalization.
func NewLayerNormalization(name string, cfg LayerNormalizationConfig) (*Layer, error) {
	return layers.NewLayerNormalization(name, cfg)
}

// NewBatchNormalization always fails with ErrUnsupported.
func NewBatchNormalization(name string) (*Layer, error) {
	return layers.NewBatchNormalization(name)
}

// Composition

// NewSequential chains single-input layers.
func NewSequential(name string, children ...*Layer) (*Layer, error) {
	return layers.NewSequential(name, children...)
}

// Find returns the layer named name inside the graph behind out.
func Find(out *graph.Output, name string) (*Layer, bool) {
	return layers.Find(out, name)
}
