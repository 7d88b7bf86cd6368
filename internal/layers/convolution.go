package layers

import (
	"github.com/born-ml/layers/internal/backend/cpu"
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// ConvolutionConfig configures an N-dimensional convolution.
type ConvolutionConfig struct {
	Kernel     []int      // Kernel extent per spatial axis
	Filters    int        // Number of output channels; 0 means no filter axis
	Activation Activation // Applied to the result; nil means identity
	Pad        []bool     // Per axis, or one value for all axes
	Strides    []int      // Per axis, or one value for all axes
	Bias       bool       // Adds one bias per filter

	// ReductionRank is 1 when the input carries a leading channel axis that
	// the kernel sums over, and 0 when it has none.
	ReductionRank int

	// Sequential makes the first kernel axis run over the sequence axis of
	// the input instead of over the leading axis of each step.
	Sequential bool

	Init initializer.Initializer // Initializer of W; nil means Glorot uniform
}

// DefaultConvolutionConfig returns an unpadded, stride 1 config with a channel
// axis and bias.
func DefaultConvolutionConfig(kernel []int, filters int) ConvolutionConfig {
	return ConvolutionConfig{
		Kernel:        append([]int(nil), kernel...),
		Filters:       filters,
		Pad:           []bool{false},
		Strides:       []int{1},
		Bias:          true,
		ReductionRank: 1,
	}
}

// NewConvolution creates a convolution layer (cross-correlation, the kernel
// is not flipped).
//
// For ReductionRank 1 a step is [C, S_1, ..., S_d] and the output is
// [F, O_1, ..., O_d]; for ReductionRank 0 a step is [S_1, ..., S_d]. Input
// axes beyond the kernel rank get an implicit kernel extent of 1. With
// Filters 0 the filter axis is dropped from W and from the output.
//
// Output sizes follow shapes.ConvOutputSize. A padded output position i reads
// the window starting at input index i*stride - kernel/2; positions outside
// the input read zero.
func NewConvolution(name string, cfg ConvolutionConfig) (*Layer, error) {
	if len(cfg.Kernel) == 0 {
		return nil, shapes.Invalid("convolution", "kernel shape is empty")
	}
	for _, k := range cfg.Kernel {
		if k <= 0 {
			return nil, shapes.Invalid("convolution", "kernel extents must be positive, got %v", cfg.Kernel)
		}
	}
	if cfg.Filters < 0 {
		return nil, shapes.Invalid("convolution", "filters must be non-negative, got %d", cfg.Filters)
	}
	if cfg.ReductionRank != 0 && cfg.ReductionRank != 1 {
		return nil, shapes.Invalid("convolution", "reduction rank must be 0 or 1, got %d", cfg.ReductionRank)
	}
	strides, err := shapes.BroadcastInts("strides", cfg.Strides, len(cfg.Kernel), 1)
	if err != nil {
		return nil, err
	}
	for _, s := range strides {
		if s <= 0 {
			return nil, shapes.Invalid("convolution", "strides must be positive, got %v", cfg.Strides)
		}
	}
	if _, err := shapes.BroadcastBools("pad", cfg.Pad, len(cfg.Kernel), false); err != nil {
		return nil, err
	}

	cfg.Kernel = append([]int(nil), cfg.Kernel...)
	cfg.Strides = append([]int(nil), cfg.Strides...)
	cfg.Pad = append([]bool(nil), cfg.Pad...)
	if cfg.Init == nil {
		cfg.Init = initializer.Default()
	}

	l := newLayer(name, KindConvolution)
	l.conv = &cfg
	return l, nil
}

// NewConvolution1D creates a convolution with a rank 1 kernel.
func NewConvolution1D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return newConvolutionRank(name, cfg, 1)
}

// NewConvolution2D creates a convolution with a rank 2 kernel.
func NewConvolution2D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return newConvolutionRank(name, cfg, 2)
}

// NewConvolution3D creates a convolution with a rank 3 kernel.
func NewConvolution3D(name string, cfg ConvolutionConfig) (*Layer, error) {
	return newConvolutionRank(name, cfg, 3)
}

func newConvolutionRank(name string, cfg ConvolutionConfig, rank int) (*Layer, error) {
	if len(cfg.Kernel) != rank {
		return nil, shapes.Invalid("convolution", "%dD convolution needs a rank %d kernel, got %v", rank, rank, cfg.Kernel)
	}
	return NewConvolution(name, cfg)
}

// convGeometry is the resolved layout of one convolution application.
type convGeometry struct {
	channels int   // C, 1 without a channel axis
	filters  int   // F, 1 without a filter axis
	spatial  []int // Input extents the kernel slides over
	kernel   []int // Kernel extents, extended with 1s to the spatial rank
	strides  []int
	lowPad   []int
	out      []int // Output spatial extents
}

// geometry resolves the config against the spatial input extents.
func (c ConvolutionConfig) geometry(channels int, spatial []int) (*convGeometry, error) {
	if len(spatial) < len(c.Kernel) {
		return nil, shapes.Incompatible("convolution", spatial, "kernel rank %d exceeds the %d spatial axes of the input", len(c.Kernel), len(spatial))
	}
	kernel := make([]int, len(spatial))
	for i := range kernel {
		kernel[i] = 1
	}
	copy(kernel, c.Kernel)

	strides, err := shapes.BroadcastInts("strides", c.Strides, len(c.Kernel), 1)
	if err != nil {
		return nil, err
	}
	pad, err := shapes.BroadcastBools("pad", c.Pad, len(c.Kernel), false)
	if err != nil {
		return nil, err
	}
	for len(strides) < len(spatial) {
		strides = append(strides, 1)
		pad = append(pad, false)
	}

	out, err := shapes.ConvOutputShape(spatial, kernel, strides, pad)
	if err != nil {
		return nil, err
	}
	lowPad := make([]int, len(spatial))
	for i := range lowPad {
		lowPad[i] = shapes.LowPad(kernel[i], pad[i])
	}

	return &convGeometry{
		channels: channels,
		filters:  max(c.Filters, 1),
		spatial:  append([]int(nil), spatial...),
		kernel:   kernel,
		strides:  strides,
		lowPad:   lowPad,
		out:      out,
	}, nil
}

// split separates the channel axis from the spatial axes of a step shape.
func (c ConvolutionConfig) split(step tensor.Shape) (int, []int, error) {
	if c.ReductionRank == 0 {
		return 1, step, nil
	}
	if len(step) == 0 {
		return 0, nil, shapes.Incompatible("convolution", step, "input needs a channel axis")
	}
	return step[0], step[1:], nil
}

// weightShape is the shape of W: [F?, C?, kernel...].
func (c ConvolutionConfig) weightShape(g *convGeometry) tensor.Shape {
	var s tensor.Shape
	if c.Filters > 0 {
		s = append(s, c.Filters)
	}
	if c.ReductionRank == 1 {
		s = append(s, g.channels)
	}
	return append(s, g.kernel...)
}

// outputStep assembles the output step shape from the output spatial extents.
func (c ConvolutionConfig) outputStep(out []int) tensor.Shape {
	if c.Filters > 0 {
		return tensor.Shape(out).Prepend(c.Filters)
	}
	return tensor.Shape(out).Clone()
}

// OutputShape returns the step shape produced for the step shape in of a
// non-sequential convolution.
func (c ConvolutionConfig) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	channels, spatial, err := c.split(in)
	if err != nil {
		return nil, err
	}
	g, err := c.geometry(channels, spatial)
	if err != nil {
		return nil, err
	}
	return c.outputStep(g.out), nil
}

// sequenceGeometry resolves a sequential convolution over a sequence of
// length t.
func (c ConvolutionConfig) sequenceGeometry(step tensor.Shape, t int) (*convGeometry, error) {
	channels, spatial, err := c.split(step)
	if err != nil {
		return nil, err
	}
	return c.geometry(channels, append([]int{t}, spatial...))
}

func (l *Layer) outputConvolution(in graph.Type) (graph.Type, error) {
	cfg := l.conv
	if !cfg.Sequential {
		out, err := cfg.OutputShape(in.Shape)
		if err != nil {
			return graph.Type{}, err
		}
		return graph.Type{Shape: out, Sequence: in.Sequence}, nil
	}

	if !in.Sequence {
		return graph.Type{}, shapes.Incompatible(l.label(), in.Shape, "sequential convolution needs a sequence input")
	}
	// The sequence length is only known per sample; check the remaining axes
	// against a sequence that fits the kernel exactly.
	g, err := cfg.sequenceGeometry(in.Shape, cfg.Kernel[0])
	if err != nil {
		return graph.Type{}, err
	}
	return graph.Type{Shape: cfg.outputStep(g.out[1:]), Sequence: true}, nil
}

func (l *Layer) bindConvolution(in graph.Type) error {
	return l.bind(in.Shape, func() ([]*Parameter, error) {
		cfg := l.conv
		channels, spatial, err := cfg.split(in.Shape)
		if err != nil {
			return nil, err
		}
		if cfg.Sequential {
			spatial = append([]int{cfg.Kernel[0]}, spatial...)
		}
		g, err := cfg.geometry(channels, spatial)
		if err != nil {
			return nil, err
		}

		window := tensor.Shape(g.kernel).NumElements()
		w, err := cfg.Init.Init(cfg.weightShape(g), g.channels*window, g.filters*window)
		if err != nil {
			return nil, err
		}
		params := []*Parameter{NewParameter("W", w)}
		if cfg.Bias {
			var bShape tensor.Shape
			if cfg.Filters > 0 {
				bShape = tensor.Shape{cfg.Filters}
			}
			params = append(params, NewParameter("b", tensor.Zeros(bShape)))
		}
		return params, nil
	})
}

// convolveStep convolves one step of a non-sequential convolution.
func (l *Layer) convolveStep(x *tensor.Tensor) (*tensor.Tensor, error) {
	cfg := l.conv
	channels, spatial, err := cfg.split(x.Shape())
	if err != nil {
		return nil, err
	}
	g, err := cfg.geometry(channels, spatial)
	if err != nil {
		return nil, err
	}
	in, err := x.Reshape(tensor.Shape(spatial).Prepend(channels))
	if err != nil {
		return nil, err
	}

	y, err := l.correlate(in, g)
	if err != nil {
		return nil, err
	}
	return y.Reshape(cfg.outputStep(g.out))
}

// convolveSequence convolves a whole sequence sample [T, step...] with the
// first kernel axis running over T. The result is [T', output step...].
func (l *Layer) convolveSequence(x *tensor.Tensor) (*tensor.Tensor, error) {
	cfg := l.conv
	shape := x.Shape()
	g, err := cfg.sequenceGeometry(shape[1:], shape[0])
	if err != nil {
		return nil, err
	}

	// Bring the input to [C, T, spatial...].
	var in *tensor.Tensor
	if cfg.ReductionRank == 1 {
		in, err = x.Permute(swapLeading(len(shape))...)
	} else {
		in, err = x.Reshape(shape.Prepend(1))
	}
	if err != nil {
		return nil, err
	}

	y, err := l.correlate(in, g) // [F, T', out...]
	if err != nil {
		return nil, err
	}
	if y, err = y.Permute(swapLeading(y.Rank())...); err != nil {
		return nil, err
	}
	return y.Reshape(cfg.outputStep(g.out[1:]).Prepend(g.out[0]))
}

// correlate runs the kernel over in, shaped [C, spatial...], and returns
// activation(W ⋆ in + b) shaped [F, out...].
func (l *Layer) correlate(in *tensor.Tensor, g *convGeometry) (*tensor.Tensor, error) {
	cfg := l.conv
	w := l.param("W")
	if w == nil {
		return nil, shapes.Invalid(l.label(), "parameters are not bound")
	}
	kernel, err := w.Reshape(tensor.Shape(g.kernel).Prepend(g.channels).Prepend(g.filters))
	if err != nil {
		return nil, err
	}

	y, err := l.backend.Correlate(in, kernel, cpu.CorrelateParams{
		Strides: g.strides,
		LowPad:  g.lowPad,
		Out:     g.out,
	})
	if err != nil {
		return nil, err
	}

	data := y.Raw()
	if cfg.Bias {
		bias := l.param("b").Raw()
		per := len(data) / g.filters
		for f := 0; f < g.filters; f++ {
			for i := f * per; i < (f+1)*per; i++ {
				data[i] += bias[f]
			}
		}
	}
	cfg.Activation.apply(data)
	return y, nil
}

// swapLeading returns the permutation exchanging the first two of n axes.
func swapLeading(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	perm[0], perm[1] = 1, 0
	return perm
}
