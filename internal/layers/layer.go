// Package layers implements composable network layers evaluated by the graph
// package: Dense, Convolution (1D/2D/3D, static or sequential), Embedding,
// Recurrence and Fold with binary reductions or recurrent cells, Dropout and
// LayerNormalization.
//
// Every layer is a *Layer: a tagged variant dispatched on its Kind, carrying
// the config struct of that kind. Layers are declared with their output-side
// configuration only; parameters whose shape depends on the input are created
// when the layer is first applied (the layer binds), and the input shape is
// fixed from then on.
//
// Example:
//
//	x, _ := graph.Input("x", tensor.Shape{2})
//	dense, _ := layers.NewDense("foo", layers.DefaultDenseConfig(3))
//	h, _ := dense.Apply(x)               // binds W: (2, 3), b: (3)
//	out, _ := h.Eval(map[string]graph.Value{"x": batch})
package layers

import (
	"fmt"
	"sync"

	"github.com/born-ml/layers/internal/backend/cpu"
	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// Kind identifies the variant of a Layer.
type Kind int

// Layer kinds.
const (
	KindDense Kind = iota
	KindConvolution
	KindEmbedding
	KindRecurrence
	KindFold
	KindDropout
	KindLayerNormalization
	KindBatchNormalization
	KindGRU
	KindRNNStep
	KindSequential
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDense:
		return "Dense"
	case KindConvolution:
		return "Convolution"
	case KindEmbedding:
		return "Embedding"
	case KindRecurrence:
		return "Recurrence"
	case KindFold:
		return "Fold"
	case KindDropout:
		return "Dropout"
	case KindLayerNormalization:
		return "LayerNormalization"
	case KindBatchNormalization:
		return "BatchNormalization"
	case KindGRU:
		return "GRU"
	case KindRNNStep:
		return "RNNStep"
	case KindSequential:
		return "Sequential"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// bindState is the lifecycle of shape-dependent parameters.
type bindState int

const (
	unbound bindState = iota
	bound
)

// Layer is a named, composable function over tensors with optional
// parameters. Exactly one of the config fields is set, selected by kind.
//
// A *Layer is shared by reference: applying it twice reuses its parameters.
// It implements graph.Function.
type Layer struct {
	name    string
	kind    Kind
	backend *cpu.CPUBackend

	dense      *DenseConfig
	conv       *ConvolutionConfig
	embedding  *EmbeddingConfig
	recurrence *RecurrenceConfig
	dropout    *DropoutConfig
	norm       *LayerNormalizationConfig
	cell       *CellConfig
	children   []*Layer

	mu      sync.Mutex
	state   bindState
	inShape tensor.Shape // Step shape the parameters were bound to
	params  []*Parameter

	signature []*graph.Output // Placeholders set by UpdateSignature
	sigOut    *graph.Output
}

func newLayer(name string, kind Kind) *Layer {
	return &Layer{name: name, kind: kind, backend: cpu.Default()}
}

// Name returns the layer name. It may be empty.
func (l *Layer) Name() string {
	return l.name
}

// Kind returns the layer variant.
func (l *Layer) Kind() Kind {
	return l.kind
}

// WithBackend makes the layer run its kernels on b and returns the layer.
func (l *Layer) WithBackend(b *cpu.CPUBackend) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backend = b
	return l
}

// IsBound reports whether the shape-dependent parameters exist.
func (l *Layer) IsBound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == bound
}

// InputShape returns the step shape the layer is bound to, or nil.
func (l *Layer) InputShape() tensor.Shape {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inShape == nil {
		return nil
	}
	return l.inShape.Clone()
}

// Parameters returns the layer parameters in declaration order, followed by
// those of nested layers. A layer reached twice is listed once.
func (l *Layer) Parameters() []*Parameter {
	seen := make(map[*Layer]bool)
	var out []*Parameter
	l.collect(seen, &out)
	return out
}

func (l *Layer) collect(seen map[*Layer]bool, out *[]*Parameter) {
	if seen[l] {
		return
	}
	seen[l] = true
	*out = append(*out, l.ownParams()...)
	for _, c := range l.nested() {
		c.collect(seen, out)
	}
}

// Parameter returns the layer's own parameter with the given name.
func (l *Layer) Parameter(name string) (*Parameter, bool) {
	for _, p := range l.ownParams() {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// nested returns the sub-layers owned by reference.
func (l *Layer) nested() []*Layer {
	if l.kind == KindSequential {
		return l.children
	}
	if l.recurrence != nil {
		if cell, ok := l.recurrence.Step.(*Layer); ok {
			return []*Layer{cell}
		}
	}
	return nil
}

func (l *Layer) ownParams() []*Parameter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Parameter(nil), l.params...)
}

// param returns a bound parameter by name. Callers run after binding.
func (l *Layer) param(name string) *tensor.Tensor {
	if p, ok := l.Parameter(name); ok {
		return p.value
	}
	return nil
}

// bind creates the shape-dependent parameters for the step shape in, exactly
// once. A bound layer accepts only the shape it was bound to.
func (l *Layer) bind(in tensor.Shape, create func() ([]*Parameter, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == bound {
		if !l.inShape.Equal(in) {
			return shapes.Mismatch(l.label(), l.inShape, in)
		}
		return nil
	}

	params, err := create()
	if err != nil {
		return err
	}
	l.params = params
	l.inShape = in.Clone()
	l.state = bound
	return nil
}

// Apply builds the application of the layer to inputs. Shapes are inferred
// and lazy parameters are bound immediately.
func (l *Layer) Apply(inputs ...*graph.Output) (*graph.Output, error) {
	return graph.Apply(l, inputs...)
}

// Infer returns the output Type for the given input types, binding the layer
// on first use. It implements graph.Function.
func (l *Layer) Infer(in []graph.Type) (graph.Type, error) {
	out, err := l.InferOutputShape(in...)
	if err != nil {
		return graph.Type{}, err
	}

	switch l.kind {
	case KindDense:
		err = l.bindDense(in[0].Shape)
	case KindConvolution:
		err = l.bindConvolution(in[0])
	case KindEmbedding:
		err = l.bindEmbedding(in[0].Shape)
	case KindRecurrence, KindFold:
		err = l.bindRecurrence(in[0])
	case KindGRU, KindRNNStep:
		err = l.bindCell(in[1].Shape)
	case KindSequential:
		_, err = l.inferSequential(in[0], true)
	}
	if err != nil {
		return graph.Type{}, err
	}
	return out, nil
}

// InferOutputShape returns the output Type for the given input types without
// binding any parameter.
func (l *Layer) InferOutputShape(in ...graph.Type) (graph.Type, error) {
	if want := l.arity(); len(in) != want {
		return graph.Type{}, shapes.Invalid(l.label(), "expects %d input(s), got %d", want, len(in))
	}

	switch l.kind {
	case KindDense:
		return l.outputDense(in[0])
	case KindConvolution:
		return l.outputConvolution(in[0])
	case KindEmbedding:
		return l.outputEmbedding(in[0])
	case KindRecurrence, KindFold:
		return l.outputRecurrence(in[0])
	case KindDropout, KindLayerNormalization:
		return in[0], nil
	case KindGRU, KindRNNStep:
		return l.outputCell(in[0], in[1])
	case KindSequential:
		return l.inferSequential(in[0], false)
	default:
		return graph.Type{}, fmt.Errorf("%s: %w: layer kind %v", l.label(), shapes.ErrUnsupported, l.kind)
	}
}

// Forward computes one output sample. It implements graph.Function.
func (l *Layer) Forward(types []graph.Type, in []*tensor.Tensor) (*tensor.Tensor, error) {
	if len(in) != l.arity() || len(types) != len(in) {
		return nil, shapes.Invalid(l.label(), "expects %d input(s), got %d", l.arity(), len(in))
	}

	switch l.kind {
	case KindDense:
		return perStep(types[0], in[0], l.denseStep)
	case KindConvolution:
		if l.conv.Sequential {
			return l.convolveSequence(in[0])
		}
		return perStep(types[0], in[0], l.convolveStep)
	case KindEmbedding:
		return perStep(types[0], in[0], l.embedStep)
	case KindRecurrence, KindFold:
		return l.scan(in[0])
	case KindDropout:
		return in[0], nil
	case KindLayerNormalization:
		return perStep(types[0], in[0], l.normalizeStep)
	case KindGRU, KindRNNStep:
		return l.Next(in[0], in[1])
	case KindSequential:
		return l.forwardSequential(types[0], in[0])
	default:
		return nil, fmt.Errorf("%s: %w: layer kind %v", l.label(), shapes.ErrUnsupported, l.kind)
	}
}

// arity is the number of graph inputs the layer consumes.
func (l *Layer) arity() int {
	if l.kind == KindGRU || l.kind == KindRNNStep {
		return 2 // previous state, current input
	}
	return 1
}

// perStep applies f to a sample, or to every step of a sequence sample.
func perStep(typ graph.Type, x *tensor.Tensor, f func(*tensor.Tensor) (*tensor.Tensor, error)) (*tensor.Tensor, error) {
	if !typ.Sequence {
		return f(x)
	}
	steps, err := x.Unstack()
	if err != nil {
		return nil, err
	}
	for i, s := range steps {
		if steps[i], err = f(s); err != nil {
			return nil, err
		}
	}
	return tensor.Stack(steps)
}

// UpdateSignature declares the input types of the layer so it can be called
// directly with Call, without building a graph by hand.
func (l *Layer) UpdateSignature(types ...graph.Type) error {
	args := make([]*graph.Output, len(types))
	for i, t := range types {
		in, err := graph.InputOf(fmt.Sprintf("arg%d", i), t)
		if err != nil {
			return err
		}
		args[i] = in
	}
	out, err := l.Apply(args...)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.signature = args
	l.sigOut = out
	return nil
}

// Signature returns the types declared with UpdateSignature.
func (l *Layer) Signature() []graph.Type {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]graph.Type, len(l.signature))
	for i, s := range l.signature {
		types[i] = s.Type()
	}
	return types
}

// Call evaluates the layer on one Value per declared signature input.
func (l *Layer) Call(args ...graph.Value) (graph.Value, error) {
	l.mu.Lock()
	sig, out := l.signature, l.sigOut
	l.mu.Unlock()

	if out == nil {
		return nil, shapes.Invalid(l.label(), "no signature; call UpdateSignature first")
	}
	if len(args) != len(sig) {
		return nil, shapes.Invalid(l.label(), "signature has %d input(s), got %d", len(sig), len(args))
	}
	bindings := make(map[string]graph.Value, len(args))
	for i, a := range args {
		bindings[sig[i].Name()] = a
	}
	return out.Eval(bindings)
}

// label names the layer in errors.
func (l *Layer) label() string {
	if l.name == "" {
		return l.kind.String()
	}
	return fmt.Sprintf("%s %q", l.kind, l.name)
}

// String returns a string representation of the layer.
func (l *Layer) String() string {
	switch l.kind {
	case KindDense:
		return fmt.Sprintf("Dense(name=%q, out=%v, bias=%v)", l.name, tensor.Shape(l.dense.Out), l.dense.Bias)
	case KindConvolution:
		c := l.conv
		return fmt.Sprintf("Convolution(name=%q, kernel=%v, filters=%d, strides=%v, pad=%v, bias=%v, reduction_rank=%d, sequential=%v)",
			l.name, c.Kernel, c.Filters, c.Strides, c.Pad, c.Bias, c.ReductionRank, c.Sequential)
	case KindEmbedding:
		return fmt.Sprintf("Embedding(name=%q, dim=%d)", l.name, l.embedding.Dim)
	case KindDropout:
		return fmt.Sprintf("Dropout(name=%q, rate=%v)", l.name, l.dropout.Rate)
	case KindLayerNormalization:
		return fmt.Sprintf("LayerNormalization(name=%q, epsilon=%v)", l.name, l.norm.Epsilon)
	case KindGRU, KindRNNStep:
		return fmt.Sprintf("%s(name=%q, hidden=%d)", l.kind, l.name, l.cell.Hidden)
	case KindSequential:
		return fmt.Sprintf("Sequential(name=%q, layers=%d)", l.name, len(l.children))
	default:
		return fmt.Sprintf("%s(name=%q)", l.kind, l.name)
	}
}

// Find returns the layer named name inside the graph behind out, looking
// into sequential compositions and recurrence cells as well.
func Find(out *graph.Output, name string) (*Layer, bool) {
	if n, ok := out.Find(name); ok {
		if l, ok := n.Function().(*Layer); ok {
			return l, true
		}
	}
	seen := make(map[*graph.Output]bool)
	var walk func(o *graph.Output) (*Layer, bool)
	walk = func(o *graph.Output) (*Layer, bool) {
		if seen[o] {
			return nil, false
		}
		seen[o] = true
		if l, ok := o.Function().(*Layer); ok {
			if found, ok := l.find(name); ok {
				return found, true
			}
		}
		for _, in := range o.Inputs() {
			if found, ok := walk(in); ok {
				return found, true
			}
		}
		return nil, false
	}
	return walk(out)
}

// find searches l and its nested layers.
func (l *Layer) find(name string) (*Layer, bool) {
	if l.name == name {
		return l, true
	}
	for _, c := range l.nested() {
		if found, ok := c.find(name); ok {
			return found, true
		}
	}
	return nil, false
}
