// Package main provides the layers CLI: shape inference, a small evaluation
// demo and text embedding through a tokenizer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/layers/internal/graph"
	"github.com/born-ml/layers/internal/initializer"
	"github.com/born-ml/layers/internal/layers"
	"github.com/born-ml/layers/internal/tensor"
	"github.com/born-ml/layers/internal/tokenizer"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("layers: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "version":
		fmt.Printf("layers %s\n", version)
	case "shapes":
		err = runShapes(args)
	case "demo":
		err = runDemo(args)
	case "embed":
		err = runEmbed(args)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("Usage: layers <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  shapes     Infer the output shape of a convolution")
	fmt.Println("  demo       Evaluate a few layers on fixed inputs")
	fmt.Println("  embed      Tokenize text and pool its embeddings")
}

// runShapes prints the output shape of a convolution without evaluating it.
func runShapes(args []string) error {
	fs := flag.NewFlagSet("shapes", flag.ExitOnError)
	input := fs.String("input", "2,6,7", "Input step shape, channels first")
	kernel := fs.String("kernel", "3,2", "Kernel shape")
	filters := fs.Int("filters", 4, "Number of filters (0 = no filter axis)")
	strides := fs.String("strides", "1", "Strides, one value or one per kernel axis")
	pad := fs.Bool("pad", false, "Pad so that stride 1 keeps the input size")
	channels := fs.Bool("channels", true, "Input has a leading channel axis")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in, err := parseInts(*input)
	if err != nil {
		return fmt.Errorf("-input: %w", err)
	}
	k, err := parseInts(*kernel)
	if err != nil {
		return fmt.Errorf("-kernel: %w", err)
	}
	s, err := parseInts(*strides)
	if err != nil {
		return fmt.Errorf("-strides: %w", err)
	}

	cfg := layers.DefaultConvolutionConfig(k, *filters)
	cfg.Strides = s
	cfg.Pad = []bool{*pad}
	if !*channels {
		cfg.ReductionRank = 0
	}
	conv, err := layers.NewConvolution("conv", cfg)
	if err != nil {
		return err
	}
	out, err := conv.InferOutputShape(graph.TensorOf(in...))
	if err != nil {
		return err
	}
	fmt.Printf("%v -> %v\n", tensor.Shape(in), out.Shape)
	return nil
}

// runDemo evaluates a convolution, a fold and a GRU recurrence.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	hidden := fs.Int("hidden", 4, "GRU state width")
	seed := fs.Int64("seed", 1, "Initializer seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	seq, err := tensor.FromSlice([]float32{2, 6, 4, 8, 6}, tensor.Shape{5, 1})
	if err != nil {
		return err
	}
	x, err := graph.Input("x", tensor.Shape{1}, graph.SequenceAxis)
	if err != nil {
		return err
	}
	bindings := map[string]graph.Value{"x": graph.Samples(seq)}

	for _, pad := range []bool{false, true} {
		cfg := layers.DefaultConvolutionConfig([]int{3}, 0)
		cfg.ReductionRank = 0
		cfg.Bias = false
		cfg.Sequential = true
		cfg.Pad = []bool{pad}
		cfg.Init = initializer.Values(4, 2, 1)
		conv, err := layers.NewConvolution("conv", cfg)
		if err != nil {
			return err
		}
		if err := printEval(fmt.Sprintf("convolution pad=%v", pad), conv, x, bindings); err != nil {
			return err
		}
	}

	reductions := []struct {
		name string
		step layers.Reduction
	}{
		{"plus", layers.Plus},
		{"element_max", layers.ElementMax},
	}
	for _, r := range reductions {
		fold, err := layers.NewFold(r.name, layers.RecurrenceConfig{Step: r.step})
		if err != nil {
			return err
		}
		if err := printEval("fold "+r.name, fold, x, bindings); err != nil {
			return err
		}
	}

	cellCfg := layers.DefaultCellConfig(*hidden)
	cellCfg.Init = initializer.GlorotUniform(*seed)
	gru, err := layers.NewGRU("gru", cellCfg)
	if err != nil {
		return err
	}
	rnn, err := layers.NewRecurrence("rnn", layers.RecurrenceConfig{Step: gru})
	if err != nil {
		return err
	}
	return printEval("gru recurrence", rnn, x, bindings)
}

func printEval(title string, l *layers.Layer, x *graph.Output, bindings map[string]graph.Value) error {
	out, err := l.Apply(x)
	if err != nil {
		return err
	}
	v, err := out.Eval(bindings)
	if err != nil {
		return err
	}
	fmt.Printf("%-24s %v %v\n", title, out.Type(), v[0])
	return nil
}

// runEmbed tokenizes text, embeds every token and prints the mean embedding.
func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	encoding := fs.String("encoding", "cl100k_base", "tiktoken encoding")
	bpePath := fs.String("bpe", "", "HuggingFace tokenizer.json to use instead of tiktoken")
	dim := fs.Int("dim", 8, "Embedding dimension")
	seed := fs.Int64("seed", 1, "Initializer seed")
	text := fs.String("text", "Hello, world!", "Text to embed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var tok tokenizer.Tokenizer
	var err error
	if *bpePath != "" {
		tok, err = tokenizer.LoadBPE(*bpePath)
	} else {
		tok, err = tokenizer.NewTikToken(*encoding)
	}
	if err != nil {
		return err
	}

	seq, ids, err := tokenizer.OneHotSequence(tok, *text)
	if err != nil {
		return err
	}
	log.Printf("%s: %d tokens %v", tok.Name(), len(ids), ids)

	embed, err := layers.NewEmbedding("embed", layers.EmbeddingConfig{Dim: *dim, Init: initializer.Normal(1, *seed)})
	if err != nil {
		return err
	}
	sum, err := layers.NewFold("sum", layers.RecurrenceConfig{Step: layers.Plus})
	if err != nil {
		return err
	}
	model, err := layers.NewSequential("pool", embed, sum)
	if err != nil {
		return err
	}
	if err := model.UpdateSignature(graph.SequenceOf(tok.VocabSize())); err != nil {
		return err
	}

	v, err := model.Call(graph.Samples(seq))
	if err != nil {
		return err
	}
	mean := v[0].Scale(1 / float32(len(ids)))
	fmt.Printf("mean embedding %v\n", mean)
	return nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
