// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into token indices and one-hot sequences for
// Embedding layers.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPE: Byte-Pair Encoding over an explicit vocabulary or a HuggingFace
//     tokenizer.json
//
// Example usage:
//
//	import "github.com/born-ml/layers/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seq, ids, err := tokenizer.OneHotSequence(tok, "Hello, world!")
package tokenizer

import (
	"github.com/born-ml/layers/internal/tensor"
	"github.com/born-ml/layers/internal/tokenizer"
)

// Tokenizer converts between text and token indices.
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps the OpenAI tiktoken encodings.
type TikToken = tokenizer.TikToken

// BPE implements Byte-Pair Encoding over an explicit vocabulary.
type BPE = tokenizer.BPE

// Merge is a BPE merge rule.
type Merge = tokenizer.Merge

// ErrUnknownToken reports text or ids outside the vocabulary.
var ErrUnknownToken = tokenizer.ErrUnknownToken

// NewTikToken creates a tokenizer for a tiktoken encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a tokenizer with the encoding of a model.
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// NewBPE creates a BPE tokenizer from a vocabulary and merge rules.
func NewBPE(vocab map[string]int, merges []Merge) *BPE {
	return tokenizer.NewBPE(vocab, merges)
}

// LoadBPE loads a BPE tokenizer from a HuggingFace tokenizer.json.
func LoadBPE(path string) (*BPE, error) {
	return tokenizer.LoadBPE(path)
}

// OneHot encodes ids as a [len(ids), vocab] tensor.
func OneHot(ids []int, vocab int) (*tensor.Tensor, error) {
	return tokenizer.OneHot(ids, vocab)
}

// OneHotSequence tokenizes text into a one-hot sequence sample.
func OneHotSequence(tok Tokenizer, text string) (*tensor.Tensor, []int, error) {
	return tokenizer.OneHotSequence(tok, text)
}
