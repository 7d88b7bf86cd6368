package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// vocabSizes is one past the largest token index, special tokens included.
var vocabSizes = map[string]int{
	tiktoken.MODEL_CL100K_BASE: 100277,
	tiktoken.MODEL_P50K_BASE:   50281,
	tiktoken.MODEL_R50K_BASE:   50257,
}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
//
// The BPE ranks are fetched and cached by tiktoken-go on first use.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	vocab    int
}

// NewTikToken creates a tokenizer for one of the supported encodings.
func NewTikToken(encodingName string) (*TikToken, error) {
	vocab, ok := vocabSizes[encodingName]
	if !ok {
		return nil, fmt.Errorf("tiktoken: unsupported encoding %q", encodingName)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{encoding: encoding, name: encodingName, vocab: vocab}, nil
}

// NewTikTokenForModel creates a tokenizer with the encoding of a model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	if encodingName, ok := tiktoken.MODEL_TO_ENCODING[modelName]; ok {
		return NewTikToken(encodingName)
	}
	for prefix, encodingName := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(modelName, prefix) {
			return NewTikToken(encodingName)
		}
	}
	return nil, fmt.Errorf("tiktoken: no encoding known for model %q", modelName)
}

// Encode converts text to token indices. Special tokens are encoded as text.
func (t *TikToken) Encode(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

// Decode converts token indices back to text.
func (t *TikToken) Decode(ids []int) (string, error) {
	for _, id := range ids {
		if id < 0 || id >= t.vocab {
			return "", fmt.Errorf("tiktoken: %w: id %d outside [0, %d)", ErrUnknownToken, id, t.vocab)
		}
	}
	return t.encoding.Decode(ids), nil
}

// VocabSize returns the number of token indices of the encoding.
func (t *TikToken) VocabSize() int {
	return t.vocab
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
