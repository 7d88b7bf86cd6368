package tokenizer

import "errors"

// ErrUnknownToken is returned when text contains a piece that the vocabulary
// cannot represent and no unknown token is configured.
var ErrUnknownToken = errors.New("unknown token")

// Tokenizer converts between text and token indices in [0, VocabSize()).
type Tokenizer interface {
	// Encode converts text to token indices.
	Encode(text string) ([]int, error)

	// Decode converts token indices back to text.
	Decode(ids []int) (string, error)

	// VocabSize returns the number of distinct token indices.
	VocabSize() int

	// Name returns the tokenizer name.
	Name() string
}
