package tokenizer

import (
	"fmt"

	"github.com/born-ml/layers/internal/shapes"
	"github.com/born-ml/layers/internal/tensor"
)

// OneHot encodes ids as a [len(ids), vocab] tensor with a single 1 per row.
func OneHot(ids []int, vocab int) (*tensor.Tensor, error) {
	if len(ids) == 0 {
		return nil, shapes.Invalid("one_hot", "no token indices")
	}
	if vocab <= 0 {
		return nil, shapes.Invalid("one_hot", "vocabulary size must be positive, got %d", vocab)
	}

	data := make([]float32, len(ids)*vocab)
	for i, id := range ids {
		if id < 0 || id >= vocab {
			return nil, shapes.Invalid("one_hot", "index %d out of range [0, %d)", id, vocab)
		}
		data[i*vocab+id] = 1
	}
	return tensor.Wrap(data, tensor.Shape{len(ids), vocab})
}

// OneHotSequence tokenizes text into a sequence sample [T, VocabSize()] and
// returns the token indices alongside.
func OneHotSequence(tok Tokenizer, text string) (*tensor.Tensor, []int, error) {
	ids, err := tok.Encode(text)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%s: %w: text has no tokens", tok.Name(), shapes.ErrInvalidArgument)
	}
	seq, err := OneHot(ids, tok.VocabSize())
	if err != nil {
		return nil, nil, err
	}
	return seq, ids, nil
}
