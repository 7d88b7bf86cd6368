package tokenizer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleBPE builds a minimal vocabulary for tests.
func exampleBPE() *BPE {
	vocab := map[string]int{
		"h": 0, "e": 1, "l": 2, "o": 3, "w": 4, "r": 5, "d": 6,
		"he": 7, "ll": 8, "wo": 9, "wor": 10, "ld": 11,
	}
	merges := []Merge{
		{"h", "e"},
		{"l", "l"},
		{"w", "o"},
		{"wo", "r"},
		{"l", "d"},
	}
	return NewBPE(vocab, merges)
}

func TestBPE_Encode(t *testing.T) {
	tok := exampleBPE()

	tests := []struct {
		name string
		text string
		want []int
	}{
		{"word", "hello", []int{7, 8, 3}},                    // he ll o
		{"two words", "hello world", []int{7, 8, 3, 10, 11}}, // he ll o wor ld
		{"empty", "", []int{}},
		{"whitespace", "  \t", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := tok.Encode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBPE_Unknown(t *testing.T) {
	tok := exampleBPE()
	_, err := tok.Encode("hex")
	assert.True(t, errors.Is(err, ErrUnknownToken))

	tok.SetUnknown(0)
	ids, err := tok.Encode("hex")
	require.NoError(t, err)
	assert.Equal(t, []int{7, 0}, ids)
}

func TestBPE_Decode(t *testing.T) {
	tok := exampleBPE()

	text, err := tok.Decode([]int{7, 8, 3, 10, 11})
	require.NoError(t, err)
	assert.Equal(t, "helloworld", text)

	_, err = tok.Decode([]int{42})
	assert.True(t, errors.Is(err, ErrUnknownToken))
}

func TestBPE_VocabSize(t *testing.T) {
	assert.Equal(t, 12, exampleBPE().VocabSize())
	assert.Equal(t, "bpe", exampleBPE().Name())
}

func TestLoadBPE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	content := `{
		"model": {
			"type": "BPE",
			"unk_token": "<unk>",
			"vocab": {"<unk>": 0, "a": 1, "b": 2, "ab": 3},
			"merges": ["a b"]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tok, err := LoadBPE(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tok.VocabSize())

	ids, err := tok.Encode("ab ba c")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, ids)

	_, err = LoadBPE(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "wordpiece.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"model": {"type": "WordPiece"}}`), 0o600))
	_, err = LoadBPE(bad)
	assert.Error(t, err)
}
