package tokenizer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Merge is a BPE merge rule: adjacent pieces Left and Right become one.
type Merge struct {
	Left  string
	Right string
}

// BPE implements Byte-Pair Encoding over an explicit vocabulary.
//
// Text is split on whitespace; every word starts as single runes and the
// adjacent pair with the lowest merge rank is merged until no rule applies.
type BPE struct {
	vocab   map[string]int // piece -> index
	reverse map[int]string // index -> piece
	ranks   map[Merge]int  // merge -> priority, lower first
	unk     int            // index for unknown pieces, -1 if none
	size    int
}

// NewBPE creates a BPE tokenizer. Merges are listed by decreasing priority.
func NewBPE(vocab map[string]int, merges []Merge) *BPE {
	b := &BPE{
		vocab:   make(map[string]int, len(vocab)),
		reverse: make(map[int]string, len(vocab)),
		ranks:   make(map[Merge]int, len(merges)),
		unk:     -1,
	}
	for piece, id := range vocab {
		b.vocab[piece] = id
		b.reverse[id] = piece
		b.size = max(b.size, id+1)
	}
	for i, m := range merges {
		if _, ok := b.ranks[m]; !ok {
			b.ranks[m] = i
		}
	}
	return b
}

// SetUnknown makes pieces missing from the vocabulary encode as id instead
// of failing.
func (b *BPE) SetUnknown(id int) {
	b.unk = id
}

// Encode converts text to token indices.
func (b *BPE) Encode(text string) ([]int, error) {
	ids := []int{}
	for _, word := range strings.Fields(text) {
		for _, piece := range b.merge(word) {
			id, ok := b.vocab[piece]
			switch {
			case ok:
				ids = append(ids, id)
			case b.unk >= 0:
				ids = append(ids, b.unk)
			default:
				return nil, fmt.Errorf("bpe: %w: %q", ErrUnknownToken, piece)
			}
		}
	}
	return ids, nil
}

// merge applies the merge rules to one word.
func (b *BPE) merge(word string) []string {
	pieces := make([]string, 0, len(word))
	for _, r := range word {
		pieces = append(pieces, string(r))
	}

	for len(pieces) > 1 {
		best, bestRank := -1, math.MaxInt
		for i := 0; i+1 < len(pieces); i++ {
			if rank, ok := b.ranks[Merge{pieces[i], pieces[i+1]}]; ok && rank < bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		pieces[best] += pieces[best+1]
		pieces = append(pieces[:best+1], pieces[best+2:]...)
	}
	return pieces
}

// Decode concatenates the pieces of ids. Word boundaries are not restored.
func (b *BPE) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		piece, ok := b.reverse[id]
		if !ok {
			return "", fmt.Errorf("bpe: %w: id %d", ErrUnknownToken, id)
		}
		sb.WriteString(piece)
	}
	return sb.String(), nil
}

// VocabSize returns one past the largest vocabulary index.
func (b *BPE) VocabSize() int {
	return b.size
}

// Name returns "bpe".
func (b *BPE) Name() string {
	return "bpe"
}

// huggingFaceConfig is the subset of tokenizer.json read by LoadBPE.
type huggingFaceConfig struct {
	Model struct {
		Type   string         `json:"type"`
		Vocab  map[string]int `json:"vocab"`
		Merges []string       `json:"merges"`
		Unk    *string        `json:"unk_token"`
	} `json:"model"`
}

// LoadBPE loads a BPE tokenizer from a HuggingFace tokenizer.json.
func LoadBPE(path string) (*BPE, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from trusted caller
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}

	var cfg huggingFaceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer.json: %w", err)
	}
	if cfg.Model.Type != "" && cfg.Model.Type != "BPE" {
		return nil, fmt.Errorf("tokenizer.json: model type %q is not BPE", cfg.Model.Type)
	}

	merges := make([]Merge, 0, len(cfg.Model.Merges))
	for _, m := range cfg.Model.Merges {
		parts := strings.Fields(m)
		if len(parts) != 2 {
			return nil, fmt.Errorf("tokenizer.json: malformed merge %q", m)
		}
		merges = append(merges, Merge{parts[0], parts[1]})
	}

	b := NewBPE(cfg.Model.Vocab, merges)
	if cfg.Model.Unk != nil {
		if id, ok := cfg.Model.Vocab[*cfg.Model.Unk]; ok {
			b.SetUnknown(id)
		}
	}
	return b, nil
}
