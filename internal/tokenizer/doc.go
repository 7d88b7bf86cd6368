// Package tokenizer turns text into token indices and one-hot sequences,
// the input an Embedding layer expects.
//
// Two tokenizers are provided:
//   - TikToken: the OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPE: a byte-pair encoder over an explicit vocabulary and merge list,
//     loadable from a HuggingFace tokenizer.json
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// One step per token, each a one-hot vector of width tok.VocabSize().
//	seq, ids, err := tokenizer.OneHotSequence(tok, "Hello, world!")
package tokenizer
