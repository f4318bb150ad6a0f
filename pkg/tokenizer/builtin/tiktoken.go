package builtin

import (
	"fmt"
	"strings"

	tiktokengo "github.com/pkoukk/tiktoken-go"

	"github.com/chunklab/tokchunk/pkg/tokenizer"
)

// NewTiktokenCounter returns a Counter backed by tiktoken-go's cl100k_base
// encoding, the preferred TokenCounter backend.
//
// Returns an error if the encoding cannot be loaded (missing tables,
// initialization failure); NewDefault (in pkg/tokenizer/builtin) catches this and
// demotes it to a warning rather than propagating it.
func NewTiktokenCounter() (tokenizer.Counter, error) {
	enc, err := tiktokengo.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tiktoken: failed to load cl100k_base: %w", err)
	}
	return tokenizer.NewFunc(tokenizer.KindTiktoken, func(s string) (int, error) {
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		return len(enc.Encode(s, nil, nil)), nil
	}), nil
}

// NewTransformersCounter returns a Counter standing in for the secondary
// subword tokenizer identified by the name gpt2. No HuggingFace transformers
// binding exists for Go in this codebase's dependency set, so the encoder is
// tiktoken-go's own gpt2 BPE table, which is algorithmically the same family
// of subword tokenization the original gpt2 AutoTokenizer performs. The
// reported Kind stays tokenizer.KindTransformers to keep the external
// contract (metadata.tokenizer_type) faithful to spec.
func NewTransformersCounter() (tokenizer.Counter, error) {
	enc, err := tiktokengo.GetEncoding("gpt2")
	if err != nil {
		return nil, fmt.Errorf("tiktoken: failed to load gpt2: %w", err)
	}
	return tokenizer.NewFunc(tokenizer.KindTransformers, func(s string) (int, error) {
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		return len(enc.Encode(s, nil, nil)), nil
	}), nil
}
