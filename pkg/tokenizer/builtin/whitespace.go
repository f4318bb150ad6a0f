package builtin

import (
	"strings"

	"github.com/chunklab/tokchunk/pkg/tokenizer"
)

// NewWhitespaceCounter returns the TokenCounter fallback that is always
// available: a token is a maximal run of non-whitespace characters, and the
// count is the number of whitespace-delimited words.
func NewWhitespaceCounter() tokenizer.Counter {
	return tokenizer.NewFunc(tokenizer.KindWhitespace, func(s string) (int, error) {
		return len(strings.Fields(s)), nil
	})
}
