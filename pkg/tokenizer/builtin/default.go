package builtin

import (
	"context"
	"log/slog"

	"github.com/chunklab/tokchunk/pkg/logctx"
	"github.com/chunklab/tokchunk/pkg/tokenizer"
)

// NewDefault selects a TokenCounter using the fallback hierarchy from
// spec.md §4.A: cl100k_base first, then the gpt2-identified secondary
// backend, then whitespace. Selection failures from the first two are
// caught and demoted to a warning logged on ctx's logger; construction
// itself never fails, since whitespace is always available.
func NewDefault(ctx context.Context) tokenizer.Counter {
	logger := logctx.Logger(ctx)

	if counter, err := NewTiktokenCounter(); err == nil {
		logger.Info("tokenizer: using cl100k_base", slog.String("kind", string(tokenizer.KindTiktoken)))
		return counter
	} else {
		logger.Warn("tokenizer: cl100k_base unavailable, falling back", slog.Any("error", err))
	}

	if counter, err := NewTransformersCounter(); err == nil {
		logger.Info("tokenizer: using gpt2", slog.String("kind", string(tokenizer.KindTransformers)))
		return counter
	} else {
		logger.Warn("tokenizer: gpt2 unavailable, falling back", slog.Any("error", err))
	}

	logger.Warn("tokenizer: using whitespace fallback, token counts will be approximate")
	return NewWhitespaceCounter()
}
