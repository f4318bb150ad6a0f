package builtin

import (
	"context"
	"log/slog"

	"github.com/chunklab/tokchunk/pkg/logctx"
	"github.com/chunklab/tokchunk/pkg/segmenter"
)

// NewDefault selects a Segmenter using the fallback hierarchy from
// spec.md §4.B: the linguistic backend first, falling back to the
// guaranteed regex backend if construction panics or otherwise fails to
// produce a usable tokenizer. Construction itself never fails.
func NewDefault(ctx context.Context) segmenter.Segmenter {
	logger := logctx.Logger(ctx)

	s := tryLinguistic(logger)
	if s != nil {
		logger.Info("segmenter: using linguistic backend", slog.String("kind", string(segmenter.KindLinguistic)))
		return s
	}

	logger.Warn("segmenter: linguistic backend unavailable, using regex fallback")
	return NewRegexSegmenter()
}

// tryLinguistic builds the linguistic segmenter behind a recover, since the
// underlying library initializes its rule tables eagerly and any panic
// there must be demoted to a warning per spec.md §4.B, never abort
// construction.
func tryLinguistic(logger *slog.Logger) (s segmenter.Segmenter) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("segmenter: linguistic backend init panicked", slog.Any("error", r))
			s = nil
		}
	}()
	return NewLinguisticSegmenter()
}
