package chunker

import (
	"github.com/chunklab/tokchunk/pkg/segmenter"
	"github.com/chunklab/tokchunk/pkg/tokenizer"
)

type config struct {
	counter   tokenizer.Counter
	segmenter segmenter.Segmenter
}

// Option configures a Chunker at construction time.
type Option func(*config)

// WithTokenCounter overrides the TokenCounter backend. Absent an
// explicit one, New falls back to tokenizer/builtin.NewDefault.
func WithTokenCounter(c tokenizer.Counter) Option {
	return func(cfg *config) {
		cfg.counter = c
	}
}

// WithSegmenter overrides the SentenceSegmenter backend. Absent an
// explicit one, New falls back to segmenter/builtin.NewDefault.
func WithSegmenter(s segmenter.Segmenter) Option {
	return func(cfg *config) {
		cfg.segmenter = s
	}
}
