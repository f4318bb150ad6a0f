package chunker

import (
	"context"
	"strings"

	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/segmenter"
	sbuiltin "github.com/chunklab/tokchunk/pkg/segmenter/builtin"
	"github.com/chunklab/tokchunk/pkg/tokenizer"
	tbuiltin "github.com/chunklab/tokchunk/pkg/tokenizer/builtin"
)

// Chunker packs a sentence stream into token-bounded, overlapping
// Chunks. A Chunker is safe for concurrent use: Chunk holds no mutable
// state of its own, only its immutable counter/segmenter backends.
type Chunker struct {
	counter   tokenizer.Counter
	segmenter segmenter.Segmenter
}

// New builds a Chunker. With no options, it wires the default
// TokenCounter and SentenceSegmenter fallback hierarchies.
func New(opts ...Option) *Chunker {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.counter == nil {
		cfg.counter = tbuiltin.NewDefault(context.Background())
	}
	if cfg.segmenter == nil {
		cfg.segmenter = sbuiltin.NewDefault(context.Background())
	}
	return &Chunker{counter: cfg.counter, segmenter: cfg.segmenter}
}

// Chunk splits text into token-bounded chunks with whole-sentence
// overlap between consecutive chunks. pageNumber is carried verbatim
// into every emitted chunk's metadata; callers chunking a non-paginated
// document pass nil.
//
// Chunk returns an empty, nil slice for text that is empty or entirely
// whitespace. It returns an error wrapping chunkerr.ErrInvalidConfig if
// chunkTokens and overlapTokens don't form a valid budget.
func (c *Chunker) Chunk(ctx context.Context, text string, chunkTokens, overlapTokens int, pageNumber *int) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chunkTokens < 1 {
		return nil, chunkerr.InvalidConfig("chunk_tokens must be >= 1, got %d", chunkTokens)
	}
	if overlapTokens < 0 {
		return nil, chunkerr.InvalidConfig("overlap_tokens must be >= 0, got %d", overlapTokens)
	}
	if overlapTokens >= chunkTokens {
		return nil, chunkerr.InvalidConfig("overlap_tokens (%d) must be less than chunk_tokens (%d)", overlapTokens, chunkTokens)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sentences, err := c.segmenter.Segment(text)
	if err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	b := &builder{
		counter:       c.counter,
		chunkTokens:   chunkTokens,
		overlapTokens: overlapTokens,
		pageNumber:    pageNumber,
	}

	for _, s := range sentences {
		tokens, err := c.counter.Count(s)
		if err != nil {
			return nil, err
		}
		if err := b.push(s, tokens); err != nil {
			return nil, err
		}
	}
	if err := b.flushFinal(); err != nil {
		return nil, err
	}

	return b.chunks, nil
}
