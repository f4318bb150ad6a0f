package builtin

import (
	"strings"

	"github.com/neurosnap/sentences"

	"github.com/chunklab/tokchunk/pkg/segmenter"
)

// NewLinguisticSegmenter returns a Segmenter backed by neurosnap/sentences'
// Punkt-style sentence boundary detector, the preferred SentenceSegmenter
// backend. With a nil training model it falls back to the library's
// built-in English rules, so construction never fails.
func NewLinguisticSegmenter() segmenter.Segmenter {
	tok := sentences.NewSentenceTokenizer(nil)
	return segmenter.NewFunc(segmenter.KindLinguistic, func(text string) ([]string, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		sents := tok.Tokenize(text)
		out := make([]string, 0, len(sents))
		for _, s := range sents {
			trimmed := strings.TrimSpace(s.Text)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	})
}
