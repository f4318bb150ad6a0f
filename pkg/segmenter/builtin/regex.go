package builtin

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/chunklab/tokchunk/pkg/segmenter"
)

// sentenceBoundary matches the whitespace between two sentences: preceded
// by a sentence-ending punctuation mark and followed by an uppercase
// letter. Go's stdlib regexp (RE2) can't express the lookbehind/lookahead
// this needs, hence regexp2.
var sentenceBoundary = regexp2.MustCompile(`(?<=[.!?])\s+(?=[A-Z])`, regexp2.None)

// NewRegexSegmenter returns the SentenceSegmenter fallback that is always
// available: splitting on /(?<=[.!?])\s+(?=[A-Z])/.
func NewRegexSegmenter() segmenter.Segmenter {
	return segmenter.NewFunc(segmenter.KindRegex, func(text string) ([]string, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}

		pieces, err := splitOnBoundary(text)
		if err != nil {
			return nil, err
		}

		out := make([]string, 0, len(pieces))
		for _, p := range pieces {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	})
}

// splitOnBoundary slices text on every sentenceBoundary match. Match
// offsets from regexp2 are rune-based, so text is sliced via a rune
// conversion rather than byte indices.
func splitOnBoundary(text string) ([]string, error) {
	runes := []rune(text)
	var parts []string
	last := 0

	m, err := sentenceBoundary.FindStringMatch(text)
	if err != nil {
		return nil, err
	}
	for m != nil {
		idx := m.Index
		parts = append(parts, string(runes[last:idx]))
		last = idx + m.Length

		m, err = sentenceBoundary.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	parts = append(parts, string(runes[last:]))
	return parts, nil
}
