// Package segmenter provides the SentenceSegmenter component: splitting a
// string into an ordered sequence of trimmed, non-overlapping sentences via
// a single backend selected once at construction through a fallback
// hierarchy (a linguistic sentence-boundary pipeline, then a guaranteed
// regex backend).
package segmenter

// Kind identifies which backend a Segmenter resolved to at construction.
type Kind string

const (
	// KindLinguistic is the preferred backend: a pipeline with sentence
	// boundary detection.
	KindLinguistic Kind = "linguistic"

	// KindRegex is the guaranteed-available fallback: splitting on
	// /(?<=[.!?])\s+(?=[A-Z])/.
	KindRegex Kind = "regex"
)

// Segmenter splits a string into sentences. A Segmenter is read-only after
// construction and may be shared across goroutines.
type Segmenter interface {
	// Segment returns the trimmed, non-empty, non-overlapping sentences in
	// text in source order. Returns an empty slice for empty or
	// whitespace-only input. Segment never suspends.
	Segment(text string) ([]string, error)

	// Kind reports which backend this Segmenter resolved to at construction.
	Kind() Kind
}

// Func adapts a plain segmenting function into a Segmenter with a fixed Kind.
type Func struct {
	kind    Kind
	segment func(string) ([]string, error)
}

// NewFunc wraps segment as a Segmenter reporting the given kind.
func NewFunc(kind Kind, segment func(string) ([]string, error)) Segmenter {
	return &Func{kind: kind, segment: segment}
}

func (f *Func) Segment(text string) ([]string, error) {
	return f.segment(text)
}

func (f *Func) Kind() Kind {
	return f.kind
}
