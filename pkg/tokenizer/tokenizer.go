// Package tokenizer provides the TokenCounter component: counting tokens in
// a string via a single backend selected once at construction time through a
// fallback hierarchy (cl100k_base BPE, then a gpt2 subword tokenizer, then a
// whitespace split guaranteed to always succeed).
package tokenizer

// Kind identifies which backend a Counter resolved to at construction. It is
// recorded verbatim into every chunk's metadata.tokenizer_type.
type Kind string

const (
	// KindTiktoken is the preferred backend: a BPE encoder identified by
	// the name cl100k_base.
	KindTiktoken Kind = "tiktoken"

	// KindTransformers is the secondary backend: a subword tokenizer
	// identified by the name gpt2.
	KindTransformers Kind = "transformers"

	// KindWhitespace is the guaranteed-available fallback: token count
	// equals the number of whitespace-delimited words.
	KindWhitespace Kind = "whitespace"
)

// Counter counts tokens in a string. A Counter is read-only after
// construction and may be shared across goroutines.
type Counter interface {
	// Count returns the number of tokens in text. It returns 0 for
	// empty or whitespace-only input, and is deterministic for a given
	// (text, Kind()) pair. Count never suspends and never fails on
	// well-formed string input.
	Count(text string) (int, error)

	// Kind reports which backend this Counter resolved to at construction.
	Kind() Kind
}

// Func adapts a plain counting function into a Counter with a fixed Kind.
// Builtin backends are implemented as a Func closing over their encoder.
type Func struct {
	kind  Kind
	count func(string) (int, error)
}

// NewFunc wraps count as a Counter reporting the given kind.
func NewFunc(kind Kind, count func(string) (int, error)) Counter {
	return &Func{kind: kind, count: count}
}

func (f *Func) Count(text string) (int, error) {
	return f.count(text)
}

func (f *Func) Kind() Kind {
	return f.kind
}
