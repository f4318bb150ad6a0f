package chunker

import "encoding/json"

// Metadata carries a chunk's provenance: enough to locate it back in the
// original document and to reconstruct it as part of a submission's
// sequence. It models the required keys from spec.md §3 as typed fields
// plus an open extension map, rather than a bare map[string]any, so
// consumers can rely on the required fields being present and correctly
// typed.
type Metadata struct {
	// ChunkMethod is always "token_based".
	ChunkMethod string `json:"chunk_method"`

	// TokenizerType is one of "tiktoken", "transformers", "whitespace".
	TokenizerType string `json:"tokenizer_type"`

	// StartToken and EndToken bound this chunk's tokens on the token
	// timeline local to its page (or the whole document if unpaginated).
	// EndToken - StartToken always equals the chunk's TokenCount.
	StartToken int `json:"start_token"`
	EndToken   int `json:"end_token"`

	// CharOffsetStart and CharOffsetEnd are monotonic, reversible locators
	// relative to the joined sentence representation the chunker builds —
	// not byte-exact offsets into the original source. See pkg/chunker's
	// package doc for why.
	CharOffsetStart int `json:"char_offset_start"`
	CharOffsetEnd   int `json:"char_offset_end"`

	// PageNumber is the page this chunk came from, or nil for
	// non-paginated sources.
	PageNumber *int `json:"page_number"`

	// SentenceCount is the number of sentences packed into this chunk.
	// Absent (nil) on oversized splits, which have no sentence count.
	SentenceCount *int `json:"sentence_count,omitempty"`

	// OversizedSplit is true only for chunks produced by subdividing a
	// single sentence that exceeded the token budget. Omitted (absent)
	// for ordinary chunks.
	OversizedSplit bool `json:"oversized_split,omitempty"`

	// Extra carries any additional metadata a caller or downstream
	// consumer wants to travel with the chunk; it is merged alongside the
	// required fields above when marshaled, never shadowing them.
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Metadata's required fields with Extra into a single
// flat JSON object, so the metadata map stays "open" at the wire level
// while the Go type stays fully typed.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type alias Metadata
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}

	if len(m.Extra) == 0 {
		return base, nil
	}

	merged := make(map[string]any, len(m.Extra)+8)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Chunk is the only persisted entity the chunker produces: a contiguous
// span of source text paired with its provenance metadata.
type Chunk struct {
	// ChunkIndex is dense and strictly monotonic within a submission,
	// starting at 0.
	ChunkIndex int `json:"chunk_index"`

	// Text is the chunk's content, non-empty after trimming.
	Text string `json:"text"`

	// TokenCount is consistent with the TokenCounter that produced it and
	// equals Metadata.EndToken - Metadata.StartToken.
	TokenCount int `json:"token_count"`

	Metadata Metadata `json:"metadata"`
}
