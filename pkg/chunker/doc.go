// Package chunker implements the token-aware, sentence-packing document
// chunker: the core algorithm that turns a page (or document) of plain
// text into a sequence of overlapping, token-bounded Chunks.
//
// The algorithm is a single forward pass over a sentence stream. A
// buffer of whole sentences accumulates until adding the next sentence
// would push it over the token budget, at which point the buffer is
// emitted as a chunk and reseeded with a whole-sentence overlap tail
// drawn from its own end. A sentence that alone exceeds the budget is
// never dropped or truncated: it is subdivided word by word into its
// own hard-boundaried run of chunks, and packing resumes after it with
// no overlap carried across the split.
//
// Char offsets recorded in Metadata are computed against the chunker's
// own joined-sentence reconstruction of the text, advancing by
// len(sentence)+1 per sentence regardless of how that sentence was
// packed. They are a consistent, reversible coordinate system for
// locating a chunk within the sentence stream the chunker saw, not
// byte-exact offsets into whatever whitespace the original source used
// between sentences.
package chunker
