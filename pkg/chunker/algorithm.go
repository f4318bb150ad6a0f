package chunker

import (
	"strings"

	"github.com/chunklab/tokchunk/pkg/tokenizer"
)

// bufSentence is a sentence held in the packing buffer along with its
// already-counted token cost, so overlap-tail computation never needs
// to re-invoke the TokenCounter.
type bufSentence struct {
	text   string
	tokens int
}

// builder holds the running state of one Chunk call: the packing
// buffer, the running token and char offsets, and the chunks emitted
// so far.
type builder struct {
	counter       tokenizer.Counter
	chunkTokens   int
	overlapTokens int
	pageNumber    *int

	buffer       []bufSentence
	bufferTokens int

	globalOffset int // token offset of the next chunk's first token
	charCursor   int // char offset advanced past all sentences seen so far

	chunks []Chunk
}

// push feeds one sentence through the packing algorithm: flush-on-
// overflow, then either buffer the sentence or, if it alone exceeds the
// budget, hard-split it.
func (b *builder) push(sentence string, tokens int) error {
	if len(b.buffer) > 0 && b.bufferTokens+tokens > b.chunkTokens {
		if err := b.flushWithOverlap(); err != nil {
			return err
		}
	}

	if tokens > b.chunkTokens {
		if len(b.buffer) > 0 {
			if err := b.flushNoOverlap(); err != nil {
				return err
			}
		}
		subTokens, err := b.splitOversized(sentence)
		if err != nil {
			return err
		}
		b.globalOffset += subTokens
	} else {
		b.buffer = append(b.buffer, bufSentence{text: sentence, tokens: tokens})
		b.bufferTokens += tokens
	}

	b.charCursor += len(sentence) + 1
	return nil
}

// flushFinal emits whatever remains buffered at the end of the
// sentence stream. There is no following chunk to overlap into, so
// this is equivalent to a hard flush.
func (b *builder) flushFinal() error {
	return b.flushNoOverlap()
}

// flushWithOverlap emits the buffer as a chunk, then reseeds the buffer
// with a whole-sentence overlap tail drawn from the end of the chunk
// just emitted.
func (b *builder) flushWithOverlap() error {
	if len(b.buffer) == 0 {
		return nil
	}

	tokenCount := b.bufferTokens
	if err := b.emit(b.buffer); err != nil {
		return err
	}

	tail, tailTokens := b.overlapTail()
	b.globalOffset += tokenCount - tailTokens
	b.buffer = tail
	b.bufferTokens = tailTokens
	return nil
}

// flushNoOverlap emits the buffer as a chunk and resets it completely:
// no sentence carries across this boundary.
func (b *builder) flushNoOverlap() error {
	if len(b.buffer) == 0 {
		return nil
	}

	tokenCount := b.bufferTokens
	if err := b.emit(b.buffer); err != nil {
		return err
	}

	b.globalOffset += tokenCount
	b.buffer = nil
	b.bufferTokens = 0
	return nil
}

// emit joins buffered sentences into one chunk and records it.
// char_offset_end is the char cursor's current position, i.e. the
// position just past every sentence seen so far except the one
// currently being processed by push (which hasn't advanced the cursor
// yet), matching the chunker's own reconstruction of the text.
func (b *builder) emit(buf []bufSentence) error {
	texts := make([]string, len(buf))
	for i, s := range buf {
		texts[i] = s.text
	}
	text := strings.Join(texts, " ")
	tokenCount := b.bufferTokens

	end := b.charCursor
	start := end - len(text)
	sentenceCount := len(buf)

	b.chunks = append(b.chunks, Chunk{
		ChunkIndex: len(b.chunks),
		Text:       text,
		TokenCount: tokenCount,
		Metadata: Metadata{
			ChunkMethod:     "token_based",
			TokenizerType:   string(b.counter.Kind()),
			StartToken:      b.globalOffset,
			EndToken:        b.globalOffset + tokenCount,
			CharOffsetStart: start,
			CharOffsetEnd:   end,
			PageNumber:      b.pageNumber,
			SentenceCount:   &sentenceCount,
		},
	})
	return nil
}

// overlapTail scans the just-emitted buffer in reverse, greedily
// including whole sentences while their cumulative token count stays
// within overlapTokens. It never partially includes a sentence.
func (b *builder) overlapTail() ([]bufSentence, int) {
	var tail []bufSentence
	tailTokens := 0

	for i := len(b.buffer) - 1; i >= 0; i-- {
		s := b.buffer[i]
		if tailTokens+s.tokens > b.overlapTokens {
			break
		}
		tail = append([]bufSentence{s}, tail...)
		tailTokens += s.tokens
	}
	return tail, tailTokens
}

// splitOversized subdivides a single sentence that alone exceeds
// chunkTokens into a run of word-packed chunks, each no larger than
// chunkTokens, each marked OversizedSplit. It returns the total token
// count across every subchunk it emitted, for the caller to fold into
// the global token offset. It advances no shared state but b.chunks;
// the caller is responsible for the outer char cursor advance, which
// happens once for the whole sentence regardless of how many subchunks
// it produced.
func (b *builder) splitOversized(sentence string) (int, error) {
	words := strings.Fields(sentence)
	localCursor := b.charCursor

	var pending []string
	pendingTokens := 0
	total := 0

	flush := func(advance bool) error {
		if len(pending) == 0 {
			return nil
		}
		text := strings.Join(pending, " ")
		end := localCursor + len(text)

		b.chunks = append(b.chunks, Chunk{
			ChunkIndex: len(b.chunks),
			Text:       text,
			TokenCount: pendingTokens,
			Metadata: Metadata{
				ChunkMethod:     "token_based",
				TokenizerType:   string(b.counter.Kind()),
				StartToken:      b.globalOffset + total,
				EndToken:        b.globalOffset + total + pendingTokens,
				CharOffsetStart: localCursor,
				CharOffsetEnd:   end,
				PageNumber:      b.pageNumber,
				OversizedSplit:  true,
			},
		})

		total += pendingTokens
		if advance {
			localCursor = end + 1
		}
		pending = nil
		pendingTokens = 0
		return nil
	}

	for _, w := range words {
		wTokens, err := b.counter.Count(w)
		if err != nil {
			return 0, err
		}
		if len(pending) > 0 && pendingTokens+wTokens > b.chunkTokens {
			if err := flush(true); err != nil {
				return 0, err
			}
		}
		pending = append(pending, w)
		pendingTokens += wTokens
	}
	if err := flush(false); err != nil {
		return 0, err
	}

	return total, nil
}
