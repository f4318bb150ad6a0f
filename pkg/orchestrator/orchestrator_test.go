package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/memsink"
	"github.com/chunklab/tokchunk/pkg/router"
	sbuiltin "github.com/chunklab/tokchunk/pkg/segmenter/builtin"
	"github.com/chunklab/tokchunk/pkg/sqlitesink"
	tbuiltin "github.com/chunklab/tokchunk/pkg/tokenizer/builtin"
)

type memStore struct {
	mu   sync.Mutex
	subs map[string]*Submission
}

func newMemStore(subs ...*Submission) *memStore {
	m := &memStore{subs: map[string]*Submission{}}
	for _, s := range subs {
		m.subs[s.ID] = s
	}
	return m
}

func (m *memStore) Get(ctx context.Context, id string) (*Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *s
	return &cp, true, nil
}

func (m *memStore) SetStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return chunkerr.SubmissionNotFound(id)
	}
	s.Status = status
	return nil
}

type memSink struct {
	mu      sync.Mutex
	records map[string][]ChunkRecord
	failAt  int // if > 0, Insert fails on the failAt'th call (1-indexed)
	inserts int
}

func newMemSink() *memSink {
	return &memSink{records: map[string][]ChunkRecord{}}
}

func (s *memSink) Insert(ctx context.Context, record ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.failAt > 0 && s.inserts == s.failAt {
		return errors.New("simulated sink failure")
	}
	s.records[record.SubmissionID] = append(s.records[record.SubmissionID], record)
	return nil
}

func (s *memSink) DeleteBySubmission(ctx context.Context, submissionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records[submissionID])
	delete(s.records, submissionID)
	return n, nil
}

func (s *memSink) GetCount(ctx context.Context, submissionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[submissionID]), nil
}

type fakeParser struct {
	text string
}

func (f *fakeParser) ExtractPDFPages(ctx context.Context, path string) ([]string, error) {
	return []string{f.text}, nil
}

func (f *fakeParser) ParseDOCX(ctx context.Context, path string) (string, error) {
	return f.text, nil
}

func newTestOrchestrator(store SubmissionStore, sink ChunkSink) *Orchestrator {
	c := chunker.New(
		chunker.WithTokenCounter(tbuiltin.NewWhitespaceCounter()),
		chunker.WithSegmenter(sbuiltin.NewRegexSegmenter()),
	)
	r := router.New(&fakeParser{text: "A sentence for preprocessing. Another sentence follows."}, c)
	return New(store, sink, r)
}

func TestPreprocess_Success(t *testing.T) {
	sub := &Submission{ID: "s1", ContentType: router.ContentTypeText, Status: StatusUploaded, OriginalContent: "A sentence for preprocessing. Another sentence follows."}
	store := newMemStore(sub)
	sink := newMemSink()
	o := newTestOrchestrator(store, sink)

	count, err := o.Preprocess(context.Background(), "s1", 900, 200)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one chunk")
	}

	got, _, _ := store.Get(context.Background(), "s1")
	if got.Status != StatusPreprocessed {
		t.Errorf("status = %q, want %q", got.Status, StatusPreprocessed)
	}
}

func TestPreprocess_IdempotentShortCircuit(t *testing.T) {
	sub := &Submission{ID: "s1", ContentType: router.ContentTypeText, Status: StatusUploaded, OriginalContent: "A sentence for preprocessing. Another sentence follows."}
	store := newMemStore(sub)
	sink := newMemSink()
	o := newTestOrchestrator(store, sink)

	first, err := o.Preprocess(context.Background(), "s1", 900, 200)
	if err != nil {
		t.Fatalf("first Preprocess failed: %v", err)
	}

	second, err := o.Preprocess(context.Background(), "s1", 900, 200)
	if err != nil {
		t.Fatalf("second Preprocess failed: %v", err)
	}
	if second != first {
		t.Errorf("second count = %d, want %d (idempotent)", second, first)
	}
	if got := sink.records["s1"]; len(got) != first {
		t.Errorf("stored chunk count = %d, want %d", len(got), first)
	}
}

func TestPreprocess_NotFound(t *testing.T) {
	store := newMemStore()
	sink := newMemSink()
	o := newTestOrchestrator(store, sink)

	_, err := o.Preprocess(context.Background(), "missing", 900, 200)
	if !errors.Is(err, chunkerr.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestPreprocess_InvalidConfig(t *testing.T) {
	sub := &Submission{ID: "s1", ContentType: router.ContentTypeText, Status: StatusUploaded, OriginalContent: "text"}
	store := newMemStore(sub)
	sink := newMemSink()
	o := newTestOrchestrator(store, sink)

	_, err := o.Preprocess(context.Background(), "s1", 100, 10)
	if !errors.Is(err, chunkerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for out-of-bounds chunk_tokens, got %v", err)
	}
}

func TestPreprocess_SinkFailureTransitionsToFailed(t *testing.T) {
	sub := &Submission{ID: "s1", ContentType: router.ContentTypeText, Status: StatusUploaded, OriginalContent: "A sentence for preprocessing. Another sentence follows."}
	store := newMemStore(sub)
	sink := newMemSink()
	sink.failAt = 1
	o := newTestOrchestrator(store, sink)

	_, err := o.Preprocess(context.Background(), "s1", 900, 200)
	if err == nil {
		t.Fatal("expected error")
	}
	var pfe *chunkerr.PreprocessingFailedError
	if !errors.As(err, &pfe) {
		t.Fatalf("expected PreprocessingFailedError, got %v", err)
	}

	got, _, _ := store.Get(context.Background(), "s1")
	if got.Status != StatusFailed {
		t.Errorf("status = %q, want %q", got.Status, StatusFailed)
	}
	if remaining := sink.records["s1"]; len(remaining) != 0 {
		t.Errorf("expected compensating delete to leave no chunks, got %d", len(remaining))
	}
}

func TestDeleteChunks(t *testing.T) {
	sub := &Submission{ID: "s1", ContentType: router.ContentTypeText, Status: StatusPreprocessed, OriginalContent: "text"}
	store := newMemStore(sub)
	sink := newMemSink()
	sink.records["s1"] = []ChunkRecord{{SubmissionID: "s1", ChunkIndex: 0}, {SubmissionID: "s1", ChunkIndex: 1}}
	o := newTestOrchestrator(store, sink)

	count, err := o.DeleteChunks(context.Background(), "s1")
	if err != nil {
		t.Fatalf("DeleteChunks failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	got, _, _ := store.Get(context.Background(), "s1")
	if got.Status != StatusUploaded {
		t.Errorf("status = %q, want %q", got.Status, StatusUploaded)
	}
}

// TestPreprocess_WithMemsinkBackend exercises Preprocess against the
// in-memory reference SubmissionStore/ChunkSink, rather than the local
// test fakes above, so pkg/memsink is proven wired end to end and not
// just self-tested.
func TestPreprocess_WithMemsinkBackend(t *testing.T) {
	store := memsink.NewStore()
	sink := memsink.NewSink()
	id := store.Put(Submission{
		ContentType:     router.ContentTypeText,
		OriginalContent: "A sentence for preprocessing. Another sentence follows.",
		Status:          StatusUploaded,
	})
	o := newTestOrchestrator(store, sink)

	count, err := o.Preprocess(context.Background(), id, 900, 200)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one chunk")
	}

	got, _, _ := store.Get(context.Background(), id)
	if got.Status != StatusPreprocessed {
		t.Errorf("status = %q, want %q", got.Status, StatusPreprocessed)
	}
	if len(sink.Chunks(id)) != count {
		t.Errorf("stored chunk count = %d, want %d", len(sink.Chunks(id)), count)
	}
}

// TestPreprocess_WithSqliteBackend exercises Preprocess against the
// SQLite-backed reference SubmissionStore/ChunkSink, proving pkg/sqlitesink
// (and its TxChunkSink atomicity path) is wired into a real orchestrator
// run, not just self-tested.
func TestPreprocess_WithSqliteBackend(t *testing.T) {
	db, err := sqlitesink.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	store := sqlitesink.NewStore(db)
	sink := sqlitesink.NewSink(db)
	sub := Submission{ID: "sql-1", ContentType: router.ContentTypeText, Status: StatusUploaded, OriginalContent: "A sentence for preprocessing. Another sentence follows."}
	if err := store.Put(context.Background(), sub); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	o := newTestOrchestrator(store, sink)

	count, err := o.Preprocess(context.Background(), "sql-1", 900, 200)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one chunk")
	}

	got, _, _ := store.Get(context.Background(), "sql-1")
	if got.Status != StatusPreprocessed {
		t.Errorf("status = %q, want %q", got.Status, StatusPreprocessed)
	}
	stored, err := sink.GetCount(context.Background(), "sql-1")
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if stored != count {
		t.Errorf("stored chunk count = %d, want %d", stored, count)
	}
}
