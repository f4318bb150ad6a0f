package sqlitesink

import (
	"context"
	"testing"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/orchestrator"
	"github.com/chunklab/tokchunk/pkg/router"
)

func openTestDB(t *testing.T) (*Store, *Sink) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), NewSink(db)
}

func TestStore_PutGetSetStatus(t *testing.T) {
	store, _ := openTestDB(t)
	ctx := context.Background()

	sub := orchestrator.Submission{
		ID:              "sub-1",
		ContentType:     router.ContentTypeText,
		FilePath:        "doc.txt",
		OriginalContent: "hello",
		Status:          orchestrator.StatusUploaded,
	}
	if err := store.Put(ctx, sub); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := store.Get(ctx, "sub-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected submission to be found")
	}
	if got.Status != orchestrator.StatusUploaded {
		t.Errorf("status = %q, want %q", got.Status, orchestrator.StatusUploaded)
	}

	if err := store.SetStatus(ctx, "sub-1", orchestrator.StatusPreprocessed); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _, _ = store.Get(ctx, "sub-1")
	if got.Status != orchestrator.StatusPreprocessed {
		t.Errorf("status after SetStatus = %q, want %q", got.Status, orchestrator.StatusPreprocessed)
	}
}

func TestStore_SetStatusMissing(t *testing.T) {
	store, _ := openTestDB(t)
	if err := store.SetStatus(context.Background(), "missing", orchestrator.StatusFailed); err == nil {
		t.Fatal("expected error for missing submission")
	}
}

func TestSink_InsertCountDelete(t *testing.T) {
	_, sink := openTestDB(t)
	ctx := context.Background()

	sentences := 2
	rec := orchestrator.ChunkRecord{
		SubmissionID: "sub-1",
		ChunkIndex:   0,
		Text:         "hello world",
		TokenCount:   2,
		Metadata: chunker.Metadata{
			ChunkMethod:   "token_based",
			TokenizerType: "whitespace",
			StartToken:    0,
			EndToken:      2,
			SentenceCount: &sentences,
		},
	}
	if err := sink.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	count, err := sink.GetCount(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	chunks, err := sink.Chunks(ctx, "sub-1")
	if err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Metadata.TokenizerType != "whitespace" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}

	n, err := sink.DeleteBySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("DeleteBySubmission failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestSink_TxRollbackLeavesNoChunks(t *testing.T) {
	_, sink := openTestDB(t)
	ctx := context.Background()

	tx, err := sink.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tx.Insert(ctx, orchestrator.ChunkRecord{SubmissionID: "sub-2", ChunkIndex: 0, Text: "a", TokenCount: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	count, err := sink.GetCount(ctx, "sub-2")
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after rollback = %d, want 0", count)
	}
}
