package memsink

import (
	"context"
	"testing"

	"github.com/chunklab/tokchunk/pkg/orchestrator"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore()
	id := s.Put(orchestrator.Submission{Status: orchestrator.StatusUploaded})

	got, found, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected submission to be found")
	}
	if got.Status != orchestrator.StatusUploaded {
		t.Errorf("status = %q, want %q", got.Status, orchestrator.StatusUploaded)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	_, found, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("expected submission not to be found")
	}
}

func TestSink_InsertAndChunksOrder(t *testing.T) {
	sink := NewSink()
	sink.Insert(context.Background(), orchestrator.ChunkRecord{SubmissionID: "s1", ChunkIndex: 1, Text: "b"})
	sink.Insert(context.Background(), orchestrator.ChunkRecord{SubmissionID: "s1", ChunkIndex: 0, Text: "a"})

	count, err := sink.GetCount(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	chunks := sink.Chunks("s1")
	if len(chunks) != 2 || chunks[0].Text != "a" || chunks[1].Text != "b" {
		t.Errorf("Chunks() not ordered by chunk_index: %+v", chunks)
	}
}

func TestSink_DeleteBySubmission(t *testing.T) {
	sink := NewSink()
	sink.Insert(context.Background(), orchestrator.ChunkRecord{SubmissionID: "s1", ChunkIndex: 0})
	sink.Insert(context.Background(), orchestrator.ChunkRecord{SubmissionID: "s1", ChunkIndex: 1})

	n, err := sink.DeleteBySubmission(context.Background(), "s1")
	if err != nil {
		t.Fatalf("DeleteBySubmission failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	count, _ := sink.GetCount(context.Background(), "s1")
	if count != 0 {
		t.Errorf("count after delete = %d, want 0", count)
	}
}
