// Package memsink provides an in-memory SubmissionStore and ChunkSink,
// for tests where no real persistence layer is wired up.
package memsink

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/orchestrator"
)

// Store is an in-memory orchestrator.SubmissionStore.
type Store struct {
	mu   sync.RWMutex
	subs map[string]*orchestrator.Submission
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{subs: map[string]*orchestrator.Submission{}}
}

// Put registers a submission and returns its id, generating one via
// uuid if the submission has none.
func (s *Store) Put(sub orchestrator.Submission) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	cp := sub
	s.subs[cp.ID] = &cp
	return cp.ID
}

func (s *Store) Get(ctx context.Context, id string) (*orchestrator.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *sub
	return &cp, true, nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status orchestrator.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return chunkerr.SubmissionNotFound(id)
	}
	sub.Status = status
	return nil
}

// Sink is an in-memory orchestrator.ChunkSink. It records insertion
// order per submission so GetCount and lookups stay dense and ordered.
type Sink struct {
	mu      sync.Mutex
	records map[string][]orchestrator.ChunkRecord
}

// NewSink builds an empty Sink.
func NewSink() *Sink {
	return &Sink{records: map[string][]orchestrator.ChunkRecord{}}
}

func (s *Sink) Insert(ctx context.Context, record orchestrator.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubmissionID] = append(s.records[record.SubmissionID], record)
	return nil
}

func (s *Sink) DeleteBySubmission(ctx context.Context, submissionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records[submissionID])
	delete(s.records, submissionID)
	return n, nil
}

func (s *Sink) GetCount(ctx context.Context, submissionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[submissionID]), nil
}

// Chunks returns a submission's stored chunks in chunk_index order, for
// tests.
func (s *Sink) Chunks(submissionID string) []orchestrator.ChunkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orchestrator.ChunkRecord, len(s.records[submissionID]))
	copy(out, s.records[submissionID])
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}
