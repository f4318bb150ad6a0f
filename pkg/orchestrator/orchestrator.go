// Package orchestrator implements the PreprocessingOrchestrator: it
// drives a submission through its status lifecycle, dispatches to the
// SourceRouter, and persists the resulting chunks via a ChunkSink.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/logctx"
	"github.com/chunklab/tokchunk/pkg/router"
)

// Status is a submission's lifecycle state.
type Status string

const (
	StatusUploaded      Status = "uploaded"
	StatusPreprocessing Status = "preprocessing"
	StatusPreprocessed  Status = "preprocessed"
	StatusFailed        Status = "failed"
)

const (
	DefaultChunkTokens   = 900
	DefaultOverlapTokens = 200

	minChunkTokens   = 500
	maxChunkTokens   = 2000
	minOverlapTokens = 0
	maxOverlapTokens = 500
)

// Submission is the external entity the orchestrator consults and
// mutates. Storage is owned entirely by SubmissionStore.
type Submission struct {
	ID              string
	ContentType     router.ContentType
	FilePath        string
	OriginalContent string
	Status          Status
}

// SubmissionStore resolves and mutates submission status. It is an
// external collaborator; the orchestrator never constructs one.
type SubmissionStore interface {
	Get(ctx context.Context, id string) (*Submission, bool, error)
	SetStatus(ctx context.Context, id string, status Status) error
}

// ChunkRecord is the shape persisted by ChunkSink, mirroring
// chunker.Chunk without importing persistence concerns into the
// algorithmic core.
type ChunkRecord struct {
	SubmissionID string
	ChunkIndex   int
	Text         string
	TokenCount   int
	Metadata     chunker.Metadata
}

// ChunkSink persists and removes chunk records for a submission.
type ChunkSink interface {
	Insert(ctx context.Context, record ChunkRecord) error
	DeleteBySubmission(ctx context.Context, submissionID string) (int, error)
	GetCount(ctx context.Context, submissionID string) (int, error)
}

// SinkTx is an optional capability a ChunkSink can implement to bracket
// a submission's inserts in a single transaction, so a failed insert
// leaves none of them visible. The status transition to preprocessed is
// made after Commit and is not part of that transaction. Sinks that
// don't implement it fall back to a best-effort compensating delete on
// failure.
type SinkTx interface {
	Insert(ctx context.Context, record ChunkRecord) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxChunkSink is implemented by sinks that support SinkTx.
type TxChunkSink interface {
	ChunkSink
	Begin(ctx context.Context) (SinkTx, error)
}

// Orchestrator ties a SourceRouter to a SubmissionStore and ChunkSink.
type Orchestrator struct {
	store  SubmissionStore
	sink   ChunkSink
	router *router.Router
}

// New builds an Orchestrator.
func New(store SubmissionStore, sink ChunkSink, rtr *router.Router) *Orchestrator {
	return &Orchestrator{store: store, sink: sink, router: rtr}
}

// Preprocess resolves the submission, dispatches it through the
// router, and persists the resulting chunks, transitioning the
// submission's status along the way. It is idempotent: calling it
// again on an already-preprocessed submission returns the existing
// count without re-chunking.
func (o *Orchestrator) Preprocess(ctx context.Context, submissionID string, chunkTokens, overlapTokens int) (int, error) {
	if chunkTokens < minChunkTokens || chunkTokens > maxChunkTokens {
		return 0, chunkerr.InvalidConfig("chunk_tokens must be between %d and %d, got %d", minChunkTokens, maxChunkTokens, chunkTokens)
	}
	if overlapTokens < minOverlapTokens || overlapTokens > maxOverlapTokens {
		return 0, chunkerr.InvalidConfig("overlap_tokens must be between %d and %d, got %d", minOverlapTokens, maxOverlapTokens, overlapTokens)
	}

	ctx = logctx.WithSubmission(ctx, submissionID)
	logger := logctx.Logger(ctx)

	sub, found, err := o.store.Get(ctx, submissionID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, chunkerr.SubmissionNotFound(submissionID)
	}

	if sub.Status == StatusPreprocessed {
		count, err := o.sink.GetCount(ctx, submissionID)
		if err != nil {
			return 0, err
		}
		logger.Info("preprocess: already preprocessed, returning existing count", slog.Int("chunks", count))
		return count, nil
	}

	logTransition(logger, sub.Status, StatusPreprocessing, 0, nil)
	if err := o.store.SetStatus(ctx, submissionID, StatusPreprocessing); err != nil {
		return 0, err
	}

	count, err := o.dispatchAndPersist(ctx, sub, chunkTokens, overlapTokens)
	if err != nil {
		if setErr := o.store.SetStatus(ctx, submissionID, StatusFailed); setErr != nil {
			logger.Error("preprocess: failed to set failed status", slog.Any("error", setErr))
		}
		logTransition(logger, StatusPreprocessing, StatusFailed, 0, err)
		return 0, chunkerr.NewPreprocessingFailed(err)
	}

	if err := o.store.SetStatus(ctx, submissionID, StatusPreprocessed); err != nil {
		return 0, err
	}

	logTransition(logger, StatusPreprocessing, StatusPreprocessed, count, nil)
	return count, nil
}

// logTransition emits a structured record of a submission's status
// transition, the shape a PersistedEvent log consumer keys off of.
// submission_id is already bound on logger via logctx.WithSubmission.
func logTransition(logger *slog.Logger, from, to Status, chunks int, err error) {
	attrs := []any{slog.String("from", string(from)), slog.String("to", string(to))}
	if chunks > 0 {
		attrs = append(attrs, slog.Int("chunks", chunks))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("err", err))
		logger.Error("preprocess: status transition", attrs...)
		return
	}
	logger.Info("preprocess: status transition", attrs...)
}

func (o *Orchestrator) dispatchAndPersist(ctx context.Context, sub *Submission, chunkTokens, overlapTokens int) (int, error) {
	chunks, err := o.router.Route(ctx, sub.ContentType, sub.FilePath, sub.OriginalContent, chunkTokens, overlapTokens)
	if err != nil {
		return 0, err
	}

	if txSink, ok := o.sink.(TxChunkSink); ok {
		return o.persistTx(ctx, txSink, sub.ID, chunks)
	}
	return o.persistBestEffort(ctx, sub.ID, chunks)
}

func (o *Orchestrator) persistTx(ctx context.Context, txSink TxChunkSink, submissionID string, chunks []chunker.Chunk) (int, error) {
	tx, err := txSink.Begin(ctx)
	if err != nil {
		return 0, chunkerr.SinkFailed(err)
	}
	for _, c := range chunks {
		if err := tx.Insert(ctx, recordFor(submissionID, c)); err != nil {
			_ = tx.Rollback(ctx)
			return 0, chunkerr.SinkFailed(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return 0, chunkerr.SinkFailed(err)
	}
	return len(chunks), nil
}

// persistBestEffort inserts chunks in index order and, if any insert
// fails partway through, performs a compensating delete of whatever was
// already written so no partial chunk set is left visible.
func (o *Orchestrator) persistBestEffort(ctx context.Context, submissionID string, chunks []chunker.Chunk) (int, error) {
	for _, c := range chunks {
		if err := o.sink.Insert(ctx, recordFor(submissionID, c)); err != nil {
			if _, delErr := o.sink.DeleteBySubmission(ctx, submissionID); delErr != nil {
				logctx.Logger(ctx).Error("preprocess: compensating delete failed", slog.Any("error", delErr))
			}
			return 0, chunkerr.SinkFailed(err)
		}
	}
	return len(chunks), nil
}

func recordFor(submissionID string, c chunker.Chunk) ChunkRecord {
	return ChunkRecord{
		SubmissionID: submissionID,
		ChunkIndex:   c.ChunkIndex,
		Text:         c.Text,
		TokenCount:   c.TokenCount,
		Metadata:     c.Metadata,
	}
}

// DeleteChunks removes every chunk belonging to submissionID and resets
// its status to uploaded, returning the number removed.
func (o *Orchestrator) DeleteChunks(ctx context.Context, submissionID string) (int, error) {
	count, err := o.sink.DeleteBySubmission(ctx, submissionID)
	if err != nil {
		return 0, chunkerr.SinkFailed(err)
	}
	if err := o.store.SetStatus(ctx, submissionID, StatusUploaded); err != nil {
		return 0, err
	}
	return count, nil
}
