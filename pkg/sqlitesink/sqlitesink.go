// Package sqlitesink provides a SQLite-backed orchestrator.ChunkSink
// and orchestrator.SubmissionStore, exercised by the orchestrator's
// integration tests. The CLI does not use it.
package sqlitesink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/orchestrator"
	"github.com/chunklab/tokchunk/pkg/router"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id               TEXT PRIMARY KEY,
	content_type     TEXT NOT NULL,
	file_path        TEXT NOT NULL,
	original_content TEXT NOT NULL,
	status           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	submission_id TEXT NOT NULL,
	chunk_index   INTEGER NOT NULL,
	text          TEXT NOT NULL,
	token_count   INTEGER NOT NULL,
	metadata      TEXT NOT NULL,
	PRIMARY KEY (submission_id, chunk_index)
);
`

// Open opens (creating if necessary) a SQLite database at path and
// ensures the submissions/chunks schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitesink: migrate schema: %w", err)
	}
	return db, nil
}

// Store is a SQLite-backed orchestrator.SubmissionStore.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open, already-migrated *sql.DB.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id string) (*orchestrator.Submission, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content_type, file_path, original_content, status FROM submissions WHERE id = ?`, id)

	var sub orchestrator.Submission
	var contentType, status string
	if err := row.Scan(&sub.ID, &contentType, &sub.FilePath, &sub.OriginalContent, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	sub.ContentType = router.ContentType(contentType)
	sub.Status = orchestrator.Status(status)
	return &sub, true, nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status orchestrator.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return chunkerr.SubmissionNotFound(id)
	}
	return nil
}

// Put inserts a submission row, for test/demo setup.
func (s *Store) Put(ctx context.Context, sub orchestrator.Submission) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, content_type, file_path, original_content, status) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, string(sub.ContentType), sub.FilePath, sub.OriginalContent, string(sub.Status))
	return err
}

// Sink is a SQLite-backed orchestrator.ChunkSink that also implements
// orchestrator.TxChunkSink, bracketing a submission's inserts in a
// single database transaction.
type Sink struct {
	db *sql.DB
}

// NewSink wraps an already-open, already-migrated *sql.DB.
func NewSink(db *sql.DB) *Sink {
	return &Sink{db: db}
}

func (s *Sink) Insert(ctx context.Context, record orchestrator.ChunkRecord) error {
	return insertRecord(ctx, s.db, record)
}

func insertRecord(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, record orchestrator.ChunkRecord) error {
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return err
	}
	_, err = execer.ExecContext(ctx,
		`INSERT INTO chunks (submission_id, chunk_index, text, token_count, metadata) VALUES (?, ?, ?, ?, ?)`,
		record.SubmissionID, record.ChunkIndex, record.Text, record.TokenCount, string(metadataJSON))
	return err
}

func (s *Sink) DeleteBySubmission(ctx context.Context, submissionID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE submission_id = ?`, submissionID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Sink) GetCount(ctx context.Context, submissionID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE submission_id = ?`, submissionID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Begin starts a transaction-scoped orchestrator.SinkTx.
func (s *Sink) Begin(ctx context.Context) (orchestrator.SinkTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sinkTx{tx: tx}, nil
}

type sinkTx struct {
	tx *sql.Tx
}

func (t *sinkTx) Insert(ctx context.Context, record orchestrator.ChunkRecord) error {
	return insertRecord(ctx, t.tx, record)
}

func (t *sinkTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sinkTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

// Chunks returns a submission's stored chunks in chunk_index order, for
// tests.
func (s *Sink) Chunks(ctx context.Context, submissionID string) ([]orchestrator.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT submission_id, chunk_index, text, token_count, metadata FROM chunks WHERE submission_id = ? ORDER BY chunk_index`,
		submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orchestrator.ChunkRecord
	for rows.Next() {
		var r orchestrator.ChunkRecord
		var metadataJSON string
		if err := rows.Scan(&r.SubmissionID, &r.ChunkIndex, &r.Text, &r.TokenCount, &metadataJSON); err != nil {
			return nil, err
		}
		metadata, err := decodeMetadata(metadataJSON)
		if err != nil {
			return nil, err
		}
		r.Metadata = metadata
		out = append(out, r)
	}
	return out, rows.Err()
}

// decodeMetadata reconstructs a chunker.Metadata's required fields from
// its stored JSON form. Metadata.Extra is not round-tripped: it exists
// to let callers attach ad hoc data to a Chunk in memory, not as a
// column in this reference schema.
func decodeMetadata(raw string) (chunker.Metadata, error) {
	var m chunker.Metadata
	err := json.Unmarshal([]byte(raw), &m)
	return m, err
}
