package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks sharerapy/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceForReport deletes a report's chunks and inserts the given ones in one transaction.
	ReplaceForReport(ctx context.Context, reportID string, chunks []ChunkRecord) error
	// DeleteByReport deletes all chunks for a given report ID.
	DeleteByReport(ctx context.Context, reportID string) error
	// ListIDsByReport returns all chunk IDs for a given report, ordered by chunk_index.
	ListIDsByReport(ctx context.Context, reportID string) ([]string, error)
	// ListAllIDs returns every chunk ID.
	ListAllIDs(ctx context.Context) ([]string, error)
	// DeleteAll removes every chunk row.
	DeleteAll(ctx context.Context) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForReport deletes a report's chunks and inserts the given ones in one transaction.
// Chunk IDs must be set (UUID) before calling this method.
func (r *ChunkRepo) ReplaceForReport(ctx context.Context, reportID string, chunks []ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM report_chunks WHERE report_id = ?", reportID); err != nil {
		return fmt.Errorf("failed to delete chunks by report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO report_chunks (id, report_id, chunk_index, heading_path, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, reportID, c.ChunkIndex, c.HeadingPath, c.Text); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// DeleteByReport deletes all chunks for a given report ID.
func (r *ChunkRepo) DeleteByReport(ctx context.Context, reportID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_chunks WHERE report_id = ?", reportID); err != nil {
		return fmt.Errorf("failed to delete chunks by report: %w", err)
	}
	return nil
}

// ListIDsByReport returns all chunk IDs for a given report, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to get Qdrant point IDs for deletion before re-indexing.
func (r *ChunkRepo) ListIDsByReport(ctx context.Context, reportID string) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM report_chunks WHERE report_id = ? ORDER BY chunk_index", reportID)
}

// ListAllIDs returns every chunk ID.
func (r *ChunkRepo) ListAllIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM report_chunks ORDER BY report_id, chunk_index")
}

// DeleteAll removes every chunk row.
func (r *ChunkRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_chunks"); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (r *ChunkRepo) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}
