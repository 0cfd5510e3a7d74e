package repositories

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

// ChunkRecordRepository stores opaque chunk records keyed by binary key.
type ChunkRecordRepository struct {
	db *sql.DB
}

// NewChunkRecordRepository creates a new ChunkRecordRepository with the given database connection
func NewChunkRecordRepository(db *sql.DB) *ChunkRecordRepository {
	return &ChunkRecordRepository{db: db}
}

// Put inserts or replaces the record stored under rec.Key.
func (r *ChunkRecordRepository) Put(ctx context.Context, rec models.ChunkRecord) error {
	if len(rec.Key) == 0 {
		return fmt.Errorf("%w: empty record key", shared.ErrInvalidArgument)
	}

	query := `
		INSERT INTO chunk_records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, rec.Key, rec.Value); err != nil {
		return fmt.Errorf("failed to put chunk record: %w", err)
	}
	return nil
}

// Get retrieves the record stored under key.
func (r *ChunkRecordRepository) Get(ctx context.Context, key []byte) (*models.ChunkRecord, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, "SELECT value FROM chunk_records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, hex.EncodeToString(key))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunk record: %w", err)
	}
	return &models.ChunkRecord{Key: key, Value: value}, nil
}

// Has reports whether a record exists under key.
func (r *ChunkRecordRepository) Has(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM chunk_records WHERE key = ?)", key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check chunk record: %w", err)
	}
	return exists, nil
}

// Delete removes the record stored under key. Deleting a missing key is not an error.
func (r *ChunkRecordRepository) Delete(ctx context.Context, key []byte) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chunk_records WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete chunk record: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (r *ChunkRecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunk_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunk records: %w", err)
	}
	return count, nil
}

// Keys returns every stored key in ascending order.
func (r *ChunkRecordRepository) Keys(ctx context.Context) ([][]byte, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM chunk_records ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk records: %w", err)
	}
	defer rows.Close()

	var keys [][]byte
	for rows.Next() {
		var key []byte
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan chunk record key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}
