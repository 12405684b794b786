package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/rerx/internal/repository"
)

// BlobRepository implements repository.BlobStore for SQLite
type BlobRepository struct {
	db *DB
}

var _ repository.BlobStore = (*BlobRepository)(nil)

// NewBlobRepository creates a new BlobRepository
func NewBlobRepository(db *DB) *BlobRepository {
	return &BlobRepository{db: db}
}

// Load returns the value stored under key
func (r *BlobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blob %q: %w", key, err)
	}
	return value, nil
}

// Save replaces the value stored under key in one transaction
func (r *BlobRepository) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return repository.ErrInvalidInput
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapUnavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return wrapUnavailable(fmt.Errorf("failed to save blob %q: %w", key, err))
	}

	if err := tx.Commit(); err != nil {
		return wrapUnavailable(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func wrapUnavailable(err error) error {
	if isBusy(err) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return err
}
