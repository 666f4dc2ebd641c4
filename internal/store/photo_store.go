package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/pingallery/internal/domain"
)

// PhotoStore caches photos returned by searches so they can later be fetched
// by id.
type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Upsert stores every photo, replacing earlier copies with the same id.
func (s *PhotoStore) Upsert(ctx context.Context, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back photo upsert", "error", err)
		}
	}()

	for i := range photos {
		data, err := json.Marshal(&photos[i])
		if err != nil {
			return fmt.Errorf("failed to encode photo %s: %w", photos[i].ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO photos (id, category, data, cached_at) VALUES (?, ?, ?, datetime('now'))
			ON CONFLICT(id) DO UPDATE SET
				category = excluded.category,
				data = excluded.data,
				cached_at = excluded.cached_at
		`, photos[i].ID, photos[i].Category, string(data))
		if err != nil {
			return fmt.Errorf("failed to upsert photo %s: %w", photos[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit photos: %w", err)
	}
	return nil
}

func (s *PhotoStore) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM photos WHERE id = ?
	`, id).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	photo := &domain.Photo{}
	if err := json.Unmarshal([]byte(data), photo); err != nil {
		return nil, fmt.Errorf("failed to decode photo %s: %w", id, err)
	}
	return photo, nil
}
