package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts e and fills in its ID. A zero CreatedAt is set to now.
func (r *SQLiteRepository) Record(ctx context.Context, e *Export) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO exports (image_id, path, quality, source, overlays, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ImageID, e.Path, e.Quality, e.Source, e.Overlays, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read export id: %w", err)
	}
	e.ID = id
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Export, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, image_id, path, quality, source, overlays, created_at
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	result := make([]Export, 0)
	for rows.Next() {
		var e Export
		var created int64
		if err := rows.Scan(&e.ID, &e.ImageID, &e.Path, &e.Quality, &e.Source, &e.Overlays, &created); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export rows: %w", err)
	}
	return result, nil
}
