package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/google/uuid"
)

const imageColumns = `id, filename, original_name, mime_type, file_size, width, height, thumbnail_url, uploaded_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository binds a repository to db (a *sql.DB or *sql.Tx).
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var orderClauses = map[models.SortOrder]string{
	models.SortNewest:   "uploaded_at DESC, id",
	models.SortOldest:   "uploaded_at ASC, id",
	models.SortLargest:  "file_size DESC, id",
	models.SortSmallest: "file_size ASC, id",
	models.SortName:     "lower(original_name) ASC, id",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(s scanner) (*models.Image, error) {
	var (
		img   models.Image
		thumb sql.NullString
	)
	if err := s.Scan(&img.ID, &img.Filename, &img.OriginalName, &img.MimeType,
		&img.FileSize, &img.Width, &img.Height, &thumb, &img.UploadedAt); err != nil {
		return nil, err
	}
	img.ThumbnailURL = thumb.String
	return &img, nil
}

func (r *PostgresRepository) List(ctx context.Context, q models.ImageQuery) ([]models.Image, error) {
	order, ok := orderClauses[q.Sort]
	if !ok {
		order = orderClauses[models.SortNewest]
	}
	query := `SELECT ` + imageColumns + `
		FROM images
		WHERE $1 = '' OR strpos(lower(original_name), lower($1)) > 0
		ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, query, q.Search)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + `
		FROM images
		WHERE id = $1`

	img, err := scanImage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}

	query := `
		INSERT INTO images (id, filename, original_name, mime_type, file_size, width, height, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING uploaded_at`

	var thumb sql.NullString
	if img.ThumbnailURL != "" {
		thumb = sql.NullString{String: img.ThumbnailURL, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, img.ID, img.Filename, img.OriginalName, img.MimeType,
		img.FileSize, img.Width, img.Height, thumb).Scan(&img.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM images WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
