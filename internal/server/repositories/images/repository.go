// Package images declares the repository contract for gallery image records.
package images

import (
	"context"

	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// Repository stores Image records.
type Repository interface {
	// List returns the images matching q in q.Sort order. An unknown order
	// falls back to newest first.
	List(ctx context.Context, q models.ImageQuery) ([]models.Image, error)

	// Get returns the image with the given id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Image, error)

	// Create inserts img. A missing ID is generated; ID and UploadedAt are
	// written back into img.
	Create(ctx context.Context, img *models.Image) error

	// Delete removes the record, returning common.ErrorNotFound if there was
	// none.
	Delete(ctx context.Context, id string) error
}
