// Package sessions declares the repository contract for admin sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// Repository stores AdminSession rows.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, s models.AdminSession) error

	// Find returns the session with the given id or common.ErrorNotFound.
	Find(ctx context.Context, id string) (*models.AdminSession, error)

	// Delete removes a session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
