// Package exports records the images the client has written to disk.
package exports

import (
	"context"
	"time"
)

// Sources of an export.
const (
	SourceLocal  = "local"
	SourceServer = "server"
)

// Export is one finished download.
type Export struct {
	ID        int64
	ImageID   string
	Path      string
	Quality   string
	Source    string
	Overlays  int
	CreatedAt time.Time
}

type Repository interface {
	Record(ctx context.Context, e *Export) error
	// Recent returns up to limit exports, newest first.
	Recent(ctx context.Context, limit int) ([]Export, error)
}
