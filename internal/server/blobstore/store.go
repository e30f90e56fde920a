// Package blobstore persists stored image and thumbnail files, either in a
// local directory tree or in an S3-compatible bucket.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/filex"
)

// Kind selects one of the two sibling file collections.
type Kind string

const (
	KindImages     Kind = "images"
	KindThumbnails Kind = "thumbnails"
)

// ParseKind maps a URL path segment to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImages, KindThumbnails:
		return Kind(s), true
	}
	return "", false
}

// Store reads and writes named files within a Kind. Get and Delete return
// common.ErrorNotFound for missing files.
type Store interface {
	Put(ctx context.Context, kind Kind, name string, data []byte, contentType string) error
	Get(ctx context.Context, kind Kind, name string) ([]byte, error)
	Delete(ctx context.Context, kind Kind, name string) error
}

// Presigner is implemented by stores that can hand out direct download
// URLs.
type Presigner interface {
	PresignGet(ctx context.Context, kind Kind, name string, ttl time.Duration) (string, error)
}

func checkName(kind Kind, name string) error {
	if _, ok := ParseKind(string(kind)); !ok {
		return fmt.Errorf("unknown blob kind %q", kind)
	}
	if !filex.IsPlainName(name) {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}

func key(kind Kind, name string) string {
	return string(kind) + "/" + name
}
