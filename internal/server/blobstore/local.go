package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/filex"
)

// LocalStore keeps files under root/images and root/thumbnails.
type LocalStore struct {
	root string
}

// NewLocalStore creates the directory layout under root.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	for _, k := range []Kind{KindImages, KindThumbnails} {
		if _, err := filex.EnsureDir(filepath.Join(abs, string(k))); err != nil {
			return nil, err
		}
	}
	return &LocalStore{root: abs}, nil
}

// Root is the absolute base directory.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(kind Kind, name string) (string, error) {
	if err := checkName(kind, name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(kind), name), nil
}

func (s *LocalStore) Put(ctx context.Context, kind Kind, name string, data []byte, _ string) error {
	p, err := s.path(kind, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return filex.WriteFileAtomic(p, data, 0o644)
}

func (s *LocalStore) Get(ctx context.Context, kind Kind, name string) ([]byte, error) {
	p, err := s.path(kind, name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key(kind, name), err)
	}
	return b, nil
}

func (s *LocalStore) Delete(ctx context.Context, kind Kind, name string) error {
	p, err := s.path(kind, name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", key(kind, name), err)
	}
	return nil
}
