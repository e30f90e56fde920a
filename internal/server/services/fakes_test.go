package services

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/blobstore"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/images"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/sessions"
	"github.com/stretchr/testify/require"
)

// --- repositories ---

type fakeImagesRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Image
	createErr error
	deleteErr error
	listErr   error
	lastQuery models.ImageQuery
	clock     time.Time
}

func newFakeImagesRepo() *fakeImagesRepo {
	return &fakeImagesRepo{rows: map[string]models.Image{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeImagesRepo) List(ctx context.Context, q models.ImageQuery) ([]models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Image, 0, len(f.rows))
	for _, r := range f.rows {
		if strings.Contains(strings.ToLower(r.OriginalName), strings.ToLower(q.Search)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeImagesRepo) Get(ctx context.Context, id string) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.clock = f.clock.Add(time.Second)
	img.UploadedAt = f.clock
	f.rows[img.ID] = *img
	return nil
}

func (f *fakeImagesRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeImagesRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeSessionsRepo struct {
	mu      sync.Mutex
	rows    map[string]models.AdminSession
	findErr error
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{rows: map[string]models.AdminSession{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s models.AdminSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.AdminSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.rows {
		if s.Expired(now) {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionsRepo) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok
}

func (f *fakeSessionsRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRepoManager struct {
	images   *fakeImagesRepo
	sessions *fakeSessionsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{images: newFakeImagesRepo(), sessions: newFakeSessionsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository          { return m.images }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository      { return m.sessions }

// --- blob store ---

type memStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	putErr    error
	deleteErr error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Put(ctx context.Context, kind blobstore.Kind, name string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.files[string(kind)+"/"+name] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, kind blobstore.Kind, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[string(kind)+"/"+name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memStore) Delete(ctx context.Context, kind blobstore.Kind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	k := string(kind) + "/" + name
	if _, ok := m.files[k]; !ok {
		return common.ErrorNotFound
	}
	delete(m.files, k)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// --- helpers ---

func testLogger() logging.Logger { return logging.New(io.Discard, "debug") }

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 120, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(w, h)))
	return buf.Bytes()
}

func dims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}
