package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/client/api"
	"github.com/dmitrijs2005/photogallery/internal/client/config"
	"github.com/dmitrijs2005/photogallery/internal/client/localdb"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/exports"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/netx"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@photogallery.com"
	testPassword = "admin123"
	testImageID  = "0b6f1c3e-2d4a-4a8e-9a51-6b2f7c9d1e00"
)

type fakeAPI struct {
	token       string
	valid       bool
	validateErr error
	images      map[string]models.ImageView
	blobs       map[string][]byte
	uploaded    []api.File
	deleted     []string
	processReq  api.ProcessRequest
	processed   *api.Processed
	listQuery   api.ListQuery
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.Session, error) {
	if email != testEmail || password != testPassword {
		return nil, &netx.StatusError{StatusCode: 401, Message: "invalid credentials"}
	}
	f.token, f.valid = "tok", true
	return &api.Session{Token: "tok", ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.token, f.valid = "", false
	return nil
}

func (f *fakeAPI) Validate(ctx context.Context) (bool, error) { return f.valid, f.validateErr }

func (f *fakeAPI) List(ctx context.Context, q api.ListQuery) ([]models.ImageView, error) {
	f.listQuery = q
	out := make([]models.ImageView, 0, len(f.images))
	for _, img := range f.images {
		out = append(out, img)
	}
	return out, nil
}

func (f *fakeAPI) Get(ctx context.Context, id string) (*models.ImageView, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, &netx.StatusError{StatusCode: 404, Message: "image not found"}
	}
	return &img, nil
}

func (f *fakeAPI) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, ok := f.blobs[path]
	if !ok {
		return nil, &netx.StatusError{StatusCode: 404}
	}
	return data, nil
}

func (f *fakeAPI) Upload(ctx context.Context, files []api.File) ([]models.ImageView, error) {
	f.uploaded = append(f.uploaded, files...)
	out := make([]models.ImageView, 0, len(files))
	for _, file := range files {
		out = append(out, models.Image{ID: "new-" + file.Name, OriginalName: file.Name, FileSize: int64(len(file.Data))}.View())
	}
	return out, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) Process(ctx context.Context, id string, pr api.ProcessRequest) (*api.Processed, error) {
	f.processReq = pr
	if f.processed == nil {
		return nil, errors.New("no render")
	}
	return f.processed, nil
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) Token() string         { return f.token }

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

type testEnv struct {
	app   *App
	api   *fakeAPI
	repos *localdb.Repositories
	out   *bytes.Buffer
	cfg   *config.Config
}

func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	repos, err := localdb.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.OutputDir = filepath.Join(t.TempDir(), "exports")

	img := models.Image{ID: testImageID, Filename: testImageID + ".jpg", OriginalName: "cat.png", Width: 1600, Height: 1200}
	view := img.View()
	fake := &fakeAPI{
		images: map[string]models.ImageView{testImageID: view},
		blobs:  map[string][]byte{view.URL: jpegBytes(t, 1600, 1200)},
	}

	out := &bytes.Buffer{}
	a := newApp(cfg, fake, repos.Metadata, repos.Exports, logging.New(io.Discard, "error"), strings.NewReader(input), out)
	return &testEnv{app: a, api: fake, repos: repos, out: out, cfg: cfg}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func TestLogin_PersistsAndRestores(t *testing.T) {
	stubPassword(t, testPassword)
	env := newTestEnv(t, testEmail+"\n")
	ctx := context.Background()

	require.NoError(t, env.app.Login(ctx))
	assert.True(t, env.app.isLoggedIn())
	assert.Equal(t, "admin", env.app.getStatus())

	token, ok, err := env.repos.Metadata.Get(ctx, metadata.KeySessionToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	// A new process with the same state file resumes the session.
	fresh := &fakeAPI{valid: true}
	b := newApp(env.cfg, fresh, env.repos.Metadata, env.repos.Exports, logging.New(io.Discard, "error"), strings.NewReader(""), &bytes.Buffer{})
	b.restoreSession(ctx)
	assert.Equal(t, "tok", fresh.Token())
}

func TestLogin_Failures(t *testing.T) {
	stubPassword(t, "wrong")

	env := newTestEnv(t, "\n")
	assert.ErrorContains(t, env.app.Login(context.Background()), "email")

	env = newTestEnv(t, testEmail+"\n")
	err := env.app.Login(context.Background())
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, env.app.isLoggedIn())
}

func TestRestoreSession_DiscardsStaleTokens(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name   string
		end    string
		server string
		valid  bool
	}{
		{name: "expired", end: past, server: "http://localhost:5000", valid: true},
		{name: "other server", end: future, server: "http://elsewhere:5000", valid: true},
		{name: "revoked", end: future, server: "http://localhost:5000", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.api.valid = tt.valid
			require.NoError(t, env.repos.Metadata.Set(ctx, metadata.KeySessionToken, "old"))
			require.NoError(t, env.repos.Metadata.Set(ctx, metadata.KeySessionEnd, tt.end))
			require.NoError(t, env.repos.Metadata.Set(ctx, metadata.KeyServerURL, tt.server))

			env.app.restoreSession(ctx)

			assert.False(t, env.app.isLoggedIn())
			_, ok, err := env.repos.Metadata.Get(ctx, metadata.KeySessionToken)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRestoreSession_ServerUnreachableKeepsToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	env.api.validateErr = errors.New("connection refused")
	require.NoError(t, env.app.saveSession(ctx, "tok", time.Now().Add(time.Hour)))

	env.app.restoreSession(ctx)
	assert.True(t, env.app.isLoggedIn())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	assert.ErrorIs(t, env.app.Logout(ctx), errNotLoggedIn)

	require.NoError(t, env.app.saveSession(ctx, "tok", time.Now().Add(time.Hour)))
	env.api.SetToken("tok")

	require.NoError(t, env.app.Logout(ctx))
	assert.False(t, env.app.isLoggedIn())
	_, ok, err := env.repos.Metadata.Get(ctx, metadata.KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEditingCommands_RequireOpenImage(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	assert.ErrorIs(t, env.app.Add(ctx), errNoImage)
	assert.ErrorIs(t, env.app.Set(ctx, []string{"x", "1"}), errNoImage)
	assert.ErrorIs(t, env.app.Undo(ctx), errNoImage)
	assert.ErrorIs(t, env.app.Show(ctx), errNoImage)
	assert.ErrorIs(t, env.app.Export(ctx, nil), errNoImage)
	assert.ErrorIs(t, env.app.ExportServer(ctx, nil), errNoImage)
}

func TestOpenAndEdit(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	assert.Error(t, env.app.Open(ctx, nil))
	assert.True(t, api.IsNotFound(env.app.Open(ctx, []string{"missing"})))

	require.NoError(t, env.app.Open(ctx, []string{testImageID}))
	s := env.app.session
	require.NotNil(t, s)
	assert.Equal(t, 800.0, s.display.Width)
	assert.Equal(t, 600.0, s.display.Height)
	assert.Contains(t, env.out.String(), "editing at 800x600")

	assert.ErrorIs(t, env.app.Set(ctx, []string{"text", "x"}), errNoSelection)
	assert.ErrorIs(t, env.app.Duplicate(ctx), errNoSelection)
	assert.ErrorIs(t, env.app.Remove(ctx), errNoSelection)

	require.NoError(t, env.app.Add(ctx))
	require.NoError(t, env.app.Set(ctx, []string{"text", "Hello", "there"}))
	require.NoError(t, env.app.Set(ctx, []string{"size", "100"}))
	require.NoError(t, env.app.Set(ctx, []string{"rotation", "-500"}))
	require.NoError(t, env.app.Set(ctx, []string{"color", "F00"}))
	assert.Error(t, env.app.Set(ctx, []string{"size", "huge"}))
	assert.Error(t, env.app.Set(ctx, []string{"opacity", "1"}))

	o := s.editor.Overlays()[0]
	assert.Equal(t, "Hello there", o.Text)
	assert.Equal(t, 72.0, o.FontSize)
	assert.Equal(t, -180.0, o.Rotation)
	assert.Equal(t, "#ff0000", o.Color)

	require.NoError(t, env.app.Duplicate(ctx))
	overlays := s.editor.Overlays()
	require.Len(t, overlays, 2)
	assert.Equal(t, o.X+20, overlays[1].X)
	assert.Equal(t, o.Y+20, overlays[1].Y)

	require.NoError(t, env.app.Select(ctx, []string{"1"}))
	sel, _ := s.editor.Selected()
	assert.Equal(t, overlays[0].ID, sel)

	require.NoError(t, env.app.Remove(ctx))
	assert.Len(t, s.editor.Overlays(), 1)
	_, ok := s.editor.Selected()
	assert.False(t, ok)

	require.NoError(t, env.app.Undo(ctx))
	assert.Len(t, s.editor.Overlays(), 2)
	require.NoError(t, env.app.Redo(ctx))
	assert.Len(t, s.editor.Overlays(), 1)
	require.NoError(t, env.app.Redo(ctx))
	assert.Contains(t, env.out.String(), "Nothing to redo")

	env.out.Reset()
	require.NoError(t, env.app.Show(ctx))
	assert.Contains(t, env.out.String(), `"Hello there"`)
	assert.Contains(t, env.out.String(), "cat.png")
	assert.Contains(t, env.app.getStatus(), "guest 0b6f1c3e*")
}

func TestExport_Local(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.app.Open(ctx, []string{testImageID}))
	require.NoError(t, env.app.Add(ctx))

	assert.Error(t, env.app.Export(ctx, []string{"ultra"}))
	require.NoError(t, env.app.Export(ctx, []string{"HIGH"}))

	path := filepath.Join(env.cfg.OutputDir, "edited_image_"+testImageID+".jpg")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, 1200, cfg.Height)

	recent, err := env.repos.Exports.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, exports.SourceLocal, recent[0].Source)
	assert.Equal(t, "high", recent[0].Quality)
	assert.Equal(t, 1, recent[0].Overlays)
	assert.Equal(t, path, recent[0].Path)

	env.out.Reset()
	require.NoError(t, env.app.Exports(ctx))
	assert.Contains(t, env.out.String(), "local")
}

func TestExport_Server(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.app.Open(ctx, []string{testImageID}))
	require.NoError(t, env.app.Add(ctx))

	env.api.processed = &api.Processed{Data: []byte("rendered"), Filename: "../edited_cat.png"}
	require.NoError(t, env.app.ExportServer(ctx, nil))

	req := env.api.processReq
	assert.Equal(t, "medium", req.Quality)
	require.NotNil(t, req.AddWatermark)
	assert.True(t, *req.AddWatermark)
	assert.Equal(t, 800.0, *req.DisplayWidth)
	assert.Equal(t, 600.0, *req.DisplayHeight)
	assert.Len(t, req.Overlays, 1)

	data, err := os.ReadFile(filepath.Join(env.cfg.OutputDir, "edited_cat.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), data)

	env.api.processed = &api.Processed{Data: []byte("x")}
	require.NoError(t, env.app.ExportServer(ctx, []string{"low"}))
	_, err = os.Stat(filepath.Join(env.cfg.OutputDir, "edited_image_"+testImageID+".jpg"))
	assert.NoError(t, err)

	recent, err := env.repos.Exports.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	for _, e := range recent {
		assert.Equal(t, exports.SourceServer, e.Source)
	}
}

func TestList_SearchAndSort(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	require.NoError(t, env.app.List(ctx, []string{"sort=Largest", "black", "cat"}))
	assert.Equal(t, api.ListQuery{Search: "black cat", Sort: "largest"}, env.api.listQuery)

	err := env.app.List(ctx, []string{"sort=random"})
	assert.ErrorContains(t, err, "newest, oldest, largest, smallest, name")

	q, err := parseListArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, api.ListQuery{}, q)
}

func TestListAndUpload(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	require.NoError(t, env.app.List(ctx, nil))
	assert.Contains(t, env.out.String(), testImageID)
	assert.Contains(t, env.out.String(), "1600x1200")

	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(a, []byte("aaaa"), 0o600))

	assert.ErrorIs(t, env.app.Upload(ctx, []string{a}), errNotLoggedIn)

	env.api.SetToken("tok")
	assert.Error(t, env.app.Upload(ctx, nil))
	assert.Error(t, env.app.Upload(ctx, []string{filepath.Join(dir, "missing.jpg")}))
	assert.Empty(t, env.api.uploaded)

	require.NoError(t, env.app.Upload(ctx, []string{a}))
	require.Len(t, env.api.uploaded, 1)
	assert.Equal(t, "a.jpg", env.api.uploaded[0].Name)
	assert.Contains(t, env.out.String(), "Uploaded a.jpg")
}

func TestDelete_ConfirmsAndClosesSession(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, "n\n")
	env.api.SetToken("tok")
	require.NoError(t, env.app.Delete(ctx, []string{testImageID}))
	assert.Empty(t, env.api.deleted)
	assert.Contains(t, env.out.String(), "Cancelled")

	env = newTestEnv(t, "y\n")
	env.api.SetToken("tok")
	require.NoError(t, env.app.Open(ctx, []string{testImageID}))
	require.NoError(t, env.app.Delete(ctx, []string{testImageID}))
	assert.Equal(t, []string{testImageID}, env.api.deleted)
	assert.Nil(t, env.app.session)
}

func TestBuildPatch(t *testing.T) {
	p, err := buildPatch("font", []string{"Times", "New", "Roman"})
	require.NoError(t, err)
	assert.Equal(t, "Times New Roman", *p.FontFamily)

	_, err = buildPatch("font", []string{"Comic", "Sans"})
	assert.Error(t, err)

	p, err = buildPatch("size", []string{"4"})
	require.NoError(t, err)
	assert.Equal(t, 12.0, *p.FontSize)

	p, err = buildPatch("rotation", []string{"270"})
	require.NoError(t, err)
	assert.Equal(t, 180.0, *p.Rotation)

	p, err = buildPatch("x", []string{"-15.5"})
	require.NoError(t, err)
	assert.Equal(t, -15.5, *p.X)

	_, err = buildPatch("y", []string{"NaN"})
	assert.Error(t, err)

	_, err = buildPatch("color", []string{"blue"})
	assert.Error(t, err)
}

func TestResolveOverlay(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.app.Open(ctx, []string{testImageID}))
	require.NoError(t, env.app.Add(ctx))
	require.NoError(t, env.app.Add(ctx))
	overlays := env.app.session.editor.Overlays()

	id, err := resolveOverlay(overlays, overlays[1].ID)
	require.NoError(t, err)
	assert.Equal(t, overlays[1].ID, id)

	id, err = resolveOverlay(overlays, overlays[0].ID[:12])
	require.NoError(t, err)
	assert.Equal(t, overlays[0].ID, id)

	_, err = resolveOverlay(overlays, "3")
	assert.Error(t, err)
	_, err = resolveOverlay(overlays, "zzzz")
	assert.Error(t, err)
	_, err = resolveOverlay(overlays, "")
	assert.ErrorContains(t, err, "ambiguous")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KiB", humanSize(1536))
	assert.Equal(t, "10 MiB", humanSize(10<<20))
	assert.Equal(t, "0 B", humanSize(-1))
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))

	out := renderTable([]string{"ID", "SIZE"}, [][]string{{"a", "1 B"}, {"b"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "1 B")
	assert.Equal(t, 6, strings.Count(out, "\n")+1)
}

func TestExec_RunsOneCommandWithSavedSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	env.api.valid = true
	require.NoError(t, env.app.saveSession(ctx, "tok", time.Now().Add(time.Hour)))

	dir := t.TempDir()
	path := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(path, []byte("bbb"), 0o600))

	closed := false
	env.app.closeFn = func() error { closed = true; return nil }

	require.NoError(t, env.app.Exec(ctx, "upload", path))
	assert.Len(t, env.api.uploaded, 1)
	assert.True(t, closed)
}
