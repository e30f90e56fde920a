package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/raster"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() models.Image {
	return models.Image{
		ID: "img-1", Filename: "abc.jpg", OriginalName: "sunset.jpg",
		ThumbnailURL: models.ThumbnailURL("abc.jpg"), Width: 800, Height: 600,
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(), nil)
	w := do(r, http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(), nil)

	w := do(r, http.MethodPost, "/api/auth/login", `{"email":"admin@photogallery.com","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, validToken, resp.SessionID)
	assert.Contains(t, w.Body.String(), `"sessionId":"good-token"`)

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"admin@photogallery.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"admin@photogallery.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func validateToken(t *testing.T, r http.Handler, token string) bool {
	t.Helper()
	w := do(r, http.MethodGet, "/api/auth/validate", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var resp validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.IsValid
}

func TestValidate(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(), nil)

	assert.True(t, validateToken(t, r, validToken))
	assert.False(t, validateToken(t, r, "forged"))
	assert.False(t, validateToken(t, r, ""))

	w := do(r, http.MethodGet, "/api/auth/validate", "", "forged")
	assert.JSONEq(t, `{"isValid":false}`, w.Body.String())
}

func TestLogoutRevokesSession(t *testing.T) {
	r, auth := newTestRouter(newFakeImages(), nil)

	assert.True(t, validateToken(t, r, validToken))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/logout", "", validToken).Code)
	assert.False(t, validateToken(t, r, validToken))

	// repeated and anonymous logouts still succeed
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/logout", "", validToken).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/logout", "", "").Code)
	assert.Equal(t, []string{validToken, validToken}, auth.revoked)
}

func TestGatedRoutesRequireBearer(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(sample()), nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/images"},
		{http.MethodPost, "/api/images/upload"},
		{http.MethodDelete, "/api/images/img-1"},
	} {
		assert.Equal(t, http.StatusUnauthorized, do(r, tc.method, tc.path, "", "").Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, http.StatusUnauthorized, do(r, tc.method, tc.path, "", "forged").Code, "%s %s", tc.method, tc.path)
		w := do(r, tc.method, tc.path, "", "", "Authorization", validToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "token without Bearer prefix")
	}
}

func TestListAndGetImages(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(sample()), nil)

	w := do(r, http.MethodGet, "/api/images", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "/uploads/images/abc.jpg", list[0]["url"])
	assert.Equal(t, "/uploads/thumbnails/thumb_abc.jpg", list[0]["thumbnailUrl"])

	w = do(r, http.MethodGet, "/api/images/img-1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"originalName":"sunset.jpg"`)

	w = do(r, http.MethodGet, "/api/images/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errBody ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "image not found", errBody.Message)
}

func TestListImages_Query(t *testing.T) {
	images := newFakeImages(sample())
	r, _ := newTestRouter(images, nil)

	w := do(r, http.MethodGet, "/api/images?search=sun&sort=largest", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ImageQuery{Search: "sun", Sort: models.SortLargest}, images.listQuery)

	w = do(r, http.MethodGet, "/api/images?sort=random", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTwice(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(sample()), nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/images/img-1", "", validToken).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/images/img-1", "", validToken).Code)
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(r http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	images := newFakeImages()
	r, _ := newTestRouter(images, nil)

	for _, path := range []string{"/api/images", "/api/images/upload"} {
		body, ct := multipartBody(t, UploadField, map[string][]byte{"a.jpg": []byte("aaa"), "b.png": []byte("bb")})
		w := upload(r, path, body, ct)
		require.Equal(t, http.StatusCreated, w.Code, path)

		var out []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 2)
		assert.Len(t, images.uploads, 2)
	}
}

func TestUpload_Rejections(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(), nil)

	body, ct := multipartBody(t, UploadField, map[string][]byte{"big.jpg": bytes.Repeat([]byte{1}, 2048)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload(r, "/api/images", body, ct).Code)

	body, ct = multipartBody(t, UploadField, map[string][]byte{"1": {1}, "2": {2}, "3": {3}, "4": {4}})
	assert.Equal(t, http.StatusBadRequest, upload(r, "/api/images", body, ct).Code)

	body, ct = multipartBody(t, "other", map[string][]byte{"a.jpg": {1}})
	assert.Equal(t, http.StatusBadRequest, upload(r, "/api/images", body, ct).Code, "no files in the images field")

	assert.Equal(t, http.StatusBadRequest, upload(r, "/api/images", bytes.NewBufferString("{}"), "application/json").Code)
}

func TestUpload_BodyLimit(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(), nil)

	// larger than MaxFiles*MaxFileSize plus multipart slack
	body, ct := multipartBody(t, UploadField, map[string][]byte{"huge.jpg": bytes.Repeat([]byte{1}, 3*1024+multipartOverhead+1)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload(r, "/api/images", body, ct).Code)
}

func TestProcess(t *testing.T) {
	images := newFakeImages(sample())
	r, _ := newTestRouter(images, nil)

	w := do(r, http.MethodPost, "/api/images/img-1/process",
		`{"overlays":[{"id":"o1","text":"Hi","x":10,"y":20,"fontSize":24,"fontFamily":"Inter","color":"#fff","rotation":0}],"quality":"low","addWatermark":false}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="edited_sunset.jpg"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, w.Body.Bytes())

	assert.Equal(t, raster.QualityLow, images.processed.Quality)
	assert.False(t, images.processed.Watermark)
	require.Len(t, images.processed.Overlays, 1)
	assert.Equal(t, "Hi", images.processed.Overlays[0].Text)
}

func TestProcess_Defaults(t *testing.T) {
	images := newFakeImages(sample())
	r, _ := newTestRouter(images, nil)

	w := do(r, http.MethodPost, "/api/images/img-1/process", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, raster.QualityMedium, images.processed.Quality)
	assert.True(t, images.processed.Watermark)
}

func TestProcess_Errors(t *testing.T) {
	r, _ := newTestRouter(newFakeImages(sample()), nil)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/images/img-1/process", `{"quality":"ultra"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/images/img-1/process", `{"overlays":`, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/images/nope/process", `{}`, "").Code)
}

func TestServeUpload_Local(t *testing.T) {
	jpegMagic := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	store := &memStore{files: map[string][]byte{"thumbnails/thumb_abc.jpg": jpegMagic}}
	r, _ := newTestRouter(newFakeImages(), store)

	w := do(r, http.MethodGet, "/uploads/thumbnails/thumb_abc.jpg", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, jpegMagic, w.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/uploads/images/missing.jpg", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/uploads/secrets/abc.jpg", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/uploads/images/..", "", "").Code)
}

func TestServeUpload_PresignRedirect(t *testing.T) {
	store := &presignStore{memStore: memStore{files: map[string][]byte{}}}
	r, _ := newTestRouter(newFakeImages(), store)

	w := do(r, http.MethodGet, "/uploads/images/abc.jpg", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://bucket.example/images/abc.jpg?sig=1", w.Header().Get("Location"))
	assert.Equal(t, 15*time.Minute, store.ttl)
}

func TestPanicBecomes500(t *testing.T) {
	images := newFakeImages()
	images.panicOn = "explode"
	r, _ := newTestRouter(images, nil)

	w := do(r, http.MethodGet, "/api/images/explode", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
