// Package api is the HTTP client for the gallery server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/netx"
	"github.com/dmitrijs2005/photogallery/internal/overlay"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// UploadField is the multipart field the server reads files from.
const UploadField = "images"

// Session is a successful login.
type Session struct {
	Token     string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ListQuery narrows a gallery listing. Zero values mean all images, newest
// first.
type ListQuery struct {
	Search string
	Sort   string
}

// File is one upload part.
type File struct {
	Name string
	Data []byte
}

// ProcessRequest is the body of the server-side export.
type ProcessRequest struct {
	Overlays      []overlay.TextOverlay `json:"overlays"`
	Quality       string                `json:"quality,omitempty"`
	AddWatermark  *bool                 `json:"addWatermark,omitempty"`
	DisplayWidth  *float64              `json:"displayWidth,omitempty"`
	DisplayHeight *float64              `json:"displayHeight,omitempty"`
}

// Processed is a rendered download.
type Processed struct {
	Data     []byte
	Filename string
}

// Client talks to one gallery server. It is safe for concurrent use once the
// token is set.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

func New(serverURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q is not absolute", serverURL)
	}
	return &Client{base: base, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *netx.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *netx.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &s); err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

// Logout revokes the current token. The local token is dropped even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Validate reports whether the current token is still accepted.
func (c *Client) Validate(ctx context.Context) (bool, error) {
	if c.token == "" {
		return false, nil
	}
	var resp struct {
		IsValid bool `json:"isValid"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/validate", nil, &resp); err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

func (c *Client) List(ctx context.Context, q ListQuery) ([]models.ImageView, error) {
	path := "/api/images"
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	images := make([]models.ImageView, 0)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.ImageView, error) {
	var img models.ImageView
	if err := c.doJSON(ctx, http.MethodGet, "/api/images/"+url.PathEscape(id), nil, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// Fetch downloads a server-relative path such as an image URL. Redirects to
// presigned storage URLs are followed.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	return netx.Download(ctx, c.http, c.resolve(path))
}

func (c *Client) Upload(ctx context.Context, files []File) ([]models.ImageView, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(UploadField, f.Name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/images", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	images := make([]models.ImageView, 0, len(files))
	if err := c.do(req, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/images/"+url.PathEscape(id), nil, nil)
}

// Process asks the server to render a download of image id.
func (c *Client) Process(ctx context.Context, id string, pr ProcessRequest) (*Processed, error) {
	payload, err := json.Marshal(pr)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/images/"+url.PathEscape(id)+"/process", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !netx.Success(resp.StatusCode) {
		return nil, netx.ReadError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read processed image: %w", err)
	}

	out := &Processed{Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		out.Filename = params["filename"]
	}
	return out, nil
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		return path
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !netx.Success(resp.StatusCode) {
		return netx.ReadError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
