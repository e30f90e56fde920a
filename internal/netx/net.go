// Package netx holds small HTTP helpers shared by the client.
package netx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusError is a non-2xx response. Message comes from the server's JSON
// error body when there is one, otherwise from the raw body.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// ReadError turns an unsuccessful response into a *StatusError. The body is
// consumed but not closed.
func ReadError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	se := &StatusError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &body); err == nil && (body.Error != "" || body.Message != "") {
		se.Code = body.Error
		se.Message = body.Message
		if se.Message == "" {
			se.Message = body.Error
		}
		return se
	}
	se.Message = strings.TrimSpace(string(raw))
	return se
}

// Success reports whether code is 2xx.
func Success(code int) bool {
	return code >= 200 && code < 300
}

// Download fetches url with client, following redirects, and returns the
// body. Non-2xx responses are returned as *StatusError.
func Download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !Success(resp.StatusCode) {
		return nil, ReadError(resp)
	}
	return io.ReadAll(resp.Body)
}
