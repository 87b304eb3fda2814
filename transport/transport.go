// Package transport is the demuxer's external collaborator for moving
// bytes over HTTP: manifest, bootstrap, and fragment downloads all go
// through a Client, never through net/http directly from package hds.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Client opens a URL and returns a Response. Implementations decide
// their own timeout, redirect, and connection-reuse policy; the only
// contract the demuxer relies on is Open returning an error for any
// non-2xx response.
type Client interface {
	Open(ctx context.Context, url, cookies string) (Response, error)
}

// Response is an opened HTTP resource: its body, its size (when known),
// and any Set-Cookie the server sent back for propagation to subsequent
// requests against the same rendition.
type Response interface {
	// Size returns the response's declared length, or -1 if unknown.
	Size() int64
	// ReadAll reads the entire body into memory; no size limit is
	// applied.
	ReadAll() ([]byte, error)
	// Cookies returns the Set-Cookie header value(s) joined with "; ",
	// or "" if the server set none.
	Cookies() string
	Close() error
}

// HTTPClient is the real Client, backed by net/http.
type HTTPClient struct {
	// HTTP is the underlying client. If nil, http.DefaultClient is used.
	HTTP *http.Client

	// UserAgent is sent with every request, if non-empty.
	UserAgent string
}

var _ Client = (*HTTPClient)(nil)

// Open issues a GET request for url. A non-empty cookies string is sent
// verbatim as the Cookie header.
func (c *HTTPClient) Open(ctx context.Context, url, cookies string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: building request: %w", err)
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("transport: unexpected status %s for %s", resp.Status, url)
	}

	return &httpResponse{resp: resp}, nil
}

type httpResponse struct {
	resp *http.Response
	body []byte
	read bool
}

func (r *httpResponse) Size() int64 {
	return r.resp.ContentLength
}

func (r *httpResponse) ReadAll() ([]byte, error) {
	if r.read {
		return r.body, nil
	}
	b, err := io.ReadAll(r.resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: reading body: %w", err)
	}
	r.body = b
	r.read = true
	return b, nil
}

func (r *httpResponse) Cookies() string {
	cookies := r.resp.Header.Values("Set-Cookie")
	if len(cookies) == 0 {
		return ""
	}
	joined := cookies[0]
	for _, c := range cookies[1:] {
		joined += "; " + c
	}
	return joined
}

func (r *httpResponse) Close() error {
	return r.resp.Body.Close()
}
