package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientOpenReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "sid=abc123")
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	c := &HTTPClient{}
	resp, err := c.Open(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer resp.Close()

	data, err := resp.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
	require.Equal(t, "sid=abc123", resp.Cookies())
}

func TestHTTPClientOpenRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &HTTPClient{}
	_, err := c.Open(context.Background(), srv.URL, "")
	require.Error(t, err)
}

func TestHTTPClientSendsCookieHeader(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	c := &HTTPClient{}
	resp, err := c.Open(context.Background(), srv.URL, "sid=xyz")
	require.NoError(t, err)
	resp.Close()
	require.Equal(t, "sid=xyz", gotCookie)
}
