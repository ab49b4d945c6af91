package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirecrawlExtract(t *testing.T) {
	var got scrapeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"data":{"markdown":"# Go generics\n\nBody text.","metadata":{"title":"Go generics"}}}`))
	}))
	defer srv.Close()

	c := NewFirecrawlClient(srv.URL, "fc-key", 5*time.Second)
	text, err := c.Extract(context.Background(), "https://example.com/post")
	require.NoError(t, err)

	assert.Equal(t, "# Go generics\n\nBody text.", text)
	assert.Equal(t, "https://example.com/post", got.URL)
	assert.Equal(t, []string{"markdown"}, got.Formats)
	assert.True(t, got.OnlyMainContent)
}

func TestFirecrawlErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Invalid token"}`, wantErr: "status 401"},
		{name: "not successful", status: http.StatusOK, body: `{"success":false,"error":"blocked by robots.txt"}`, wantErr: "blocked by robots.txt"},
		{name: "empty markdown", status: http.StatusOK, body: `{"success":true,"data":{"markdown":"  "}}`, wantErr: ErrNoContent.Error()},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewFirecrawlClient(srv.URL, "k", 0).Extract(context.Background(), "https://example.com/post")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFirecrawlDefaultURL(t *testing.T) {
	c := NewFirecrawlClient("", "k", 0)
	assert.Equal(t, DefaultFirecrawlURL, c.baseURL)
}
