package ports

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealHTTPClient_RetriesOnlyIdempotentMethods(t *testing.T) {
	tests := []struct {
		method string
		calls  int
	}{
		{http.MethodGet, 3},
		{http.MethodPut, 3},
		{http.MethodDelete, 3},
		{http.MethodPost, 1},
		{http.MethodPatch, 1},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var (
				mu    sync.Mutex
				calls int
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				calls++
				mu.Unlock()

				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			}))
			defer srv.Close()

			client := NewRealHTTPClient(HTTPClientConfig{Timeout: 100 * time.Millisecond, MaxRetries: 2})
			req, err := http.NewRequest(tt.method, srv.URL, strings.NewReader(`{"title":"x"}`))
			require.NoError(t, err)

			_, err = client.Do(req)
			assert.Error(t, err)

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestRealHTTPClient_SetsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "slidedeck/test", r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	client := NewRealHTTPClient(HTTPClientConfig{UserAgent: "slidedeck/test"})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
}
