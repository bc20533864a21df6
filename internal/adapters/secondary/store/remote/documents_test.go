package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *DocumentStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewDocumentStore(Config{BaseURL: srv.URL + "/", Logger: zerolog.Nop()})
	require.NoError(t, err)
	return store
}

func TestNewDocumentStore_RejectsBadURL(t *testing.T) {
	_, err := NewDocumentStore(Config{BaseURL: "ftp://example.com", Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestDocumentStore_Create(t *testing.T) {
	var (
		mu       sync.Mutex
		received entities.DocumentPayload
	)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/slides", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Location", "/api/slides/17")
		w.WriteHeader(http.StatusCreated)
	})

	id, err := store.Create(context.Background(), entities.DocumentPayload{
		Title:       "Talk",
		Content:     "# Hi",
		AccessLevel: entities.AccessPrivate,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, entities.DocumentID(17), id)
	assert.Equal(t, "Talk", received.Title)
	assert.Equal(t, "# Hi", received.Content)
	assert.Equal(t, entities.AccessPrivate, received.AccessLevel)
}

func TestDocumentStore_CreateWithoutLocation(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := store.Create(context.Background(), entities.DocumentPayload{Title: "x"})
	assert.ErrorIs(t, err, entities.ErrNetwork)
}

// newRetryingStore uses a client that retries and gives up on slow responses
func newRetryingStore(t *testing.T, handler http.HandlerFunc) *DocumentStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewDocumentStore(Config{
		BaseURL: srv.URL,
		Client:  ports.NewRealHTTPClient(ports.HTTPClientConfig{Timeout: 100 * time.Millisecond, MaxRetries: 2}),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return store
}

// stall holds the first request until the client has given up on it
func stall(r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(time.Second):
	}
}

func TestDocumentStore_CreateIsNeverResent(t *testing.T) {
	var (
		mu    sync.Mutex
		posts int
	)
	store := newRetryingStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		posts++
		n := posts
		mu.Unlock()

		if n == 1 {
			stall(r)
		}
		w.Header().Set("Location", fmt.Sprintf("/api/slides/%d", n))
		w.WriteHeader(http.StatusCreated)
	})

	_, err := store.Create(context.Background(), entities.DocumentPayload{Title: "Talk", Content: "# Hi"})
	assert.ErrorIs(t, err, entities.ErrNetwork)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, posts)
}

func TestDocumentStore_CloneIsNeverResent(t *testing.T) {
	var (
		mu     sync.Mutex
		clones int
	)
	store := newRetryingStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		clones++
		mu.Unlock()

		stall(r)
		w.WriteHeader(http.StatusCreated)
	})

	_, err := store.Clone(context.Background(), 3)
	assert.ErrorIs(t, err, entities.ErrNetwork)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, clones)
}

func TestDocumentStore_GetIsRetried(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	store := newRetryingStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			stall(r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"title": "Deck", "content": "# A", "accessLevel": "PRIVATE"})
	})

	doc, err := store.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Deck", doc.Title)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestDocumentStore_Get(t *testing.T) {
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/slides/5", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":       "Deck",
			"content":     "---\ntitle: Deck\n---\n# A",
			"accessLevel": "PUBLIC",
			"updatedAt":   updated,
		})
	})

	doc, err := store.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, entities.DocumentID(5), doc.ID)
	assert.Equal(t, "Deck", doc.Title)
	assert.Equal(t, entities.AccessPublic, doc.AccessLevel)
	assert.True(t, updated.Equal(doc.UpdatedAt))
}

func TestDocumentStore_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, entities.ErrNotFound},
		{http.StatusBadRequest, entities.ErrValidation},
		{http.StatusUnprocessableEntity, entities.ErrValidation},
		{http.StatusRequestEntityTooLarge, entities.ErrPayloadTooLarge},
		{http.StatusInternalServerError, entities.ErrNetwork},
		{http.StatusBadGateway, entities.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := store.Get(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestDocumentStore_UpdateAndDelete(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPatch {
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"title":"New"`)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, store.Update(ctx, 3, entities.DocumentPayload{Title: "New"}))
	require.NoError(t, store.Delete(ctx, 3))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PATCH /api/slides/3", "DELETE /api/slides/3"}, calls)
}

func TestDocumentStore_List(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("size"))

		_, _ = io.WriteString(w, `{"slides":[{"id":1,"title":"One"},{"id":2,"title":"Two"}],"totalPage":4}`)
	})

	page, err := store.List(context.Background(), 2, 5)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, entities.DocumentID(2), page.Items[1].ID)
	assert.Equal(t, "One", page.Items[0].Title)
	assert.Equal(t, 4, page.TotalPages)
}

func TestDocumentStore_ListNullSlides(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"slides":null,"totalPage":0}`)
	})

	page, err := store.List(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
}

func TestDocumentStore_ListMalformed(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"slides":`)
	})

	_, err := store.List(context.Background(), 0, 5)
	assert.ErrorIs(t, err, entities.ErrNetwork)
}

func TestDocumentStore_Clone(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/slides/4":
			w.Header().Set("Location", "http://elsewhere/api/slides/9")
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/api/slides/9":
			_, _ = io.WriteString(w, `{"title":"Copy","author":"Jo"}`)
		default:
			http.NotFound(w, r)
		}
	})

	summary, err := store.Clone(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, entities.DocumentID(9), summary.ID)
	assert.Equal(t, "Copy", summary.Title)
	assert.Equal(t, "Jo", summary.Author)
}

func TestDocumentStore_CloneMissing(t *testing.T) {
	store := newTestStore(t, http.NotFound)

	_, err := store.Clone(context.Background(), 4)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

// MockHTTPClient is a mock implementation of ports.HTTPClient
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func TestDocumentStore_TransportFailure(t *testing.T) {
	httpClient := new(MockHTTPClient)
	httpClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	store, err := NewDocumentStore(Config{BaseURL: "http://store.invalid", Client: httpClient, Logger: zerolog.Nop()})
	require.NoError(t, err)

	err = store.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, entities.ErrNetwork)
	assert.Contains(t, err.Error(), "connection refused")
	httpClient.AssertExpectations(t)
}

func TestDocumentStore_CancelledContext(t *testing.T) {
	httpClient := new(MockHTTPClient)
	httpClient.On("Do", mock.Anything).Return(nil, context.Canceled)

	store, err := NewDocumentStore(Config{BaseURL: "http://store.invalid", Client: httpClient, Logger: zerolog.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}
