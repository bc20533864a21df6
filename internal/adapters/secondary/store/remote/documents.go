package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const slidesPath = "/api/slides"

// DocumentStore implements ports.DocumentStore against a remote server
type DocumentStore struct {
	*client
}

// NewDocumentStore creates a remote document store
func NewDocumentStore(cfg Config) (*DocumentStore, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &DocumentStore{client: c}, nil
}

func documentPath(id entities.DocumentID) string {
	return slidesPath + "/" + url.PathEscape(id.String())
}

// Get implements ports.DocumentStore
func (s *DocumentStore) Get(ctx context.Context, id entities.DocumentID) (*entities.Document, error) {
	req, err := s.newJSONRequest(ctx, http.MethodGet, documentPath(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var doc entities.Document
	if err := decode(resp, &doc); err != nil {
		return nil, fmt.Errorf("document #%s: %w", id, err)
	}
	// The server omits the identifier from the body
	doc.ID = id
	return &doc, nil
}

// Create implements ports.DocumentStore
func (s *DocumentStore) Create(ctx context.Context, payload entities.DocumentPayload) (entities.DocumentID, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, slidesPath, payload)
	if err != nil {
		return 0, err
	}

	resp, err := s.do(req, http.StatusCreated, http.StatusOK)
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	return locationID(resp)
}

// Update implements ports.DocumentStore
func (s *DocumentStore) Update(ctx context.Context, id entities.DocumentID, payload entities.DocumentPayload) error {
	req, err := s.newJSONRequest(ctx, http.MethodPatch, documentPath(id), payload)
	if err != nil {
		return err
	}

	resp, err := s.do(req, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Delete implements ports.DocumentStore
func (s *DocumentStore) Delete(ctx context.Context, id entities.DocumentID) error {
	req, err := s.newJSONRequest(ctx, http.MethodDelete, documentPath(id), nil)
	if err != nil {
		return err
	}

	resp, err := s.do(req, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// List implements ports.DocumentStore
func (s *DocumentStore) List(ctx context.Context, page, pageSize int) (*entities.Page, error) {
	req, err := s.newJSONRequest(ctx, http.MethodGet, slidesPath, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(pageSize))
	req.URL.RawQuery = q.Encode()

	resp, err := s.do(req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var result entities.Page
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []entities.DocumentSummary{}
	}
	return &result, nil
}

// Clone implements ports.DocumentStore. The server answers with the location
// of the copy, which is fetched to build the summary.
func (s *DocumentStore) Clone(ctx context.Context, id entities.DocumentID) (*entities.DocumentSummary, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, documentPath(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(req, http.StatusCreated, http.StatusOK)
	if err != nil {
		return nil, err
	}
	newID, err := locationID(resp)
	drain(resp)
	if err != nil {
		return nil, err
	}

	doc, err := s.Get(ctx, newID)
	if err != nil {
		return nil, fmt.Errorf("fetching clone of #%s: %w", id, err)
	}
	summary := doc.Summary()
	return &summary, nil
}

var _ ports.DocumentStore = (*DocumentStore)(nil)
