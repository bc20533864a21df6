package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

//go:generate mockery --name DocumentStore --output ../../../test/mocks --outpkg mocks

// DocumentStore persists documents by identifier. Failures wrap the entities
// sentinels (ErrNotFound, ErrValidation, ErrNetwork).
type DocumentStore interface {
	// Get fetches the full document
	Get(ctx context.Context, id entities.DocumentID) (*entities.Document, error)

	// Create stores a new document and returns its identifier
	Create(ctx context.Context, payload entities.DocumentPayload) (entities.DocumentID, error)

	// Update replaces the fields of an existing document
	Update(ctx context.Context, id entities.DocumentID, payload entities.DocumentPayload) error

	// Delete removes a document
	Delete(ctx context.Context, id entities.DocumentID) error

	// List returns one page of summaries; page is 0-based
	List(ctx context.Context, page, pageSize int) (*entities.Page, error)

	// Clone copies a document and returns the summary of the copy
	Clone(ctx context.Context, id entities.DocumentID) (*entities.DocumentSummary, error)
}

// Upload is one binary handed to the asset store
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadField is the multipart field carrying each file of an upload request
const UploadField = "files"

// UploadResponse is the body answered by the upload endpoint
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// AssetStore resolves uploaded binaries to URLs. Failures wrap ErrNetwork or
// ErrPayloadTooLarge.
type AssetStore interface {
	Upload(ctx context.Context, files ...Upload) ([]string, error)
}
