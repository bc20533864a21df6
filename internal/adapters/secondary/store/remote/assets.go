package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const filesPath = "/api/files"

// AssetStore implements ports.AssetStore against a remote server
type AssetStore struct {
	*client
}

// NewAssetStore creates a remote asset store
func NewAssetStore(cfg Config) (*AssetStore, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AssetStore{client: c}, nil
}

// Upload implements ports.AssetStore
func (s *AssetStore) Upload(ctx context.Context, files ...ports.Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to upload")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, file := range files {
		if err := writePart(writer, file); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+filesPath, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.do(req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var result ports.UploadResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.URLs, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePart(writer *multipart.Writer, file ports.Upload) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(ports.UploadField), quoteEscaper.Replace(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating part for %s: %w", file.Name, err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return fmt.Errorf("%w: reading %s: %v", entities.ErrNetwork, file.Name, err)
	}
	return nil
}

var _ ports.AssetStore = (*AssetStore)(nil)
