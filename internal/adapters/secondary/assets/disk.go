// Package assets stores uploaded binaries on the local disk.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

var extPattern = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,10}$`)

// DiskStore writes uploads under a directory with generated names
type DiskStore struct {
	dir       string
	publicURL string
	maxBytes  int64
	logger    zerolog.Logger
}

// NewDiskStore creates the directory if needed
func NewDiskStore(cfg entities.AssetsConfig, logger zerolog.Logger) (*DiskStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("assets directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("creating assets directory: %w", err)
	}

	return &DiskStore{
		dir:       cfg.Dir,
		publicURL: cfg.GetPublicURL(),
		maxBytes:  cfg.GetMaxUploadBytes(),
		logger:    logger.With().Str("component", "assets").Logger(),
	}, nil
}

// Dir returns the directory uploads are written to
func (s *DiskStore) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file size limit
func (s *DiskStore) MaxBytes() int64 {
	return s.maxBytes
}

// Upload implements ports.AssetStore. Each file is stored under a random name
// keeping a sanitized extension. A file over the limit fails the whole call and
// files already written by it are removed.
func (s *DiskStore) Upload(ctx context.Context, files ...ports.Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to upload")
	}

	urls := make([]string, 0, len(files))
	written := make([]string, 0, len(files))
	cleanup := func() {
		for _, path := range written {
			_ = os.Remove(path)
		}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: %w", entities.ErrNetwork, err)
		}

		name := uuid.NewString() + safeExt(file.Name)
		path := filepath.Join(s.dir, name)
		if err := s.write(path, file.Body); err != nil {
			cleanup()
			return nil, fmt.Errorf("storing %s: %w", file.Name, err)
		}
		written = append(written, path)
		urls = append(urls, s.publicURL+"/"+name)

		s.logger.Debug().Str("name", file.Name).Str("stored", name).Msg("asset stored")
	}

	return urls, nil
}

func (s *DiskStore) write(path string, body io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640) // #nosec G304 - generated name
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrNetwork, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", entities.ErrNetwork, copyErr)
	case n > s.maxBytes:
		_ = os.Remove(path)
		return fmt.Errorf("%w: limit is %d bytes", entities.ErrPayloadTooLarge, s.maxBytes)
	case closeErr != nil:
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", entities.ErrNetwork, closeErr)
	}
	return nil
}

// Resolve maps a stored name back to its path, rejecting anything that is not
// a plain file name inside the directory
func (s *DiskStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid asset name %q", entities.ErrValidation, name)
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("asset %s: %w", name, entities.ErrNotFound)
	}
	return path, nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

var _ ports.AssetStore = (*DiskStore)(nil)
