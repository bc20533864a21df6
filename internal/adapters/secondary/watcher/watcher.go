// Package watcher reports changes to a local document file.
package watcher

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// Options selects and tunes a watcher
type Options struct {
	Debounce time.Duration
	// Polling forces the polling watcher
	Polling  bool
	Interval time.Duration
}

// New returns a notification watcher, falling back to polling when the
// platform cannot provide notifications or Polling is set
func New(opts Options, logger zerolog.Logger) ports.FileWatcher {
	if opts.Interval <= 0 {
		opts.Interval = 250 * time.Millisecond
	}

	if !opts.Polling {
		w, err := NewNotifyWatcher(opts.Debounce, logger)
		if err == nil {
			return w
		}
		logger.Warn().Err(err).Msg("file notifications unavailable, polling instead")
	}

	return NewPollingWatcher(opts.Interval, opts.Debounce, logger)
}

// fileChecksum returns the SHA256 of a file; open errors are returned unwrapped
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
