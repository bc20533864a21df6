package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// LivePreview re-renders a watched document on every change and pushes the
// result to the server's preview sockets
type LivePreview struct {
	watcher  ports.FileWatcher
	server   ports.HTTPServer
	parser   ports.DocumentParser
	renderer ports.PreviewRenderer
	readFile func(path string) ([]byte, error)
	logger   zerolog.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	path        string
	done        chan struct{}
}

// NewLivePreview creates a live preview over the given collaborators
func NewLivePreview(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	parser ports.DocumentParser,
	renderer ports.PreviewRenderer,
	logger zerolog.Logger,
) *LivePreview {
	return &LivePreview{
		watcher:  watcher,
		server:   server,
		parser:   parser,
		renderer: renderer,
		readFile: os.ReadFile,
		logger:   logger.With().Str("component", "live_preview").Logger(),
	}
}

// Start watches path until ctx is done or Stop is called
func (s *LivePreview) Start(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, path)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.path = path
	s.done = make(chan struct{})

	go s.handleEvents(watchCtx, events, s.done)

	return nil
}

// Stop ends watching and waits for the event loop to exit
func (s *LivePreview) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watchCancel()
	s.watchCancel = nil
	s.watching = false
	done := s.done
	s.mu.Unlock()

	<-done
	return s.watcher.Stop()
}

// IsWatching returns whether a file is being watched
func (s *LivePreview) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LivePreview) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Debug().
				Str("path", event.Path).
				Str("type", event.Type.String()).
				Msg("file change detected")

			if err := s.server.NotifyClients(s.updateFor(event)); err != nil {
				s.logger.Warn().Err(err).Str("path", event.Path).Msg("failed to notify preview clients")
			}
		}
	}
}

// updateFor builds the event pushed for a file change
func (s *LivePreview) updateFor(event ports.FileChangeEvent) ports.UpdateEvent {
	if event.Type == ports.Deleted {
		return ports.UpdateEvent{
			Type:      ports.EventTypeDocumentDeleted,
			Timestamp: event.Timestamp,
			Data:      map[string]string{"file": event.Path},
		}
	}

	view, err := s.Render()
	if err != nil {
		s.logger.Error().Err(err).Str("path", event.Path).Msg("live preview failed")
		return ports.UpdateEvent{
			Type:      ports.EventTypeError,
			Timestamp: event.Timestamp,
			Data:      map[string]string{"message": "Preview failed"},
		}
	}

	return ports.UpdateEvent{Type: ports.EventTypePreview, Timestamp: event.Timestamp, Data: view}
}

// Render reads the watched file and renders every slide
func (s *LivePreview) Render() (entities.DocumentView, error) {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return entities.DocumentView{}, errors.New("no document path set")
	}

	data, err := s.readFile(path)
	if err != nil {
		return entities.DocumentView{}, fmt.Errorf("reading %s: %w", path, err)
	}

	view := s.parser.View(string(data))
	for i, slide := range view.Slides {
		html, err := s.renderer.RenderSlide(slide)
		if err != nil {
			return entities.DocumentView{}, fmt.Errorf("rendering slide %d: %w", i+1, err)
		}
		view.Slides[i].HTML = html
	}

	return view, nil
}

