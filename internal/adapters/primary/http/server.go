// Package http exposes the document store, uploads and live preview over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// AssetFiles stores uploads and resolves stored names for serving
type AssetFiles interface {
	ports.AssetStore
	Resolve(name string) (string, error)
	MaxBytes() int64
}

// ViewRenderer fills in slide HTML for preview responses
type ViewRenderer interface {
	RenderView(view entities.DocumentView) (entities.DocumentView, error)
}

// DeckRenderer renders a stored document as a standalone HTML page
type DeckRenderer interface {
	RenderDeck(doc *entities.Document, view entities.DocumentView) ([]byte, error)
}

// Dependencies are the collaborators the server routes to
type Dependencies struct {
	Store    ports.DocumentStore
	Assets   AssetFiles
	Parser   ports.DocumentParser
	Renderer ViewRenderer
	Decks    DeckRenderer
}

// Server implements the HTTPServer interface
type Server struct {
	deps     Dependencies
	config   *entities.ServerConfig
	archive  entities.ArchiveConfig
	editor   entities.EditorConfig
	logger   zerolog.Logger
	connMgr  *ConnectionManager
	limiter  *rateLimiter
	monitor  *monitoring.Monitor
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	mu       sync.RWMutex
	running  bool
}

// Option customizes a Server
type Option func(*Server)

// WithArchiveConfig sets the listing defaults
func WithArchiveConfig(cfg entities.ArchiveConfig) Option {
	return func(s *Server) {
		s.archive = cfg
	}
}

// WithEditorConfig sets the defaults applied to incoming payloads
func WithEditorConfig(cfg entities.EditorConfig) Option {
	return func(s *Server) {
		s.editor = cfg
	}
}

// NewServer creates a new HTTP server.
// config must not be nil - use config.GetDefaultConfig().Server if needed
func NewServer(deps Dependencies, config *entities.ServerConfig, logger zerolog.Logger, opts ...Option) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}

	s := &Server{
		deps:    deps,
		config:  config,
		logger:  logger.With().Str("component", "http").Logger(),
		connMgr: NewConnectionManager(),
		limiter: newRateLimiter(300, time.Minute),
		monitor: monitoring.NewMonitor(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.connMgr = NewConnectionManager()
	go s.connMgr.Run(runCtx)
	s.monitor.Start(runCtx)

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.listener = listener
	s.cancel = cancel
	s.running = true

	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP server starting")
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.monitor.Stop()
	s.cancel()
	s.running = false
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// Stats returns the request and preview counters
func (s *Server) Stats() monitoring.Stats {
	return s.monitor.Snapshot()
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler builds the routed handler with its middleware chain
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, r, entities.ErrNotFound)
	})

	api := router.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return rateLimitMiddleware(next, s.limiter)
	})

	api.HandleFunc("/slides", s.handleListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/slides", s.handleCreateDocument).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id:[0-9]+}", s.handleGetDocument).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id:[0-9]+}", s.handleUpdateDocument).Methods(http.MethodPatch)
	api.HandleFunc("/slides/{id:[0-9]+}", s.handleDeleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/slides/{id:[0-9]+}", s.handleCloneDocument).Methods(http.MethodPost)

	api.HandleFunc("/files", s.handleUpload).Methods(http.MethodPost)

	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodPost)
	api.HandleFunc("/preview/ws", s.handlePreviewSocket).Methods(http.MethodGet)

	router.HandleFunc("/files/{name}", s.handleServeFile).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/decks/{id:[0-9]+}", s.handleDeck).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders:   []string{"Location", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})

	// Outermost first: request id -> recovery -> logging -> security -> cors -> routes
	var handler http.Handler = c.Handler(router)
	handler = securityHeadersMiddleware(handler)
	handler = createLoggingMiddleware(handler, s.logger, s.monitor)
	handler = createRecoveryMiddleware(handler, s.logger)
	handler = requestIDMiddleware(handler)

	return handler
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
