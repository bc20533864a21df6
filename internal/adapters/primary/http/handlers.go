package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// maxDocumentBytes bounds JSON and preview request bodies
const maxDocumentBytes = 5 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	Time      time.Time `json:"time"`
}

// PreviewRequest is the JSON form of a preview request
type PreviewRequest struct {
	Content string `json:"content"`
}

// HealthResponse reports liveness, open preview sockets and server counters
type HealthResponse struct {
	Status      string           `json:"status"`
	Connections int              `json:"connections"`
	Stats       monitoring.Stats `json:"stats"`
}

func documentLocation(id entities.DocumentID) string {
	return "/api/slides/" + id.String()
}

// handleListDocuments serves one page of summaries
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil || page < 0 {
		s.handleError(w, r, fmt.Errorf("%w: invalid page", entities.ErrValidation))
		return
	}
	size, err := queryInt(r, "size", s.archive.GetPageSize())
	if err != nil || size <= 0 {
		s.handleError(w, r, fmt.Errorf("%w: invalid size", entities.ErrValidation))
		return
	}

	result, err := s.deps.Store.List(r.Context(), page, size)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleCreateDocument stores a new document and answers with its location
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}

	id, err := s.deps.Store.Create(r.Context(), payload)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", documentLocation(id))
	w.WriteHeader(http.StatusCreated)
}

// handleGetDocument serves the full document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	doc, err := s.deps.Store.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}

// handleUpdateDocument replaces a document's fields
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}

	if err := s.deps.Store.Update(r.Context(), id, payload); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.broadcast(ports.EventTypeDocumentChanged, id)
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteDocument removes a document
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Store.Delete(r.Context(), id); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.broadcast(ports.EventTypeDocumentDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// handleCloneDocument copies a document; the copy's location is returned
// along with its summary
func (s *Server) handleCloneDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	summary, err := s.deps.Store.Clone(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", documentLocation(summary.ID))
	s.writeJSON(w, http.StatusCreated, summary)
}

// handleUpload stores every file of the multipart field and returns their URLs
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Assets == nil {
		s.handleError(w, r, fmt.Errorf("%w: uploads are disabled", entities.ErrNotFound))
		return
	}

	// Per-file limits are enforced by the asset store; this bounds the whole body
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.Assets.MaxBytes()+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrPayloadTooLarge, err))
			return
		}
		s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrValidation, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[ports.UploadField]
	if len(headers) == 0 {
		s.handleError(w, r, fmt.Errorf("%w: no files in field %q", entities.ErrValidation, ports.UploadField))
		return
	}

	uploads := make([]ports.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrValidation, err))
			return
		}
		defer func() { _ = file.Close() }()

		uploads = append(uploads, ports.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
	}

	urls, err := s.deps.Assets.Upload(r.Context(), uploads...)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ports.UploadResponse{URLs: urls})
}

// handleServeFile serves a previously uploaded asset
func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Assets == nil {
		s.handleError(w, r, entities.ErrNotFound)
		return
	}

	path, err := s.deps.Assets.Resolve(mux.Vars(r)["name"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

// handlePreview parses and renders a document without storing it. The body is
// either raw text or a JSON PreviewRequest.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrPayloadTooLarge, err))
		} else {
			s.handleError(w, r, fmt.Errorf("%w: reading body: %v", entities.ErrValidation, err))
		}
		return
	}

	text := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req PreviewRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrValidation, err))
			return
		}
		text = req.Content
	}

	view, err := s.renderPreview(text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

// handleDeck renders a stored document as an HTML page
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	doc, err := s.deps.Store.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	html, err := s.deps.Decks.RenderDeck(doc, s.deps.Parser.View(doc.Content))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error().Err(err).Msg("failed to write deck response")
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.monitor.Snapshot()
	status := "ok"
	if !stats.Healthy {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: status, Connections: s.connMgr.Count(), Stats: stats})
}

func (s *Server) renderPreview(text string) (entities.DocumentView, error) {
	start := time.Now()
	view, err := s.deps.Renderer.RenderView(s.deps.Parser.View(text))
	s.monitor.RecordPreview(time.Since(start), err)
	return view, err
}

func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (entities.DocumentPayload, bool) {
	var payload entities.DocumentPayload
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err := decoder.Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrPayloadTooLarge, err))
		} else {
			s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrValidation, err))
		}
		return payload, false
	}

	if payload.AccessLevel == "" {
		payload.AccessLevel = s.editor.GetAccessLevel()
	}
	if err := payload.Validate(); err != nil {
		s.handleError(w, r, err)
		return payload, false
	}
	return payload, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (entities.DocumentID, bool) {
	id, err := entities.ParseDocumentID(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, r, fmt.Errorf("%w: %v", entities.ErrValidation, err))
		return 0, false
	}
	return id, true
}

func (s *Server) broadcast(eventType string, id entities.DocumentID) {
	s.connMgr.Broadcast(ports.UpdateEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      map[string]entities.DocumentID{"id": id},
	})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// statusFor maps the store taxonomy onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entities.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes an error response with a sanitized message
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusRequestEntityTooLarge:
		message = "Payload too large"
	case http.StatusBadGateway:
		message = "Upstream unavailable"
	default:
		message = "Internal server error"
	}

	event := s.logger.Debug()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", RequestID(r.Context())).
		Int("status", status).
		Msg("request failed")

	response := ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		RequestID: RequestID(r.Context()),
		Time:      time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error().Err(encodeErr).Msg("failed to encode error response")
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}
