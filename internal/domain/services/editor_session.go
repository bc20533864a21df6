package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// User-visible acknowledgments. Each outcome has its own text.
const (
	MsgCreateSuccess = "Saved"
	MsgCreateFailure = "Could not save the new slide deck"
	MsgUpdateSuccess = "Success"
	MsgUpdateFailure = "Failure"
	MsgDeleteSuccess = "Deleted"
	MsgDeleteFailure = "Could not delete the slide deck"
	MsgLoadFailure   = "Could not load the slide deck"
	MsgUploadFailure = "File upload failed"
)

const telemetryCategory = "Slide"

// SessionState is the lifecycle position of an editor session
type SessionState int

const (
	// StateNew means nothing has been persisted yet
	StateNew SessionState = iota
	// StateSaved means the session edits an existing document
	StateSaved
	// StateClosed means the session ended; late responses are ignored
	StateClosed
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSaved:
		return "saved"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EditorOptions configures an EditorSession. Zero values select no-op collaborators.
type EditorOptions struct {
	AccessLevel  entities.AccessLevel
	DefaultTitle string
	Telemetry    ports.Telemetry
	Notifier     ports.Notifier
	Navigator    ports.Navigator
	Logger       *zerolog.Logger
}

// EditorSession owns the raw text of one document and coordinates persistence.
//
// The raw text is the only source of truth; metadata and slides are recomputed
// from it on demand. Every store round trip captures the session generation at
// dispatch and drops its result if the session was closed or re-opened since.
type EditorSession struct {
	store     ports.DocumentStore
	assets    ports.AssetStore
	parser    ports.DocumentParser
	telemetry ports.Telemetry
	notifier  ports.Notifier
	navigator ports.Navigator
	logger    zerolog.Logger

	access       entities.AccessLevel
	defaultTitle string

	// saveMu serializes Save so a create in flight is never issued twice
	saveMu sync.Mutex

	mu         sync.Mutex
	id         entities.DocumentID
	text       string
	generation uint64
	closed     bool
}

// NewEditorSession creates a session in the New state
func NewEditorSession(store ports.DocumentStore, assets ports.AssetStore, parser ports.DocumentParser, opts EditorOptions) *EditorSession {
	s := &EditorSession{
		store:        store,
		assets:       assets,
		parser:       parser,
		telemetry:    opts.Telemetry,
		notifier:     opts.Notifier,
		navigator:    opts.Navigator,
		logger:       zerolog.Nop(),
		access:       opts.AccessLevel,
		defaultTitle: opts.DefaultTitle,
	}

	if s.telemetry == nil {
		s.telemetry = ports.NopTelemetry{}
	}
	if s.notifier == nil {
		s.notifier = ports.NotifierFunc(func(ports.NoticeLevel, string) {})
	}
	if s.navigator == nil {
		s.navigator = ports.NopNavigator{}
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "editor").Logger()
	}
	if s.access == "" {
		s.access = entities.AccessPrivate
	}
	if s.defaultTitle == "" {
		s.defaultTitle = entities.DefaultTitle
	}

	s.telemetry.RecordPageView("Editor")
	return s
}

// State returns the current lifecycle state
func (s *EditorSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return StateClosed
	case s.id.IsZero():
		return StateNew
	default:
		return StateSaved
	}
}

// ID returns the document identifier and whether one has been assigned
func (s *EditorSession) ID() (entities.DocumentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, !s.id.IsZero()
}

// Text returns the current raw document
func (s *EditorSession) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetText replaces the raw document, as on every keystroke
func (s *EditorSession) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.text = text
}

// InsertAt inserts fragment at a byte offset of the raw document, clamped to its bounds
func (s *EditorSession) InsertAt(offset int, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	s.text = s.text[:offset] + fragment + s.text[offset:]
}

// View derives metadata and slides from the current text
func (s *EditorSession) View() entities.DocumentView {
	return s.parser.View(s.Text())
}

// Metadata returns the parsed metadata of the current text
func (s *EditorSession) Metadata() map[string]string {
	return s.View().Metadata
}

// Slides returns the slides of the current text
func (s *EditorSession) Slides() []entities.Slide {
	return s.View().Slides
}

// Open enters the Saved state for id and loads its content. A failed fetch leaves
// the current text untouched and surfaces an alert.
func (s *EditorSession) Open(ctx context.Context, id entities.DocumentID) error {
	if id.IsZero() {
		return fmt.Errorf("%w: cannot open a document without id", entities.ErrValidation)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return entities.ErrSessionClosed
	}
	s.id = id
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	doc, err := s.store.Get(ctx, id)

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		s.logger.Debug().Stringer("id", id).Msg("dropping stale load result")
		return nil
	}
	if err == nil {
		s.text = doc.Content
	}
	s.mu.Unlock()

	if err != nil {
		s.fail("load", id, fmt.Sprintf("slide #%s load failed", id), ports.NoticeAlert, MsgLoadFailure, err)
		return &entities.OperationError{Op: "load", ID: id, Err: err}
	}

	s.logger.Debug().Stringer("id", id).Int("bytes", len(doc.Content)).Msg("document loaded")
	return nil
}

// Save creates the document when New and updates it when Saved. The payload
// carries the text as it was when Save was called.
func (s *EditorSession) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return entities.ErrSessionClosed
	}
	id, text, gen := s.id, s.text, s.generation
	s.mu.Unlock()

	payload := s.parser.Parse(text).Payload(text, s.access, s.defaultTitle)

	if id.IsZero() {
		return s.create(ctx, payload, gen)
	}
	return s.update(ctx, id, payload, gen)
}

func (s *EditorSession) create(ctx context.Context, payload entities.DocumentPayload, gen uint64) error {
	id, err := s.store.Create(ctx, payload)

	s.mu.Lock()
	current := s.currentLocked(gen)
	if current && err == nil && s.id.IsZero() {
		s.id = id
	}
	s.mu.Unlock()

	if !current {
		s.logger.Debug().Msg("dropping stale create result")
		return err
	}

	if err != nil {
		s.fail("create", 0, "slide (new) save failed", ports.NoticeError, MsgCreateFailure, err)
		return &entities.OperationError{Op: "create", Err: err}
	}

	s.telemetry.RecordEvent(telemetryCategory, fmt.Sprintf("#%s saved", id))
	s.notifier.Notify(ports.NoticeSuccess, MsgCreateSuccess)
	s.navigator.ToEditor(id)
	s.logger.Info().Stringer("id", id).Str("title", payload.Title).Msg("document created")
	return nil
}

func (s *EditorSession) update(ctx context.Context, id entities.DocumentID, payload entities.DocumentPayload, gen uint64) error {
	err := s.store.Update(ctx, id, payload)

	s.mu.Lock()
	current := s.currentLocked(gen)
	s.mu.Unlock()

	if !current {
		s.logger.Debug().Stringer("id", id).Msg("dropping stale update result")
		return err
	}

	if err != nil {
		s.fail("update", id, fmt.Sprintf("slide #%s update failed", id), ports.NoticeError, MsgUpdateFailure, err)
		return &entities.OperationError{Op: "update", ID: id, Err: err}
	}

	s.telemetry.RecordEvent(telemetryCategory, fmt.Sprintf("#%s updated", id))
	s.notifier.Notify(ports.NoticeSuccess, MsgUpdateSuccess)
	s.logger.Info().Stringer("id", id).Str("title", payload.Title).Msg("document updated")
	return nil
}

// Delete removes the document and ends the session. On failure the session stays Saved.
func (s *EditorSession) Delete(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return entities.ErrSessionClosed
	}
	if s.id.IsZero() {
		s.mu.Unlock()
		return entities.ErrNotSaved
	}
	id, gen := s.id, s.generation
	s.mu.Unlock()

	err := s.store.Delete(ctx, id)

	s.mu.Lock()
	current := s.currentLocked(gen)
	if current && err == nil {
		s.closed = true
		s.generation++
	}
	s.mu.Unlock()

	if !current {
		s.logger.Debug().Stringer("id", id).Msg("dropping stale delete result")
		return err
	}

	if err != nil {
		s.fail("delete", id, fmt.Sprintf("slide #%s delete failed", id), ports.NoticeError, MsgDeleteFailure, err)
		return &entities.OperationError{Op: "delete", ID: id, Err: err}
	}

	s.telemetry.RecordEvent(telemetryCategory, fmt.Sprintf("#%s deleted", id))
	s.notifier.Notify(ports.NoticeSuccess, MsgDeleteSuccess)
	s.navigator.ToArchive()
	s.logger.Info().Stringer("id", id).Msg("document deleted")
	return nil
}

// Upload sends binaries to the asset store and returns the first resulting URL.
// Failures are reported but never touch the raw text.
func (s *EditorSession) Upload(ctx context.Context, files ...ports.Upload) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no files to upload")
	}

	urls, err := s.assets.Upload(ctx, files...)
	if err == nil && len(urls) == 0 {
		err = fmt.Errorf("%w: upload returned no URLs", entities.ErrNetwork)
	}
	if err != nil {
		if s.State() != StateClosed {
			s.fail("upload", 0, "file upload failed", ports.NoticeError, MsgUploadFailure, err)
		}
		return "", &entities.OperationError{Op: "upload", Err: err}
	}

	s.logger.Debug().Str("url", urls[0]).Int("files", len(files)).Msg("asset uploaded")
	return urls[0], nil
}

// Close ends the session; in-flight responses become no-ops
func (s *EditorSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

// currentLocked reports whether a request dispatched at gen may still mutate state
func (s *EditorSession) currentLocked(gen uint64) bool {
	return !s.closed && s.generation == gen
}

// fail converts a store failure into telemetry plus a user-visible notice
func (s *EditorSession) fail(op string, id entities.DocumentID, exception string, level ports.NoticeLevel, notice string, err error) {
	s.telemetry.RecordException(exception)
	s.notifier.Notify(level, notice)

	event := s.logger.Warn().Err(err).Str("op", op)
	if !id.IsZero() {
		event = event.Stringer("id", id)
	}
	event.Msg("store operation failed")
}
