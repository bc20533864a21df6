// Package sqlite implements the document store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/store/sqlite/migrations"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const dbFile = "documents.db"

// Fixed width so timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const documentColumns = `id, title, subtitle, author, presented_at, content, access_level, created_at, updated_at`

// Store persists documents in SQLite
type Store struct {
	db     *sql.DB
	path   string
	clock  ports.Clock
	logger zerolog.Logger
}

// Option customizes a Store
type Option func(*Store)

// WithClock overrides the clock used for timestamps
func WithClock(clock ports.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithLogger attaches a logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "sqlite").Logger()
	}
}

// NewStore opens (creating if needed) the database under dataDir and applies migrations
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("data directory is required")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   dbPath,
		clock:  ports.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Debug().Str("path", dbPath).Msg("document store opened")
	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		s.logger.Debug().Int("version", version).Msg("migration applied")
	}

	return nil
}

// Get implements ports.DocumentStore
func (s *Store) Get(ctx context.Context, id entities.DocumentID) (*entities.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", int64(id))

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document #%s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document #%s: %w", id, err)
	}
	return doc, nil
}

// Create implements ports.DocumentStore
func (s *Store) Create(ctx context.Context, payload entities.DocumentPayload) (entities.DocumentID, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	now := formatTime(s.clock.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (title, subtitle, author, presented_at, content, access_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payload.Title, payload.Subtitle, payload.Author, payload.PresentedAt,
		payload.Content, string(payload.AccessLevel), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("creating document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new document id: %w", err)
	}
	return entities.DocumentID(id), nil
}

// Update implements ports.DocumentStore
func (s *Store) Update(ctx context.Context, id entities.DocumentID, payload entities.DocumentPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, subtitle = ?, author = ?, presented_at = ?, content = ?, access_level = ?, updated_at = ?
		WHERE id = ?`,
		payload.Title, payload.Subtitle, payload.Author, payload.PresentedAt,
		payload.Content, string(payload.AccessLevel), formatTime(s.clock.Now()), int64(id),
	)
	if err != nil {
		return fmt.Errorf("updating document #%s: %w", id, err)
	}
	return requireAffected(res, id)
}

// Delete implements ports.DocumentStore
func (s *Store) Delete(ctx context.Context, id entities.DocumentID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("deleting document #%s: %w", id, err)
	}
	return requireAffected(res, id)
}

// List implements ports.DocumentStore. Most recently updated documents come first.
func (s *Store) List(ctx context.Context, page, pageSize int) (*entities.Page, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page must be non-negative", entities.ErrValidation)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive", entities.ErrValidation)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?",
		pageSize, page*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]entities.DocumentSummary, 0, pageSize)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		items = append(items, doc.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return &entities.Page{
		Items:      items,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Clone implements ports.DocumentStore. The copy keeps every field except its
// identifier and timestamps.
func (s *Store) Clone(ctx context.Context, id entities.DocumentID) (*entities.DocumentSummary, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newID, err := s.Create(ctx, entities.DocumentPayload{
		Title:       original.Title,
		Subtitle:    original.Subtitle,
		Author:      original.Author,
		PresentedAt: original.PresentedAt,
		Content:     original.Content,
		AccessLevel: original.AccessLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning document #%s: %w", id, err)
	}

	clone, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	summary := clone.Summary()
	return &summary, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*entities.Document, error) {
	var (
		doc                  entities.Document
		id                   int64
		access               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &doc.Title, &doc.Subtitle, &doc.Author, &doc.PresentedAt,
		&doc.Content, &access, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.ID = entities.DocumentID(id)
	doc.AccessLevel = entities.AccessLevel(access)
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return &doc, nil
}

func requireAffected(res sql.Result, id entities.DocumentID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("document #%s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("document #%s: %w", id, entities.ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ ports.DocumentStore = (*Store)(nil)
