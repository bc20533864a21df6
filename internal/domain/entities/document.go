package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentID identifies a persisted document. The zero value means "not yet saved".
type DocumentID int64

// IsZero reports whether the identifier is absent
func (id DocumentID) IsZero() bool {
	return id == 0
}

// String formats the identifier the way the store's location references do
func (id DocumentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseDocumentID parses a decimal identifier; zero and negatives are rejected
func ParseDocumentID(s string) (DocumentID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid document id %q: must be positive", s)
	}
	return DocumentID(n), nil
}

// IDFromLocation extracts the identifier from the last path segment of a location reference
func IDFromLocation(location string) (DocumentID, error) {
	location = strings.TrimRight(strings.TrimSpace(location), "/")
	if location == "" {
		return 0, errors.New("empty location reference")
	}
	return ParseDocumentID(location[strings.LastIndex(location, "/")+1:])
}

// AccessLevel controls who can read a document
type AccessLevel string

const (
	AccessPublic  AccessLevel = "PUBLIC"
	AccessPrivate AccessLevel = "PRIVATE"
)

// Validate checks the access level is one of the known values
func (a AccessLevel) Validate() error {
	switch a {
	case AccessPublic, AccessPrivate:
		return nil
	default:
		return fmt.Errorf("invalid access level: %q (must be PUBLIC or PRIVATE)", string(a))
	}
}

// DefaultTitle is used when the metadata block carries no usable title
const DefaultTitle = "Untitled"

// Document is the full persisted unit: metadata fields plus raw content
type Document struct {
	ID          DocumentID  `json:"id,omitempty"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Author      string      `json:"author"`
	PresentedAt string      `json:"presentedAt"`
	Content     string      `json:"content"`
	AccessLevel AccessLevel `json:"accessLevel"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Summary returns the listing representation of the document
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:          d.ID,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Author:      d.Author,
		PresentedAt: d.PresentedAt,
		AccessLevel: d.AccessLevel,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// DocumentSummary is the lightweight listing record for one document
type DocumentSummary struct {
	ID          DocumentID  `json:"id"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Author      string      `json:"author"`
	PresentedAt string      `json:"presentedAt"`
	AccessLevel AccessLevel `json:"accessLevel,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DocumentPayload is the body of create and update requests
type DocumentPayload struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Author      string      `json:"author"`
	PresentedAt string      `json:"presentedAt"`
	Content     string      `json:"content"`
	AccessLevel AccessLevel `json:"accessLevel"`
}

// Validate ensures the payload can be persisted
func (p DocumentPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := p.AccessLevel.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Page is one page of document summaries as returned by the store
type Page struct {
	Items      []DocumentSummary `json:"slides"`
	TotalPages int               `json:"totalPage"`
}

// ParsedDocument is the derived projection of a raw document
type ParsedDocument struct {
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	Content  string            `json:"content" yaml:"content"`
}

// Lookup returns a metadata value and whether it was present and non-empty
func (p ParsedDocument) Lookup(key string) (string, bool) {
	v, ok := p.Metadata[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Title resolves the document title, falling back to DefaultTitle
func (p ParsedDocument) Title() string {
	return p.TitleOr(DefaultTitle)
}

// TitleOr resolves the document title, falling back to fallback
func (p ParsedDocument) TitleOr(fallback string) string {
	if title, ok := p.Lookup("title"); ok {
		return title
	}
	return fallback
}

// Payload builds the create/update payload for raw content with this metadata
func (p ParsedDocument) Payload(raw string, access AccessLevel, fallbackTitle string) DocumentPayload {
	payload := DocumentPayload{
		Title:       p.TitleOr(fallbackTitle),
		Content:     raw,
		AccessLevel: access,
	}
	payload.Subtitle, _ = p.Lookup("subtitle")
	payload.Author, _ = p.Lookup("author")
	payload.PresentedAt, _ = p.Lookup("presentedAt")
	return payload
}

// DocumentView is what a rendering surface consumes for one editing session
type DocumentView struct {
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	Slides   []Slide           `json:"slides" yaml:"slides"`
}

// SlideCount returns the total number of slides
func (v DocumentView) SlideCount() int {
	return len(v.Slides)
}
