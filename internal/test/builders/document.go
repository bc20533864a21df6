// Package builders constructs domain values for tests.
package builders

import (
	"strconv"
	"strings"
	"time"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// DocumentBuilder helps build documents, payloads and summaries for testing.
// The raw content is generated from the metadata fields and slides so the
// three stay consistent.
type DocumentBuilder struct {
	doc          entities.Document
	slides       []string
	withMetadata bool
}

// NewDocumentBuilder creates a builder with sensible defaults
func NewDocumentBuilder() *DocumentBuilder {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &DocumentBuilder{
		doc: entities.Document{
			Title:       "Test Deck",
			Author:      "Test Author",
			AccessLevel: entities.AccessPrivate,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		slides:       []string{"# Introduction\n\nWelcome.", "# Details\n\n- one\n- two"},
		withMetadata: true,
	}
}

// WithID sets the document identifier
func (b *DocumentBuilder) WithID(id int64) *DocumentBuilder {
	b.doc.ID = entities.DocumentID(id)
	return b
}

// WithTitle sets the document title
func (b *DocumentBuilder) WithTitle(title string) *DocumentBuilder {
	b.doc.Title = title
	return b
}

// WithSubtitle sets the document subtitle
func (b *DocumentBuilder) WithSubtitle(subtitle string) *DocumentBuilder {
	b.doc.Subtitle = subtitle
	return b
}

// WithAuthor sets the document author
func (b *DocumentBuilder) WithAuthor(author string) *DocumentBuilder {
	b.doc.Author = author
	return b
}

// WithPresentedAt sets where the deck was presented
func (b *DocumentBuilder) WithPresentedAt(presentedAt string) *DocumentBuilder {
	b.doc.PresentedAt = presentedAt
	return b
}

// WithAccessLevel sets the access level
func (b *DocumentBuilder) WithAccessLevel(level entities.AccessLevel) *DocumentBuilder {
	b.doc.AccessLevel = level
	return b
}

// WithSlides replaces the slide bodies
func (b *DocumentBuilder) WithSlides(slides ...string) *DocumentBuilder {
	b.slides = append([]string(nil), slides...)
	return b
}

// WithoutMetadata omits the metadata block from the content
func (b *DocumentBuilder) WithoutMetadata() *DocumentBuilder {
	b.withMetadata = false
	return b
}

// WithTimes sets the creation and update times
func (b *DocumentBuilder) WithTimes(created, updated time.Time) *DocumentBuilder {
	b.doc.CreatedAt = created
	b.doc.UpdatedAt = updated
	return b
}

// Text returns the raw document: metadata block followed by the slides
func (b *DocumentBuilder) Text() string {
	var sb strings.Builder

	if b.withMetadata {
		sb.WriteString("---\n")
		for _, field := range []struct{ key, value string }{
			{"title", b.doc.Title},
			{"subtitle", b.doc.Subtitle},
			{"author", b.doc.Author},
			{"presentedAt", b.doc.PresentedAt},
		} {
			if field.value != "" {
				sb.WriteString(field.key + ": " + field.value + "\n")
			}
		}
		sb.WriteString("---\n")
	}

	sb.WriteString(strings.Join(b.slides, "\n---\n"))
	return sb.String()
}

// Build returns the document with its content generated
func (b *DocumentBuilder) Build() *entities.Document {
	doc := b.doc
	doc.Content = b.Text()
	return &doc
}

// Payload returns the create/update payload for the document
func (b *DocumentBuilder) Payload() entities.DocumentPayload {
	return entities.DocumentPayload{
		Title:       b.doc.Title,
		Subtitle:    b.doc.Subtitle,
		Author:      b.doc.Author,
		PresentedAt: b.doc.PresentedAt,
		Content:     b.Text(),
		AccessLevel: b.doc.AccessLevel,
	}
}

// Summary returns the listing record for the document
func (b *DocumentBuilder) Summary() entities.DocumentSummary {
	return b.Build().Summary()
}

// Summaries returns one summary per id, titled "Deck <id>"
func Summaries(ids ...int64) []entities.DocumentSummary {
	items := make([]entities.DocumentSummary, len(ids))
	for i, id := range ids {
		items[i] = NewDocumentBuilder().
			WithID(id).
			WithTitle("Deck " + strconv.FormatInt(id, 10)).
			Summary()
	}
	return items
}

// MinimalDocument returns a document with a single slide and no metadata
func MinimalDocument() *entities.Document {
	return NewDocumentBuilder().
		WithTitle(entities.DefaultTitle).
		WithAuthor("").
		WithoutMetadata().
		WithSlides("# Only slide").
		Build()
}

// LargeDocument returns a document with many slides
func LargeDocument(slides int) *entities.Document {
	bodies := make([]string, slides)
	for i := range bodies {
		bodies[i] = "# Slide " + strconv.Itoa(i+1) + "\n\nContent."
	}
	return NewDocumentBuilder().WithTitle("Large Deck").WithSlides(bodies...).Build()
}
