package ports

import (
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// DocumentParser derives structure from raw document text. Implementations are
// pure and total: malformed input degrades to "no metadata", never to an error.
type DocumentParser interface {
	// Parse separates the metadata block from body content
	Parse(text string) entities.ParsedDocument

	// View derives metadata plus the ordered, non-empty slides
	View(text string) entities.DocumentView
}

// PreviewRenderer turns slide markdown into HTML for preview surfaces
type PreviewRenderer interface {
	RenderSlide(slide entities.Slide) (string, error)
}
