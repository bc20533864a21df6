package parser

import (
	"sync"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// DocumentParserAdapter implements ports.DocumentParser on top of ParseDocument and
// Segment, memoizing the last projection since editors re-derive on every keystroke
// and often with unchanged text.
type DocumentParserAdapter struct {
	mu       sync.Mutex
	lastText string
	last     *entities.DocumentView
}

// NewDocumentParserAdapter creates a new parser adapter
func NewDocumentParserAdapter() *DocumentParserAdapter {
	return &DocumentParserAdapter{}
}

// Parse implements ports.DocumentParser
func (p *DocumentParserAdapter) Parse(text string) entities.ParsedDocument {
	return ParseDocument(text)
}

// View implements ports.DocumentParser
func (p *DocumentParserAdapter) View(text string) entities.DocumentView {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil || p.lastText != text {
		view := BuildView(text)
		p.last = &view
		p.lastText = text
	}

	return copyView(*p.last)
}

// BuildView derives metadata and slides from raw text
func BuildView(text string) entities.DocumentView {
	parsed := ParseDocument(text)
	segments := Segment(parsed.Content)

	slides := make([]entities.Slide, len(segments))
	for i, content := range segments {
		slides[i] = entities.NewSlide(i, content)
	}

	return entities.DocumentView{
		Metadata: parsed.Metadata,
		Slides:   slides,
	}
}

// copyView detaches a cached view from callers that might mutate it
func copyView(v entities.DocumentView) entities.DocumentView {
	metadata := make(map[string]string, len(v.Metadata))
	for k, val := range v.Metadata {
		metadata[k] = val
	}
	slides := make([]entities.Slide, len(v.Slides))
	copy(slides, v.Slides)
	return entities.DocumentView{Metadata: metadata, Slides: slides}
}

// Ensure DocumentParserAdapter implements ports.DocumentParser
var _ ports.DocumentParser = (*DocumentParserAdapter)(nil)
