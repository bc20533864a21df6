package entities

import (
	"errors"
	"strconv"
	"strings"
)

// Slide represents one segment of a document body between delimiter lines
type Slide struct {
	// Index is the slide position in the document body (0-based)
	Index int `json:"index" yaml:"index"`

	// Title is extracted from the first heading or generated
	Title string `json:"title" yaml:"title"`

	// Content is the raw markdown of the slide, internal whitespace preserved
	Content string `json:"content" yaml:"content"`

	// HTML is the rendered preview (populated only by the preview renderer)
	HTML string `json:"html,omitempty" yaml:"-"`
}

// NewSlide builds a slide at index with its title resolved from content
func NewSlide(index int, content string) Slide {
	s := Slide{Index: index, Content: content}
	s.Title = s.ExtractTitle()
	return s
}

// Validate ensures the slide has valid content
func (s *Slide) Validate() error {
	if strings.TrimSpace(s.Content) == "" {
		return errors.New("slide content cannot be empty")
	}

	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}

	return nil
}

// ExtractTitle returns the text of the first markdown heading of any level
func (s *Slide) ExtractTitle() string {
	for _, line := range strings.Split(s.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		hashes := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		rest := trimmed[hashes:]
		if hashes > 6 || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		if title := strings.TrimSpace(rest); title != "" {
			return title
		}
	}

	// No heading found, generate a title
	return "Slide " + strconv.Itoa(s.Index+1)
}
