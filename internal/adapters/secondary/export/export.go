// Package export writes a stored slide deck to files outside the store.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// Format is an export target
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatImages   Format = "images"
)

// Formats lists the supported targets in help order
var Formats = []Format{FormatHTML, FormatMarkdown, FormatPDF, FormatImages}

// ParseFormat resolves a format name, accepting common aliases
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "images", "png":
		return FormatImages, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", entities.ErrValidation, name)
	}
}

// Extension returns the file extension written for f
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// SlideRenderer turns slide markdown into HTML
type SlideRenderer interface {
	RenderSlide(slide entities.Slide) (string, error)
}

// DeckRenderer renders a whole document as a standalone page
type DeckRenderer interface {
	RenderDeck(doc *entities.Document, view entities.DocumentView) ([]byte, error)
}

// Options selects the format and destination of an export. For images
// Output is a directory; otherwise it is a file.
type Options struct {
	Format Format
	Output string
}

// Result describes the files written by an export
type Result struct {
	Format Format   `json:"format"`
	Paths  []string `json:"paths"`
	Pages  int      `json:"pages"`
	Bytes  int64    `json:"bytes"`
}

// Service exports documents in every supported format
type Service struct {
	slides SlideRenderer
	decks  DeckRenderer
	logger zerolog.Logger
}

// NewService creates an export service
func NewService(slides SlideRenderer, decks DeckRenderer, logger zerolog.Logger) *Service {
	return &Service{
		slides: slides,
		decks:  decks,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// Export writes doc, whose derived structure is view, according to opts
func (s *Service) Export(ctx context.Context, doc *entities.Document, view entities.DocumentView, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New("nothing to export")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("%w: export output path is required", entities.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result *Result
		err    error
	)

	switch opts.Format {
	case FormatHTML:
		result, err = s.exportHTML(doc, view, opts.Output)
	case FormatMarkdown:
		result, err = writeFile(opts.Output, FormatMarkdown, []byte(doc.Content), len(view.Slides))
	case FormatPDF:
		result, err = s.exportPDF(ctx, doc, view, opts.Output)
	case FormatImages:
		result, err = s.exportImages(ctx, view, opts.Output)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", entities.ErrValidation, opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", opts.Format, err)
	}

	s.logger.Info().
		Str("format", string(result.Format)).
		Int("pages", result.Pages).
		Int64("bytes", result.Bytes).
		Strs("paths", result.Paths).
		Msg("deck exported")

	return result, nil
}

func (s *Service) exportHTML(doc *entities.Document, view entities.DocumentView, output string) (*Result, error) {
	page, err := s.decks.RenderDeck(doc, view)
	if err != nil {
		return nil, err
	}
	return writeFile(output, FormatHTML, page, len(view.Slides))
}

// slideContents renders every slide and reduces the HTML to drawable blocks
func (s *Service) slideContents(ctx context.Context, view entities.DocumentView) ([]SlideContent, error) {
	contents := make([]SlideContent, 0, len(view.Slides))
	for _, slide := range view.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rendered, err := s.slides.RenderSlide(slide)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", slide.Index+1, err)
		}

		content, err := ExtractContent(rendered)
		if err != nil {
			return nil, fmt.Errorf("reading slide %d: %w", slide.Index+1, err)
		}
		if content.Title == "" {
			content.Title = slide.Title
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func writeFile(path string, format Format, data []byte, pages int) (*Result, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return &Result{Format: format, Paths: []string{path}, Pages: pages, Bytes: int64(len(data))}, nil
}
