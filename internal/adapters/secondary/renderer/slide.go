package renderer

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// SlideRendererAdapter renders slide markdown with Goldmark and sanitizes the result
type SlideRendererAdapter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewSlideRendererAdapter creates a new slide renderer
func NewSlideRendererAdapter() *SlideRendererAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // raw HTML is allowed in, the policy decides what comes out
		),
	)

	return &SlideRendererAdapter{
		md:     md,
		policy: NewSanitizer(),
	}
}

// RenderSlide converts a slide's markdown content to sanitized HTML
func (r *SlideRendererAdapter) RenderSlide(slide entities.Slide) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(slide.Content), &buf); err != nil {
		return "", fmt.Errorf("rendering slide %d: %w", slide.Index, err)
	}

	return r.policy.Sanitize(buf.String()), nil
}

// RenderView returns a copy of view with every slide's HTML populated
func (r *SlideRendererAdapter) RenderView(view entities.DocumentView) (entities.DocumentView, error) {
	metadata := make(map[string]string, len(view.Metadata))
	for k, v := range view.Metadata {
		metadata[k] = r.policy.Sanitize(v)
	}

	slides := make([]entities.Slide, len(view.Slides))
	for i, slide := range view.Slides {
		rendered, err := r.RenderSlide(slide)
		if err != nil {
			return entities.DocumentView{}, err
		}
		slide.Title = r.policy.Sanitize(slide.Title)
		slide.HTML = rendered
		slides[i] = slide
	}

	return entities.DocumentView{Metadata: metadata, Slides: slides}, nil
}

// NewSanitizer creates a restrictive HTML policy for slide content
func NewSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Allow basic text formatting
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a").AllowAttrs("href").OnElements("a")
	p.AllowElements("img").AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span", "code")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)

	// Heading anchors
	p.AllowAttrs("class", "id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "span")

	return p
}

// Ensure SlideRendererAdapter implements ports.PreviewRenderer
var _ ports.PreviewRenderer = (*SlideRendererAdapter)(nil)
