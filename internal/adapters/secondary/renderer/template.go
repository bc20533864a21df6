package renderer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// TemplateRenderer renders a stored document as a standalone HTML deck
type TemplateRenderer struct {
	templates *template.Template
	slides    *SlideRendererAdapter
}

// NewTemplateRenderer creates a new template-based renderer
func NewTemplateRenderer(slides *SlideRendererAdapter) (*TemplateRenderer, error) {
	if slides == nil {
		slides = NewSlideRendererAdapter()
	}

	tmpl := template.New("deck").Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - slide HTML is sanitized by the slide renderer
		},
	})

	if _, err := tmpl.Parse(defaultDeckTemplate); err != nil {
		return nil, fmt.Errorf("parsing deck template: %w", err)
	}

	return &TemplateRenderer{
		templates: tmpl,
		slides:    slides,
	}, nil
}

// RenderDeck renders every slide of view inside the deck page
func (r *TemplateRenderer) RenderDeck(doc *entities.Document, view entities.DocumentView) ([]byte, error) {
	rendered, err := r.slides.RenderView(view)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title       string
		Subtitle    string
		Author      string
		PresentedAt string
		Slides      []entities.Slide
	}{
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		Author:      doc.Author,
		PresentedAt: doc.PresentedAt,
		Slides:      rendered.Slides,
	}

	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing deck template: %w", err)
	}

	return buf.Bytes(), nil
}

const defaultDeckTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #222; }
        .cover, .slide { box-sizing: border-box; width: 100vw; min-height: 100vh; padding: 6vh 8vw; background: #fff; border-bottom: 2px solid #222; }
        .cover h1 { font-size: 3em; margin-bottom: 0.2em; }
        .cover .meta { color: #666; }
        .slide h1 { font-size: 2.5em; color: #2c3e50; }
        .slide h2 { font-size: 2em; color: #34495e; }
        .slide pre { background: #f4f4f4; padding: 1em; border-radius: 4px; }
        .slide code { background: #f4f4f4; padding: 0.2em 0.4em; border-radius: 3px; }
        .slide blockquote { border-left: 4px solid #ddd; padding-left: 1em; color: #666; }
        .slide table { border-collapse: collapse; }
        .slide table th, .slide table td { border: 1px solid #ddd; padding: 0.5em; }
        .slide img { max-width: 100%; }
    </style>
</head>
<body>
    <section class="cover">
        <h1>{{.Title}}</h1>
        {{if .Subtitle}}<h2>{{.Subtitle}}</h2>{{end}}
        <div class="meta">
            {{if .Author}}<div class="author">{{.Author}}</div>{{end}}
            {{if .PresentedAt}}<div class="presented-at">{{.PresentedAt}}</div>{{end}}
        </div>
    </section>
    {{range .Slides}}
    <section class="slide" id="slide-{{.Index}}" data-index="{{.Index}}" aria-label="{{.Title}}">
        {{.HTML | safeHTML}}
    </section>
    {{end}}
</body>
</html>`
