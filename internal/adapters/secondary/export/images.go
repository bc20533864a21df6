package export

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

const (
	imageWidth  = 1280
	imageHeight = 720
)

var (
	titleColor = color.RGBA{45, 55, 72, 255}
	bodyColor  = color.RGBA{74, 85, 104, 255}
	codeColor  = color.RGBA{113, 128, 150, 255}
)

// faces holds the embedded Go fonts at slide sizes
type faces struct {
	title   font.Face
	heading font.Face
	body    font.Face
	code    font.Face
}

func loadFaces() (*faces, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}
	mono, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing mono font: %w", err)
	}

	return &faces{
		title:   truetype.NewFace(bold, &truetype.Options{Size: 52}),
		heading: truetype.NewFace(bold, &truetype.Options{Size: 36}),
		body:    truetype.NewFace(regular, &truetype.Options{Size: 30}),
		code:    truetype.NewFace(mono, &truetype.Options{Size: 24}),
	}, nil
}

// exportImages writes one PNG per slide into the output directory
func (s *Service) exportImages(ctx context.Context, view entities.DocumentView, dir string) (*Result, error) {
	contents, err := s.slideContents(ctx, view)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	ff, err := loadFaces()
	if err != nil {
		return nil, err
	}

	result := &Result{Format: FormatImages, Pages: len(contents)}
	for i, content := range contents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, fmt.Sprintf("slide-%02d.png", i+1))
		dc := drawSlide(ff, content)
		if err := dc.SavePNG(path); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}

		if info, err := os.Stat(path); err == nil {
			result.Bytes += info.Size()
		}
		result.Paths = append(result.Paths, path)
	}

	return result, nil
}

// drawSlide paints a slide on a white canvas, dropping lines that overflow
func drawSlide(ff *faces, content SlideContent) *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	margin := float64(imageWidth) * 0.08
	width := float64(imageWidth) - 2*margin
	bottom := float64(imageHeight) - margin
	y := margin

	draw := func(face font.Face, c color.Color, indent float64, lines []string, spacing float64) {
		dc.SetFontFace(face)
		dc.SetColor(c)
		for _, line := range lines {
			_, h := dc.MeasureString("Mg")
			if y+h > bottom {
				return
			}
			dc.DrawStringAnchored(line, margin+indent, y, 0, 1)
			y += h * spacing
		}
	}

	if content.Title != "" {
		dc.SetFontFace(ff.title)
		draw(ff.title, titleColor, 0, dc.WordWrap(content.Title, width), 1.3)
		y += 20
	}

	for _, block := range content.Blocks {
		switch block.Kind {
		case BlockHeading:
			dc.SetFontFace(ff.heading)
			draw(ff.heading, titleColor, 0, dc.WordWrap(block.Text, width), 1.4)
		case BlockCode:
			draw(ff.code, codeColor, 20, strings.Split(block.Text, "\n"), 1.4)
		case BlockItem:
			dc.SetFontFace(ff.body)
			draw(ff.body, bodyColor, 30, dc.WordWrap("• "+block.Text, width-30), 1.5)
		default:
			dc.SetFontFace(ff.body)
			draw(ff.body, bodyColor, 0, dc.WordWrap(block.Text, width), 1.5)
		}
		y += 12
	}

	return dc
}
