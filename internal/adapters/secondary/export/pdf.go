package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

const (
	pdfMargin   = 20.0
	pdfBodyFont = 14.0
	pdfCodeFont = 11.0
)

// exportPDF lays every slide out on its own landscape A4 page
func (s *Service) exportPDF(ctx context.Context, doc *entities.Document, view entities.DocumentView, output string) (*Result, error) {
	contents, err := s.slideContents(ctx, view)
	if err != nil {
		return nil, err
	}

	data, err := renderPDF(doc, contents)
	if err != nil {
		return nil, err
	}

	return writeFile(output, FormatPDF, data, len(contents))
}

// renderPDF returns the PDF bytes for the given slides. A deck without slides
// still gets a title page so the file is never empty.
func renderPDF(doc *entities.Document, slides []SlideContent) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetCreator("slidedeck", true)

	// Core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(slides) == 0 {
		slides = []SlideContent{{Title: doc.Title}}
	}

	for _, slide := range slides {
		pdf.AddPage()

		if slide.Title != "" {
			pdf.SetFont("Helvetica", "B", 26)
			pdf.SetTextColor(45, 55, 72)
			pdf.MultiCell(0, 12, tr(slide.Title), "", "L", false)
			pdf.Ln(6)
		}

		for _, block := range slide.Blocks {
			writePDFBlock(pdf, tr, block)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("laying out PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writePDFBlock(pdf *gofpdf.Fpdf, tr func(string) string, block Block) {
	pdf.SetTextColor(74, 85, 104)

	switch block.Kind {
	case BlockHeading:
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 9, tr(block.Text), "", "L", false)
	case BlockItem:
		pdf.SetFont("Helvetica", "", pdfBodyFont)
		pdf.SetX(pdfMargin + 6)
		pdf.MultiCell(0, 7, tr("- "+block.Text), "", "L", false)
	case BlockCode:
		pdf.SetFont("Courier", "", pdfCodeFont)
		pdf.SetFillColor(240, 242, 245)
		pdf.MultiCell(0, 5.5, tr(block.Text), "", "L", true)
	case BlockQuote:
		pdf.SetFont("Helvetica", "I", pdfBodyFont)
		pdf.SetX(pdfMargin + 10)
		pdf.MultiCell(0, 7, tr(block.Text), "", "L", false)
	default:
		pdf.SetFont("Helvetica", "", pdfBodyFont)
		pdf.MultiCell(0, 7, tr(block.Text), "", "L", false)
	}

	pdf.Ln(3)
}
