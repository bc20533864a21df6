package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

func newExportCmd() *cobra.Command {
	names := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		names = append(names, string(f))
	}

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a slide deck to HTML, Markdown, PDF or PNG images",
		Long: `Export a stored slide deck, or a local file with --file.

The images format writes one PNG per slide into the output directory.

Example:
  slidedeck export 3 --format pdf
  slidedeck export --file talk.md --format images -o slides/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringP("format", "f", string(export.FormatHTML), "Export format ("+strings.Join(names, ", ")+")")
	cmd.Flags().StringP("output", "o", "", "Output file, or directory for images")
	cmd.Flags().String("file", "", "Export a local document instead of a stored one")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	if (file == "") == (len(args) == 0) {
		return fmt.Errorf("%w: give either a document id or --file", entities.ErrValidation)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	doc, name, err := exportSource(cmd, a, args, file)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = defaultExportPath(name, format)
	}

	slides := renderer.NewSlideRendererAdapter()
	decks, err := renderer.NewTemplateRenderer(slides)
	if err != nil {
		return fmt.Errorf("loading deck template: %w", err)
	}

	result, err := export.NewService(slides, decks, *a.Logger()).
		Export(cmd.Context(), doc, a.parser.View(doc.Content), export.Options{Format: format, Output: output})
	if err != nil {
		return err
	}

	for _, path := range result.Paths {
		fmt.Fprintln(a.out, path)
	}
	return nil
}

// exportSource loads the document to export and a base name for its output
func exportSource(cmd *cobra.Command, a *app, args []string, file string) (*entities.Document, string, error) {
	if file != "" {
		text, err := readDocument(cmd, file)
		if err != nil {
			return nil, "", err
		}

		p := a.parser.Parse(text).Payload(text, a.cfg.Editor.GetAccessLevel(), a.cfg.Editor.GetDefaultTitle())
		doc := &entities.Document{
			Title:       p.Title,
			Subtitle:    p.Subtitle,
			Author:      p.Author,
			PresentedAt: p.PresentedAt,
			Content:     p.Content,
			AccessLevel: p.AccessLevel,
		}

		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if file == "-" {
			name = "deck"
		}
		return doc, name, nil
	}

	id, err := documentIDArg(args, 0)
	if err != nil {
		return nil, "", err
	}

	doc, err := a.store.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, "", fmt.Errorf("slide deck #%s: %w", id, err)
		}
		return nil, "", err
	}
	return doc, "deck-" + id.String(), nil
}

func defaultExportPath(name string, format export.Format) string {
	if format == export.FormatImages {
		return name + "-slides"
	}
	return name + format.Extension()
}
