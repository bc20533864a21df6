package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// Output formats of the parse command
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Show the metadata and slides of a document",
		Long: `Parse a document and print its metadata block and slides.
Use - to read the document from standard input.

Example:
  slidedeck parse talk.md
  cat talk.md | slidedeck parse - --format json --html`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringP("format", "f", formatText, "Output format: text, json or yaml")
	cmd.Flags().Bool("html", false, "Include rendered slide HTML (json only)")

	return cmd
}

// validateFormat rejects unknown output formats before any work is done
func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q (must be text, json or yaml)", entities.ErrValidation, format)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	withHTML, _ := cmd.Flags().GetBool("html")

	if err := validateFormat(format); err != nil {
		return err
	}

	text, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	view := parser.BuildView(text)
	if withHTML {
		view, err = renderer.NewSlideRendererAdapter().RenderView(view)
		if err != nil {
			return err
		}
	}

	return writeView(cmd.OutOrStdout(), view, format)
}

// writeView prints a document view in the requested format
func writeView(w io.Writer, view entities.DocumentView, format string) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)

	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return encoder.Close()

	default:
		writeViewText(w, view)
		return nil
	}
}

func writeViewText(w io.Writer, view entities.DocumentView) {
	keys := make([]string, 0, len(view.Metadata))
	for key := range view.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(w, "%s: %s\n", metadataLabel(key), view.Metadata[key])
	}
	if len(keys) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d slide(s)\n", view.SlideCount())
	for _, slide := range view.Slides {
		lines := strings.Count(strings.TrimSpace(slide.Content), "\n") + 1
		fmt.Fprintf(w, "  %2d. %s (%d lines)\n", slide.Index+1, slide.Title, lines)
	}
}

// metadataLabel turns a metadata key such as presentedAt or presented_at
// into a display label such as "Presented At"
func metadataLabel(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}

	return cases.Title(language.Und).String(strings.Join(strings.Fields(b.String()), " "))
}
