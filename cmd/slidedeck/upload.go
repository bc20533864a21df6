package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files and print their URLs",
		Long: `Upload files to the asset store and print one URL per file.
With --into, a markdown image reference for each upload is appended to the
stored document and the document is saved.

Example:
  slidedeck upload diagram.png
  slidedeck upload chart.svg photo.jpg --into 12`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().Int64("into", 0, "Append image references to this document")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	into, _ := cmd.Flags().GetInt64("into")
	if into < 0 {
		return fmt.Errorf("%w: invalid document id %d", entities.ErrValidation, into)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	session := a.newSession()
	defer session.Close()

	if into > 0 {
		if err := session.Open(cmd.Context(), entities.DocumentID(into)); err != nil {
			return err
		}
	}

	for _, path := range args {
		url, err := uploadFile(cmd.Context(), session.Upload, path)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, url)

		if into > 0 {
			text := session.Text()
			session.InsertAt(len(text), imageReference(text, path, url))
		}
	}

	if into > 0 {
		return session.Save(cmd.Context())
	}
	return nil
}

// uploadFile opens path and hands it to upload with a content type guessed
// from its extension
func uploadFile(ctx context.Context, upload func(context.Context, ...ports.Upload) (string, error), path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is supplied by the user
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return upload(ctx, ports.Upload{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        file,
	})
}

// imageReference is the markdown appended to text for an uploaded file
func imageReference(text, path, url string) string {
	alt := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ref := fmt.Sprintf("![%s](%s)\n", alt, url)
	if text != "" && !strings.HasSuffix(text, "\n") {
		ref = "\n" + ref
	}
	return ref
}
