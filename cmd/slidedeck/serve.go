package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/slidedeck/internal/adapters/primary/http"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/assets"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the slide deck REST API and live preview",
		Long: `Start an HTTP server exposing the document store, file uploads,
a live preview socket and rendered decks.

With --watch, every change to a local file is rendered and pushed to the
connected preview sockets.

Example:
  slidedeck serve
  slidedeck serve --port 9000 --host 0.0.0.0
  slidedeck serve --watch talk.md`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().String("watch", "", "Push live previews of this file to preview sockets")
	cmd.Flags().Bool("polling", false, "Poll the watched file instead of using file notifications")

	return cmd
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	if strings.Contains(config.Server.Host, " ") || strings.Contains(config.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := validateServeConfig(a.cfg); err != nil {
		return err
	}

	server, err := buildServer(a)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := server.Start(ctx, a.cfg.Server.Port, a.cfg.Server.Host); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Serving slide decks on http://%s\n", server.Addr())

	if path, _ := cmd.Flags().GetString("watch"); path != "" {
		polling, _ := cmd.Flags().GetBool("polling")
		live := services.NewLivePreview(
			watcher.New(watcher.Options{Debounce: a.cfg.Editor.GetAutosaveDebounce(), Polling: polling}, *a.Logger()),
			server,
			a.parser,
			renderer.NewSlideRendererAdapter(),
			*a.Logger(),
		)
		if err := live.Start(ctx, path); err != nil {
			_ = server.Stop(context.Background())
			return err
		}
		defer func() { _ = live.Stop() }()

		fmt.Fprintf(a.out, "Live preview of %s on ws://%s/api/preview/ws\n", path, server.Addr())
	}

	a.Logger().Info().
		Str("store", string(a.cfg.Store.GetDriver())).
		Str("environment", a.cfg.Server.Environment).
		Msg("server ready")

	<-ctx.Done()

	// The parent context is already cancelled; shutdown gets its own deadline
	return server.Stop(context.Background())
}

// buildServer wires the HTTP adapter to the configured store. Uploads are
// always kept on local disk because the server must serve them back.
func buildServer(a *app) (*httpadapter.Server, error) {
	files := a.disk
	if files == nil {
		disk, err := assets.NewDiskStore(a.cfg.Assets, *a.Logger())
		if err != nil {
			return nil, err
		}
		files = disk
	}

	slides := renderer.NewSlideRendererAdapter()
	decks, err := renderer.NewTemplateRenderer(slides)
	if err != nil {
		return nil, fmt.Errorf("loading deck template: %w", err)
	}

	return httpadapter.NewServer(
		httpadapter.Dependencies{
			Store:    a.store,
			Assets:   files,
			Parser:   a.parser,
			Renderer: slides,
			Decks:    decks,
		},
		&a.cfg.Server,
		*a.Logger(),
		httpadapter.WithArchiveConfig(a.cfg.Archive),
		httpadapter.WithEditorConfig(a.cfg.Editor),
	), nil
}
