package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// newBrowser is replaced in tests
var newBrowser = func(logger zerolog.Logger) ports.BrowserLauncher {
	return browser.NewLauncher(logger)
}

func newOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a rendered slide deck in the browser",
		Long: `Open the rendered deck page of a stored document. The page is served
by "slidedeck serve", or by the remote server when --server is set.

Example:
  slidedeck open 4
  slidedeck open 4 --print`,
		Args: cobra.ExactArgs(1),
		RunE: runOpen,
	}

	cmd.Flags().Bool("print", false, "Print the deck URL instead of opening it")

	return cmd
}

func runOpen(cmd *cobra.Command, args []string) error {
	id, err := documentIDArg(args, 0)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if _, err := a.store.Get(cmd.Context(), id); err != nil {
		return err
	}

	url := deckURL(a.cfg, id)

	if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
		fmt.Fprintln(a.out, url)
		return nil
	}

	if err := newBrowser(*a.Logger()).Open(url); err != nil {
		return fmt.Errorf("%w (the deck is at %s)", err, url)
	}
	fmt.Fprintf(a.errOut, "Opened %s\n", url)
	return nil
}

// deckURL locates the rendered page of a document
func deckURL(cfg *entities.Config, id entities.DocumentID) string {
	base := strings.TrimRight(cfg.Store.BaseURL, "/")
	if cfg.Store.GetDriver() != entities.StoreDriverRemote || base == "" {
		host := cfg.Server.Host
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "localhost"
		}
		base = "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
	}
	return base + "/decks/" + id.String()
}
