package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"

	// BuildDate is set during build
	BuildDate = "unknown"
)

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slidedeck",
		Short: "Author slide decks as one markdown document",
		Long: `slidedeck keeps a slide deck as a single text document: an optional
metadata block between --- lines followed by slides separated by --- lines.
Decks are stored locally in SQLite or in a remote slidedeck server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: ./slidedeck.toml)")
	rootCmd.PersistentFlags().String("server", "", "Use the remote store at this base URL")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory of the local SQLite store")

	rootCmd.AddCommand(
		newServeCmd(),
		newParseCmd(),
		newPushCmd(),
		newPullCmd(),
		newListCmd(),
		newRemoveCmd(),
		newCloneCmd(),
		newUploadCmd(),
		newWatchCmd(),
		newOpenCmd(),
		newExportCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
