package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-derive slides whenever a document file changes",
		Long: `Watch a document file and print its metadata and slides after every
change. With --autosave each change is also saved to the store, creating the
document on the first save unless --id names an existing one.

Example:
  slidedeck watch talk.md
  slidedeck watch talk.md --autosave --id 12`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Int64("id", 0, "Save changes to this existing document")
	cmd.Flags().Bool("autosave", false, "Save after every change (overrides config)")
	cmd.Flags().Bool("polling", false, "Poll the file instead of using change notifications")
	cmd.Flags().StringP("format", "f", formatText, "Output format: text, json or yaml")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, _ := cmd.Flags().GetString("format")
	polling, _ := cmd.Flags().GetBool("polling")
	id, _ := cmd.Flags().GetInt64("id")

	if err := validateFormat(format); err != nil {
		return err
	}
	if id < 0 {
		return fmt.Errorf("%w: invalid document id %d", entities.ErrValidation, id)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	session := a.newSession()
	defer session.Close()

	if id > 0 {
		if err := session.Open(ctx, entities.DocumentID(id)); err != nil {
			return err
		}
	}

	w := watcher.New(watcher.Options{
		Debounce: a.cfg.Editor.GetAutosaveDebounce(),
		Polling:  polling,
	}, *a.Logger())
	defer func() { _ = w.Stop() }()

	events, err := w.Watch(ctx, path)
	if err != nil {
		return err
	}

	loop := &watchLoop{
		session:  session,
		path:     path,
		format:   format,
		autosave: a.cfg.Editor.Autosave,
		out:      a.out,
		read: func(p string) (string, error) {
			return readDocument(cmd, p)
		},
		logger: a.log.Component("watch"),
	}

	if err := loop.refresh(ctx); err != nil {
		return err
	}

	return loop.run(ctx, events)
}

// watchLoop feeds file changes into an editor session
type watchLoop struct {
	session  *services.EditorSession
	path     string
	format   string
	autosave bool
	out      io.Writer
	read     func(path string) (string, error)
	logger   zerolog.Logger
}

// run handles events until ctx ends or the watcher closes its channel
func (l *watchLoop) run(ctx context.Context, events <-chan ports.FileChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(ctx, event)
		}
	}
}

func (l *watchLoop) handle(ctx context.Context, event ports.FileChangeEvent) {
	l.logger.Debug().Str("path", event.Path).Stringer("change", event.Type).Msg("change received")

	if event.Type == ports.Deleted {
		l.logger.Warn().Str("path", event.Path).Msg("document file removed, waiting for it to return")
		return
	}

	if err := l.refresh(ctx); err != nil {
		l.logger.Warn().Err(err).Str("path", l.path).Msg("refresh failed")
	}
}

// refresh reloads the file into the session, prints the derived view and
// saves when autosave is on. Save failures are reported by the session and
// do not stop the loop.
func (l *watchLoop) refresh(ctx context.Context) error {
	text, err := l.read(l.path)
	if err != nil {
		return err
	}

	l.session.SetText(text)
	if err := writeView(l.out, l.session.View(), l.format); err != nil {
		return err
	}

	if !l.autosave {
		return nil
	}

	if err := l.session.Save(ctx); err != nil {
		l.logger.Warn().Err(err).Msg("autosave failed")
		return nil
	}

	if id, ok := l.session.ID(); ok {
		l.logger.Info().Stringer("id", id).Msg("autosaved")
	}
	return nil
}
