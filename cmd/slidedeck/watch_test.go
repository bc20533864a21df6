package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/store/sqlite"
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newWatchLoop(t *testing.T, path string, autosave bool) (*watchLoop, *sqlite.Store, *bytes.Buffer) {
	t.Helper()

	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	session := services.NewEditorSession(store, nil, parser.NewDocumentParserAdapter(), services.EditorOptions{})
	t.Cleanup(session.Close)

	var out bytes.Buffer
	return &watchLoop{
		session:  session,
		path:     path,
		format:   formatText,
		autosave: autosave,
		out:      &out,
		read: func(p string) (string, error) {
			data, err := os.ReadFile(p)
			return string(data), err
		},
		logger: zerolog.Nop(),
	}, store, &out
}

func TestWatchLoop_Refresh(t *testing.T) {
	path := writeFile(t, t.TempDir(), "talk.md", talk)

	t.Run("prints the derived view", func(t *testing.T) {
		loop, store, out := newWatchLoop(t, path, false)

		require.NoError(t, loop.refresh(context.Background()))
		assert.Contains(t, out.String(), "Title: Concurrency Patterns")
		assert.Contains(t, out.String(), "2 slide(s)")

		_, saved := loop.session.ID()
		assert.False(t, saved)

		page, err := store.List(context.Background(), 0, 5)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("autosave creates then updates", func(t *testing.T) {
		loop, store, _ := newWatchLoop(t, path, true)
		ctx := context.Background()

		require.NoError(t, loop.refresh(ctx))
		id, saved := loop.session.ID()
		require.True(t, saved)

		require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Renamed\n---\n# Only"), 0600))
		require.NoError(t, loop.refresh(ctx))

		again, _ := loop.session.ID()
		assert.Equal(t, id, again)

		doc, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", doc.Title)

		page, err := store.List(ctx, 0, 5)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("unreadable file", func(t *testing.T) {
		loop, _, _ := newWatchLoop(t, filepath.Join(t.TempDir(), "gone.md"), false)
		assert.Error(t, loop.refresh(context.Background()))
	})
}

func TestWatchLoop_Run(t *testing.T) {
	path := writeFile(t, t.TempDir(), "talk.md", "# One")
	loop, _, out := newWatchLoop(t, path, false)

	events := make(chan ports.FileChangeEvent, 3)
	require.NoError(t, os.WriteFile(path, []byte("# One\n---\n# Two"), 0600))
	events <- ports.FileChangeEvent{Path: path, Type: ports.Modified, Timestamp: time.Now()}
	events <- ports.FileChangeEvent{Path: path, Type: ports.Deleted, Timestamp: time.Now()}
	close(events)

	require.NoError(t, loop.run(context.Background(), events))

	assert.Equal(t, 1, strings.Count(out.String(), "slide(s)"))
	assert.Contains(t, out.String(), "2 slide(s)")
	assert.Equal(t, "# One\n---\n# Two", loop.session.Text())
}

func TestWatchLoop_RunStopsOnCancel(t *testing.T) {
	loop, _, _ := newWatchLoop(t, "unused.md", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, loop.run(ctx, make(chan ports.FileChangeEvent)))
}

func TestWatchCommand(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, home, "talk.md", "# First")

	cmd := newRootCmd()
	var stdout, stderr syncBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"watch", path, "--polling", "--autosave", "--format", "json"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), `"title": "First"`)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Second\n---\n# Second slide"), 0600))

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), `"title": "Second slide"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	store, err := sqlite.NewStore(filepath.Join(home, ".slidedeck"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.Eventually(t, func() bool {
		doc, err := store.Get(context.Background(), 1)
		return err == nil && doc.Title == "Second"
	}, time.Second, 20*time.Millisecond)

	_, err = store.Get(context.Background(), 2)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestWatchCommand_Validation(t *testing.T) {
	isolate(t)

	res := execute(t, "", "watch", "talk.md", "--format", "xml")
	assert.ErrorIs(t, res.err, entities.ErrValidation)

	res = execute(t, "", "watch", "talk.md", "--id", "-1")
	assert.ErrorIs(t, res.err, entities.ErrValidation)

	res = execute(t, "", "watch", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, res.err)
}
