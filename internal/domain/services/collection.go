package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const (
	MsgListFailure   = "Could not load the archive"
	MsgCloneSuccess  = "Cloned"
	MsgCloneFailure  = "Could not clone the slide deck"
	DefaultPageSize  = 5
	archivePageTitle = "Archive"
)

// PageState is a snapshot of the collection listing
type PageState struct {
	Items           []entities.DocumentSummary
	PageIndex       int
	PageCount       int
	PendingDeleteID entities.DocumentID
}

// HasPendingDelete reports whether a delete awaits confirmation
func (p PageState) HasPendingDelete() bool {
	return !p.PendingDeleteID.IsZero()
}

// CollectionOptions configures a Collection
type CollectionOptions struct {
	PageSize       int
	ClonePlacement entities.ClonePlacement
	Telemetry      ports.Telemetry
	Notifier       ports.Notifier
	Logger         *zerolog.Logger
}

// Collection is a paginated listing of document summaries with a two-step delete.
//
// Page loads are sequenced: only the most recently requested page may replace
// the visible items, whatever order the responses arrive in. Close bumps the same
// sequence, so responses arriving after it never touch the listing.
type Collection struct {
	store     ports.DocumentStore
	pageSize  int
	placement entities.ClonePlacement
	telemetry ports.Telemetry
	notifier  ports.Notifier
	logger    zerolog.Logger

	mu       sync.Mutex
	state    PageState
	loadSeq  uint64
	deleting entities.DocumentID
	closed   bool
}

// NewCollection creates an empty collection showing page 0
func NewCollection(store ports.DocumentStore, opts CollectionOptions) *Collection {
	c := &Collection{
		store:     store,
		pageSize:  opts.PageSize,
		placement: opts.ClonePlacement,
		telemetry: opts.Telemetry,
		notifier:  opts.Notifier,
		logger:    zerolog.Nop(),
		state: PageState{
			Items:     []entities.DocumentSummary{},
			PageCount: 1,
		},
	}

	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.placement == "" {
		c.placement = entities.ClonePlacementHead
	}
	if c.telemetry == nil {
		c.telemetry = ports.NopTelemetry{}
	}
	if c.notifier == nil {
		c.notifier = ports.NotifierFunc(func(ports.NoticeLevel, string) {})
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "archive").Logger()
	}

	c.telemetry.RecordPageView(archivePageTitle)
	return c
}

// PageSize returns the number of items requested per page
func (c *Collection) PageSize() int {
	return c.pageSize
}

// State returns a copy of the current listing
func (c *Collection) State() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.state
	snapshot.Items = append([]entities.DocumentSummary(nil), c.state.Items...)
	return snapshot
}

// LoadPage selects page and fetches its items. The page index changes
// immediately; items change only when this is still the latest request.
func (c *Collection) LoadPage(ctx context.Context, page int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must not be negative, got %d", entities.ErrValidation, page)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return entities.ErrListingClosed
	}
	c.state.PageIndex = page
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	result, err := c.store.List(ctx, page, c.pageSize)

	c.mu.Lock()
	if seq != c.loadSeq {
		closed := c.closed
		c.mu.Unlock()
		c.logger.Debug().Int("page", page).Bool("closed", closed).Msg("dropping superseded page")
		return nil
	}
	if err == nil {
		c.state.Items = append([]entities.DocumentSummary{}, result.Items...)
		c.state.PageCount = max(1, result.TotalPages)
	}
	c.mu.Unlock()

	if err != nil {
		c.telemetry.RecordException(fmt.Sprintf("archive page %d load failed", page))
		c.notifier.Notify(ports.NoticeError, MsgListFailure)
		c.logger.Warn().Err(err).Int("page", page).Msg("page load failed")
		return &entities.OperationError{Op: "list", Err: err}
	}

	c.logger.Debug().Int("page", page).Int("items", len(result.Items)).Int("pages", result.TotalPages).Msg("page loaded")
	return nil
}

// RequestDelete marks id as awaiting confirmation. A zero id clears the request.
func (c *Collection) RequestDelete(id entities.DocumentID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PendingDeleteID = id
}

// CancelDelete clears any pending delete without contacting the store
func (c *Collection) CancelDelete() {
	c.RequestDelete(0)
}

// ConfirmDelete deletes the pending document. The pending mark is cleared on
// success and on failure; the item leaves the listing only on success. While a
// delete is in flight its id is claimed, so a second confirm returns
// ErrNoPendingDelete without contacting the store.
func (c *Collection) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return entities.ErrListingClosed
	}
	id := c.state.PendingDeleteID
	if id.IsZero() || id == c.deleting {
		c.mu.Unlock()
		return entities.ErrNoPendingDelete
	}
	c.deleting = id
	c.mu.Unlock()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	if c.deleting == id {
		c.deleting = 0
	}
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug().Stringer("id", id).Msg("dropping delete result for closed listing")
		return err
	}
	if c.state.PendingDeleteID == id {
		c.state.PendingDeleteID = 0
	}
	if err == nil {
		c.removeLocked(id)
	}
	c.mu.Unlock()

	if err != nil {
		c.telemetry.RecordException(fmt.Sprintf("slide #%s delete failed", id))
		c.notifier.Notify(ports.NoticeError, MsgDeleteFailure)
		c.logger.Warn().Err(err).Stringer("id", id).Msg("delete failed")
		return &entities.OperationError{Op: "delete", ID: id, Err: err}
	}

	c.telemetry.RecordEvent(telemetryCategory, fmt.Sprintf("#%s deleted", id))
	c.notifier.Notify(ports.NoticeSuccess, MsgDeleteSuccess)
	c.logger.Info().Stringer("id", id).Msg("document deleted")
	return nil
}

// Clone copies id and merges the copy into the visible page. When another page
// load started while the clone was in flight the merge is skipped; the copy
// shows up on the next load.
func (c *Collection) Clone(ctx context.Context, id entities.DocumentID) (*entities.DocumentSummary, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: cannot clone a document without id", entities.ErrValidation)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, entities.ErrListingClosed
	}
	seq := c.loadSeq
	c.mu.Unlock()

	summary, err := c.store.Clone(ctx, id)

	c.mu.Lock()
	closed := c.closed
	merged := err == nil && !closed && seq == c.loadSeq
	if merged {
		c.mergeLocked(*summary)
	}
	c.mu.Unlock()

	if closed {
		c.logger.Debug().Stringer("id", id).Msg("dropping clone result for closed listing")
		return summary, err
	}
	if err != nil {
		c.telemetry.RecordException(fmt.Sprintf("slide #%s clone failed", id))
		c.notifier.Notify(ports.NoticeError, MsgCloneFailure)
		c.logger.Warn().Err(err).Stringer("id", id).Msg("clone failed")
		return nil, &entities.OperationError{Op: "clone", ID: id, Err: err}
	}

	c.telemetry.RecordEvent(telemetryCategory, fmt.Sprintf("#%s cloned as #%s", id, summary.ID))
	c.notifier.Notify(ports.NoticeSuccess, MsgCloneSuccess)
	c.logger.Info().Stringer("id", id).Stringer("clone", summary.ID).Bool("merged", merged).Msg("document cloned")
	return summary, nil
}

// Close discards the listing; in-flight responses become no-ops
func (c *Collection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.loadSeq++
}

func (c *Collection) removeLocked(id entities.DocumentID) {
	kept := c.state.Items[:0:0]
	for _, item := range c.state.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.state.Items = kept
}

func (c *Collection) mergeLocked(summary entities.DocumentSummary) {
	c.removeLocked(summary.ID)

	if c.placement == entities.ClonePlacementTail {
		c.state.Items = append(c.state.Items, summary)
		return
	}

	items := make([]entities.DocumentSummary, 0, len(c.state.Items)+1)
	items = append(items, summary)
	c.state.Items = append(items, c.state.Items...)
}
