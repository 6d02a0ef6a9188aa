// Package syncer is the synchronization layer between in-memory state, the
// per-user local cache, and the remote tabular store. Mutations apply
// optimistically: the local cache write always completes before the remote
// call is attempted, and add/toggle/edit revert to their pre-mutation
// snapshot when the remote store rejects the change. An unreachable store is
// not a rejection: the local write stands and the coordinator drops to
// local-only mode until the next login.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rfduarte/feira/internal/category"
	"github.com/rfduarte/feira/internal/localstore"
	"github.com/rfduarte/feira/internal/model"
	"github.com/rfduarte/feira/internal/price"
	"github.com/rfduarte/feira/internal/sheets"
	"github.com/rfduarte/feira/internal/stats"
)

// ErrNotFound is returned when a referenced item id does not exist in the
// current in-memory collection.
var ErrNotFound = errors.New("item not found")

// ValidationError reports caller input that fails local constraints. No
// state is mutated when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// State is the coordinator lifecycle state. SignedOut is represented by the
// coordinator's absence from the manager.
type State string

const (
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateSignedOut    State = "signed_out"
)

// Status is the externally visible sync state for one user.
type Status struct {
	State           State  `json:"state"`
	RemoteAvailable bool   `json:"remote_available"`
	Syncing         bool   `json:"syncing"`
	SpreadsheetID   string `json:"spreadsheet_id,omitempty"`
}

// Event describes a state change worth broadcasting to connected clients.
type Event struct {
	Entity string
	Action string
	ID     string
	Email  string
	Extra  map[string]any
}

// NotifyFunc receives events. May be nil.
type NotifyFunc func(Event)

// Remote is the tabular store surface the coordinator writes through.
// Implemented by sheets.Client; faked in tests.
type Remote interface {
	FindOrCreateSpreadsheet(ctx context.Context, token, email string) (string, error)
	ReadRange(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error)
	AppendRow(ctx context.Context, token, spreadsheetID, sheetName string, row []string) error
	UpdateRange(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error
	ClearRange(ctx context.Context, token, spreadsheetID, rng string) error
	DeleteRows(ctx context.Context, token, spreadsheetID, sheetName string, rows []int) error
}

const (
	itemsDataRange   = sheets.SheetItems + "!A2:H1000"
	historyDataRange = sheets.SheetHistory + "!A2:H1000"
	itemsIDRange     = sheets.SheetItems + "!A2:A"
)

func today() string {
	return time.Now().Format("02/01/2006")
}

// Coordinator owns the reconciled state for one authenticated user. All
// fields are guarded by mu; remote calls happen outside the lock and their
// completions are discarded if the epoch moved (logout) in the meantime.
type Coordinator struct {
	mu sync.Mutex

	local  *localstore.Store
	remote Remote
	logger *slog.Logger
	notify NotifyFunc

	session         model.UserSession
	token           string
	spreadsheetID   string
	remoteAvailable bool
	state           State
	epoch           uint64
	inflight        int

	items   []model.Item
	history []model.HistoryEntry

	// rows maps item id to its 1-based sheet row (header included). Removals
	// clear rows in place, so surviving rows keep their indices; only
	// finalizePurchase deletes rows and recomputes the map.
	rows    map[string]int
	nextRow int
}

func newCoordinator(session model.UserSession, token string, local *localstore.Store, remote Remote, notify NotifyFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		local:   local,
		remote:  remote,
		logger:  logger,
		notify:  notify,
		session: session,
		token:   token,
		state:   StateInitializing,
		rows:    make(map[string]int),
		nextRow: 2,
	}
}

// initialize hydrates from the local cache, then makes one best-effort
// attempt to provision and read the remote store. It always finishes in
// StateReady; remote failure only leaves remoteAvailable false.
func (c *Coordinator) initialize(ctx context.Context) {
	email := c.session.Email

	items, err := c.local.LoadItems(email)
	if err != nil {
		c.logger.Error("hydrate items from cache", "email", email, "error", err)
		items = []model.Item{}
	}
	history, err := c.local.LoadHistory(email)
	if err != nil {
		c.logger.Error("hydrate history from cache", "email", email, "error", err)
		history = []model.HistoryEntry{}
	}

	c.mu.Lock()
	c.items = items
	c.history = history
	c.rebuildRowsLocked()
	c.mu.Unlock()

	c.provisionAndLoad(ctx)

	c.mu.Lock()
	c.state = StateReady
	status := c.statusLocked()
	c.mu.Unlock()

	c.emit(Event{Entity: "sync", Action: "status", Email: email, Extra: map[string]any{
		"remote_available": status.RemoteAvailable,
	}})
}

// rebuildRowsLocked assigns sequential sheet rows to the in-memory items.
// Used after cache hydration and after a full remote reload, when the
// in-memory order mirrors the sheet order.
func (c *Coordinator) rebuildRowsLocked() {
	c.rows = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.rows[item.ID] = i + 2
	}
	c.nextRow = len(c.items) + 2
}

func (c *Coordinator) provisionAndLoad(ctx context.Context) {
	email := c.session.Email

	if c.token == "" {
		c.logger.Info("no credential, staying local-only", "email", email)
		return
	}

	spreadsheetID, err := c.local.SpreadsheetID(email)
	if err != nil {
		c.logger.Error("read cached spreadsheet id", "email", email, "error", err)
	}
	if spreadsheetID == "" {
		spreadsheetID, err = c.remote.FindOrCreateSpreadsheet(ctx, c.token, email)
		if err != nil {
			c.logger.Warn("provision spreadsheet, falling back to cache", "email", email, "error", err)
			return
		}
		if err := c.local.SaveSpreadsheetID(email, spreadsheetID); err != nil {
			c.logger.Error("cache spreadsheet id", "email", email, "error", err)
		}
	}

	itemRows, err := c.remote.ReadRange(ctx, c.token, spreadsheetID, itemsDataRange)
	if err != nil {
		c.logger.Warn("read items from remote, falling back to cache", "email", email, "error", err)
		return
	}
	historyRows, err := c.remote.ReadRange(ctx, c.token, spreadsheetID, historyDataRange)
	if err != nil {
		c.logger.Warn("read history from remote, falling back to cache", "email", email, "error", err)
		return
	}

	items := make([]model.Item, 0, len(itemRows))
	rows := make(map[string]int, len(itemRows))
	for i, row := range itemRows {
		item, ok := parseItemRow(row)
		if !ok {
			continue // cleared row left by a removal
		}
		items = append(items, item)
		rows[item.ID] = i + 2
	}

	history := make([]model.HistoryEntry, 0, len(historyRows))
	for _, row := range historyRows {
		entry, ok := parseHistoryRow(row)
		if !ok {
			continue
		}
		history = append(history, entry)
	}

	c.mu.Lock()
	c.spreadsheetID = spreadsheetID
	c.remoteAvailable = true
	c.items = items
	c.history = history
	c.rows = rows
	c.nextRow = len(itemRows) + 2
	c.mu.Unlock()

	if err := c.local.SaveItems(email, items); err != nil {
		c.logger.Error("cache items snapshot", "email", email, "error", err)
	}
	if err := c.local.SaveHistory(email, history); err != nil {
		c.logger.Error("cache history snapshot", "email", email, "error", err)
	}
}

// invalidate detaches the coordinator from its session: in-flight remote
// completions see a moved epoch and discard their results.
func (c *Coordinator) invalidate() {
	c.mu.Lock()
	c.epoch++
	c.items = nil
	c.history = nil
	c.rows = make(map[string]int)
	c.state = StateSignedOut
	c.mu.Unlock()
}

func (c *Coordinator) emit(ev Event) {
	if c.notify == nil {
		return
	}
	ev.Email = c.session.Email
	c.notify(ev)
}

// Session returns the identity this coordinator serves.
func (c *Coordinator) Session() model.UserSession {
	return c.session
}

// Items returns a copy of the current item collection.
func (c *Coordinator) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Item(nil), c.items...)
}

// History returns a copy of the current history collection.
func (c *Coordinator) History() []model.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.HistoryEntry(nil), c.history...)
}

// Statistics recomputes the derived statistics from the current items.
// Never memoized, so it cannot drift after a mutation.
func (c *Coordinator) Statistics() model.Statistics {
	c.mu.Lock()
	items := append([]model.Item(nil), c.items...)
	c.mu.Unlock()
	return stats.Compute(items)
}

// SyncStatus returns the current sync state.
func (c *Coordinator) SyncStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Coordinator) statusLocked() Status {
	return Status{
		State:           c.state,
		RemoteAvailable: c.remoteAvailable,
		Syncing:         c.inflight > 0,
		SpreadsheetID:   c.spreadsheetID,
	}
}

func (c *Coordinator) beginRemoteLocked() (epoch uint64, token, spreadsheetID string) {
	c.inflight++
	return c.epoch, c.token, c.spreadsheetID
}

func (c *Coordinator) endRemote() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}

// degrade switches the coordinator to local-only mode after the remote store
// stopped responding. Mutations keep applying locally; the next login
// reattaches. No-op if the session ended in the meantime.
func (c *Coordinator) degrade(epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || !c.remoteAvailable {
		c.mu.Unlock()
		return
	}
	c.remoteAvailable = false
	c.mu.Unlock()
	c.logger.Warn("remote store unreachable, switching to local-only", "email", c.session.Email)
	c.emit(Event{Entity: "sync", Action: "status", Extra: map[string]any{
		"remote_available": false,
	}})
}

// AddItemInput is the caller-supplied shape of a new item. UnitPrice accepts
// either comma or period decimal separators.
type AddItemInput struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
	UnitPrice string `json:"unit_price"`
}

// AddItem validates the input, appends a new pending item, writes the local
// snapshot, then attempts the remote append. A remote failure reverts both
// the in-memory collection and the cache to the pre-addition snapshot.
func (c *Coordinator) AddItem(ctx context.Context, input AddItemInput) (*model.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationErrorf("name is required")
	}
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, validationErrorf("quantity must be at least 1")
	}
	unitPrice, err := price.Parse(input.UnitPrice)
	if err != nil {
		return nil, validationErrorf("invalid price %q", input.UnitPrice)
	}

	cat := input.Category
	if strings.TrimSpace(cat) == "" {
		cat = category.Categorize(name)
	} else {
		cat = category.Normalize(cat)
	}

	item := model.Item{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  qty,
		Category:  cat,
		UnitPrice: unitPrice,
		Status:    model.StatusPending,
		CreatedAt: today(),
	}

	c.mu.Lock()
	c.items = append(c.items, item)
	c.rows[item.ID] = c.nextRow
	c.nextRow++
	if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
		c.dropItemLocked(item.ID)
		c.mu.Unlock()
		return nil, fmt.Errorf("write local cache: %w", err)
	}
	if !c.remoteAvailable {
		c.mu.Unlock()
		c.emit(Event{Entity: "item", Action: "added", ID: item.ID})
		return &item, nil
	}
	epoch, token, spreadsheetID := c.beginRemoteLocked()
	c.mu.Unlock()

	remoteErr := c.remote.AppendRow(ctx, token, spreadsheetID, sheets.SheetItems, itemRow(item))
	c.endRemote()

	if remoteErr != nil {
		if errors.Is(remoteErr, sheets.ErrUnavailable) {
			c.degrade(epoch)
			c.emit(Event{Entity: "item", Action: "added", ID: item.ID})
			return &item, nil
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return nil, fmt.Errorf("session ended during sync: %w", remoteErr)
		}
		c.dropItemLocked(item.ID)
		if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
			c.logger.Error("revert local cache after failed add", "error", err)
		}
		c.mu.Unlock()
		c.logger.Warn("remote append rejected, addition rolled back", "item", item.ID, "error", remoteErr)
		return nil, fmt.Errorf("sync new item to remote store: %w", remoteErr)
	}

	c.emit(Event{Entity: "item", Action: "added", ID: item.ID})
	return &item, nil
}

func (c *Coordinator) dropItemLocked(id string) {
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if row, ok := c.rows[id]; ok && row == c.nextRow-1 {
		c.nextRow--
	}
	delete(c.rows, id)
}

func (c *Coordinator) indexLocked(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// ToggleStatus flips an item between pending and purchased, setting or
// clearing its purchase date. The remote write covers the status through
// date cells in one call, so the row can never hold a half-applied toggle;
// if the store rejects it, the toggled fields revert so the visible list
// never shows a state the remote store refused.
func (c *Coordinator) ToggleStatus(ctx context.Context, id string) (*model.Item, error) {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil, ErrNotFound
	}

	prev := c.items[idx]
	if prev.Status == model.StatusPurchased {
		c.items[idx].Status = model.StatusPending
		c.items[idx].PurchasedAt = ""
	} else {
		c.items[idx].Status = model.StatusPurchased
		c.items[idx].PurchasedAt = today()
	}
	updated := c.items[idx]

	if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
		c.items[idx] = prev
		c.mu.Unlock()
		return nil, fmt.Errorf("write local cache: %w", err)
	}
	if !c.remoteAvailable {
		c.mu.Unlock()
		c.emit(Event{Entity: "item", Action: "updated", ID: id})
		return &updated, nil
	}
	row := c.rows[id]
	epoch, token, spreadsheetID := c.beginRemoteLocked()
	c.mu.Unlock()

	// One write spanning F:H keeps the toggle atomic; the created-at cell in
	// between is rewritten with its current value.
	toggleRange := fmt.Sprintf("%s!F%d:H%d", sheets.SheetItems, row, row)
	remoteErr := c.remote.UpdateRange(ctx, token, spreadsheetID, toggleRange, [][]string{{updated.Status, updated.CreatedAt, updated.PurchasedAt}})
	c.endRemote()

	if remoteErr != nil {
		if errors.Is(remoteErr, sheets.ErrUnavailable) {
			c.degrade(epoch)
			c.emit(Event{Entity: "item", Action: "updated", ID: id})
			return &updated, nil
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return nil, fmt.Errorf("session ended during sync: %w", remoteErr)
		}
		if i := c.indexLocked(id); i >= 0 {
			c.items[i].Status = prev.Status
			c.items[i].PurchasedAt = prev.PurchasedAt
			if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
				c.logger.Error("revert local cache after failed toggle", "error", err)
			}
		}
		c.mu.Unlock()
		c.logger.Warn("remote update rejected, toggle rolled back", "item", id, "error", remoteErr)
		return nil, fmt.Errorf("sync status to remote store: %w", remoteErr)
	}

	c.emit(Event{Entity: "item", Action: "updated", ID: id})
	return &updated, nil
}

// EditItemInput patches an existing item; nil fields are left unchanged.
type EditItemInput struct {
	Name      *string `json:"name"`
	Quantity  *int    `json:"quantity"`
	Category  *string `json:"category"`
	UnitPrice *string `json:"unit_price"`
}

// EditItem applies the patch, writes through locally, then updates the full
// remote row. A remote failure restores the pre-edit item and cache.
func (c *Coordinator) EditItem(ctx context.Context, id string, patch EditItemInput) (*model.Item, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationErrorf("name is required")
	}
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, validationErrorf("quantity must be at least 1")
	}
	var unitPrice float64
	if patch.UnitPrice != nil {
		parsed, err := price.Parse(*patch.UnitPrice)
		if err != nil {
			return nil, validationErrorf("invalid price %q", *patch.UnitPrice)
		}
		unitPrice = parsed
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil, ErrNotFound
	}

	prev := c.items[idx]
	if patch.Name != nil {
		c.items[idx].Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Quantity != nil {
		c.items[idx].Quantity = *patch.Quantity
	}
	if patch.Category != nil {
		c.items[idx].Category = category.Normalize(*patch.Category)
	}
	if patch.UnitPrice != nil {
		c.items[idx].UnitPrice = unitPrice
	}
	updated := c.items[idx]

	if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
		c.items[idx] = prev
		c.mu.Unlock()
		return nil, fmt.Errorf("write local cache: %w", err)
	}
	if !c.remoteAvailable {
		c.mu.Unlock()
		c.emit(Event{Entity: "item", Action: "updated", ID: id})
		return &updated, nil
	}
	row := c.rows[id]
	epoch, token, spreadsheetID := c.beginRemoteLocked()
	c.mu.Unlock()

	rowRange := fmt.Sprintf("%s!A%d:H%d", sheets.SheetItems, row, row)
	remoteErr := c.remote.UpdateRange(ctx, token, spreadsheetID, rowRange, [][]string{itemRow(updated)})
	c.endRemote()

	if remoteErr != nil {
		if errors.Is(remoteErr, sheets.ErrUnavailable) {
			c.degrade(epoch)
			c.emit(Event{Entity: "item", Action: "updated", ID: id})
			return &updated, nil
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return nil, fmt.Errorf("session ended during sync: %w", remoteErr)
		}
		if i := c.indexLocked(id); i >= 0 {
			c.items[i] = prev
			if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
				c.logger.Error("revert local cache after failed edit", "error", err)
			}
		}
		c.mu.Unlock()
		c.logger.Warn("remote update rejected, edit rolled back", "item", id, "error", remoteErr)
		return nil, fmt.Errorf("sync edit to remote store: %w", remoteErr)
	}

	c.emit(Event{Entity: "item", Action: "updated", ID: id})
	return &updated, nil
}

// RemoveItem removes the item locally and clears its remote row. Removal is
// user-confirmed, so a remote failure is logged but never restores the item;
// the blank row is skipped on the next full reload.
func (c *Coordinator) RemoveItem(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}

	row := c.rows[id]
	removed := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	delete(c.rows, id)

	if err := c.local.SaveItems(c.session.Email, c.items); err != nil {
		c.items = append(c.items[:idx], append([]model.Item{removed}, c.items[idx:]...)...)
		c.rows[id] = row
		c.mu.Unlock()
		return fmt.Errorf("write local cache: %w", err)
	}
	if !c.remoteAvailable {
		c.mu.Unlock()
		c.emit(Event{Entity: "item", Action: "removed", ID: id})
		return nil
	}
	epoch, token, spreadsheetID := c.beginRemoteLocked()
	c.mu.Unlock()

	rowRange := fmt.Sprintf("%s!A%d:H%d", sheets.SheetItems, row, row)
	if err := c.remote.ClearRange(ctx, token, spreadsheetID, rowRange); err != nil {
		c.logger.Warn("clear remote row failed, will reconcile on next reload", "item", id, "error", err)
		if errors.Is(err, sheets.ErrUnavailable) {
			c.degrade(epoch)
		}
	}
	c.endRemote()

	c.emit(Event{Entity: "item", Action: "removed", ID: id})
	return nil
}

// FinalizePurchase moves every purchased item into the history. The local
// change is authoritative once the cache write succeeds; remote
// reconciliation (append history rows, delete item rows) is best-effort and
// never rolled back. Returns the number of items finalized.
func (c *Coordinator) FinalizePurchase(ctx context.Context) (int, error) {
	c.mu.Lock()
	var purchased []model.Item
	var remaining []model.Item
	for _, item := range c.items {
		if item.Status == model.StatusPurchased {
			purchased = append(purchased, item)
		} else {
			remaining = append(remaining, item)
		}
	}
	if len(purchased) == 0 {
		c.mu.Unlock()
		return 0, nil
	}

	date := today()
	entries := make([]model.HistoryEntry, 0, len(purchased))
	for _, item := range purchased {
		entries = append(entries, model.HistoryEntry{
			Date:         date,
			ItemName:     item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Category:     item.Category,
			Store:        model.DefaultStore,
			Total:        price.Round(item.UnitPrice * float64(item.Quantity)),
			SourceItemID: item.ID,
		})
	}

	prevItems := c.items
	prevHistory := c.history
	c.items = remaining
	c.history = append(c.history, entries...)
	for _, item := range purchased {
		delete(c.rows, item.ID)
	}

	email := c.session.Email
	if err := c.local.SaveItems(email, c.items); err != nil {
		c.items = prevItems
		c.history = prevHistory
		c.rebuildRowsLocked()
		c.mu.Unlock()
		return 0, fmt.Errorf("write local cache: %w", err)
	}
	if err := c.local.SaveHistory(email, c.history); err != nil {
		c.logger.Error("write history snapshot", "email", email, "error", err)
	}

	if !c.remoteAvailable {
		c.mu.Unlock()
		c.emit(Event{Entity: "purchase", Action: "finalized", Extra: map[string]any{"count": len(purchased)}})
		return len(purchased), nil
	}
	epoch, token, spreadsheetID := c.beginRemoteLocked()
	c.mu.Unlock()

	c.reconcileFinalize(ctx, epoch, token, spreadsheetID, purchased, entries)
	c.endRemote()

	c.emit(Event{Entity: "purchase", Action: "finalized", Extra: map[string]any{"count": len(purchased)}})
	return len(purchased), nil
}

// reconcileFinalize pushes a finalized purchase to the remote store: history
// rows appended, item rows deleted bottom-up, then the row map shifted for
// survivors. Failures are combined and logged; the local state stands.
func (c *Coordinator) reconcileFinalize(ctx context.Context, epoch uint64, token, spreadsheetID string, purchased []model.Item, entries []model.HistoryEntry) {
	var errs error
	for _, entry := range entries {
		if err := c.remote.AppendRow(ctx, token, spreadsheetID, sheets.SheetHistory, historyRow(entry)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("append history row %q: %w", entry.ItemName, err))
		}
	}

	purchasedIDs := make(map[string]bool, len(purchased))
	for _, item := range purchased {
		purchasedIDs[item.ID] = true
	}

	var deleted []int
	idRows, err := c.remote.ReadRange(ctx, token, spreadsheetID, itemsIDRange)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("read item ids: %w", err))
	} else {
		for i, row := range idRows {
			if len(row) > 0 && purchasedIDs[row[0]] {
				deleted = append(deleted, i+2)
			}
		}
		if err := c.remote.DeleteRows(ctx, token, spreadsheetID, sheets.SheetItems, deleted); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete item rows: %w", err))
			deleted = nil
		}
	}

	if errs != nil {
		c.logger.Warn("finalize reconciliation incomplete, local state stands", "error", errs)
		if errors.Is(errs, sheets.ErrUnavailable) {
			c.degrade(epoch)
		}
	}
	if len(deleted) == 0 {
		return
	}

	// Row deletion shifts every row below it; move the survivors up.
	c.mu.Lock()
	if c.epoch == epoch {
		for id, row := range c.rows {
			shift := 0
			for _, d := range deleted {
				if d < row {
					shift++
				}
			}
			c.rows[id] = row - shift
		}
		c.nextRow -= len(deleted)
	}
	c.mu.Unlock()
}
