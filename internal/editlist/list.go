// Package editlist implements the inline editable record list shared by the
// dashboard tables: a remote store, a draft overlay seeded from it, a
// single-row edit session, a delete confirmation gate and a paginated view.
package editlist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-desk/internal/notice"
)

// Store is the remote side of a list.
type Store[T any] interface {
	// Fetch loads the collection for key.
	Fetch(ctx context.Context, key string) ([]T, error)
	// PersistAll replaces the server-side collection with rows.
	PersistAll(ctx context.Context, key string, rows []T) error
	// Delete removes one persisted record.
	Delete(ctx context.Context, key string, id string) error
}

// RowStore is implemented by stores whose backend has per-row create and
// update endpoints. When present it is used instead of PersistAll. Create may
// return the record with its server-assigned id.
type RowStore[T any] interface {
	Create(ctx context.Context, key string, rec T) (T, error)
	Update(ctx context.Context, key string, rec T) (T, error)
}

// Options tunes a list.
type Options struct {
	PageSize int
	Notifier notice.Notifier
	Logger   *slog.Logger
	// Guard may be shared with other components persisting the same resource.
	Guard *Guard
	// RefetchOnCreate reloads the collection after a new row was persisted so
	// the provisional id is replaced by the server one.
	RefetchOnCreate bool
}

// ProvisionalPrefix marks ids generated for rows not yet saved.
const ProvisionalPrefix = "new-"

// IsProvisional reports whether id was generated locally for a new row.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

// States of the row edit state machine.
const (
	StateViewing = "viewing"
	StateEditing = "editing"
)

type session[T any] struct {
	id       string
	isNew    bool
	snapshot T
}

// Prompt is a pending delete confirmation.
type Prompt struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OK      string `json:"okText"`
	Cancel  string `json:"cancelText"`
}

// List is an editable record list bound to one remote key.
type List[T any] struct {
	key    string
	schema Schema[T]
	store  Store[T]
	opts   Options
	notify notice.Notifier
	logger *slog.Logger
	guard  *Guard

	mu      sync.Mutex
	loaded  bool
	remote  map[string]bool
	draft   *Overlay[T]
	edit    *session[T]
	page    Pagination
	sortBy  string
	desc    bool
	pending *Prompt
}

// New builds a list for key. Construction does no I/O; call Load.
func New[T any](key string, schema Schema[T], store Store[T], opts Options) *List[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Notifier == nil {
		opts.Notifier = notice.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Guard == nil {
		opts.Guard = NewGuard()
	}
	return &List[T]{
		key:    key,
		schema: schema,
		store:  store,
		opts:   opts,
		notify: opts.Notifier,
		logger: opts.Logger.With("list", schema.plural(), "key", key),
		guard:  opts.Guard,
		remote: map[string]bool{},
		draft:  NewOverlay(schema.ID),
		page:   Pagination{Current: 1, PageSize: opts.PageSize},
	}
}

// Key is the remote key the list is bound to.
func (l *List[T]) Key() string {
	return l.key
}

// Load fetches the collection and seeds the overlay with it. On failure the
// previous overlay is kept and an error notice is raised.
func (l *List[T]) Load(ctx context.Context) error {
	release, err := l.guard.Acquire(ActionFetch)
	if err != nil {
		return err
	}
	defer release()

	rows, err := l.store.Fetch(ctx, l.key)
	if err != nil {
		l.logger.Warn("fetch failed", "err", err)
		l.notify.Notify(notice.Failure(l.schema.plural(), "Failed to fetch "+l.schema.plural(), err))
		return fmt.Errorf("fetch %s: %w", l.schema.plural(), err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seedLocked(rows)
	return nil
}

// Seed replaces the overlay and the remote snapshot with rows, ending any
// edit session and pending prompt.
func (l *List[T]) Seed(rows []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seedLocked(rows)
}

func (l *List[T]) seedLocked(rows []T) {
	l.draft.Seed(rows)
	l.remote = make(map[string]bool, len(rows))
	for _, r := range rows {
		l.remote[l.schema.ID(r)] = true
	}
	l.edit = nil
	l.pending = nil
	l.loaded = true
	l.page.Total = l.draft.Len()
	l.page = l.page.Clamp()
}

// Loaded reports whether a fetch has succeeded at least once.
func (l *List[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Rows returns the overlay in collection order.
func (l *List[T]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft.Rows()
}

// Get returns one record of the overlay.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft.Get(id)
}

// Session returns the active edit session, if any.
func (l *List[T]) Session() (id string, isNew bool, editing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.edit == nil {
		return "", false, false
	}
	return l.edit.id, l.edit.isNew, true
}

// StartEdit puts an existing row into edit mode. Only one row may be edited at
// a time.
func (l *List[T]) StartEdit(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.edit != nil {
		if l.edit.id == id {
			return nil
		}
		return ErrEditInProgress
	}
	rec, ok := l.draft.Get(id)
	if !ok {
		return ErrNotFound
	}
	l.edit = &session[T]{id: id, snapshot: rec}
	return nil
}

// StartNewRow appends a placeholder row, moves to the page that shows it and
// puts it into edit mode. It returns the provisional id.
func (l *List[T]) StartNewRow() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.edit != nil {
		return "", ErrEditInProgress
	}

	id := ProvisionalPrefix + uuid.NewString()
	rec := l.schema.SetID(l.schema.New(), id)
	total := l.draft.Insert(rec)

	l.page.Total = total
	l.page.Current = (total + l.page.PageSize - 1) / l.page.PageSize
	l.page = l.page.Clamp()
	l.edit = &session[T]{id: id, isNew: true, snapshot: rec}
	return id, nil
}

// UpdateField sets one field of the row under edit from raw input.
func (l *List[T]) UpdateField(id, field, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.edit == nil || l.edit.id != id {
		return ErrNotEditing
	}
	if l.guard.Busy(ActionPersist) {
		return ErrBusy
	}
	rec, ok := l.draft.Get(id)
	if !ok {
		return ErrNotFound
	}
	next, err := l.schema.apply(rec, field, value)
	if err != nil {
		return err
	}
	return l.draft.Replace(id, next)
}

// Commit persists the row under edit. New rows are created, existing rows
// updated, by persisting the whole overlay unless the store has per-row
// endpoints. On failure the session stays open with its edits.
func (l *List[T]) Commit(ctx context.Context) error {
	release, err := l.guard.Acquire(ActionPersist)
	if err != nil {
		return err
	}
	defer release()

	l.mu.Lock()
	if l.edit == nil {
		l.mu.Unlock()
		return ErrNotEditing
	}
	sess := *l.edit
	rec, ok := l.draft.Get(sess.id)
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}
	if err := l.schema.Check(rec); err != nil {
		l.mu.Unlock()
		l.notify.Notify(notice.Failure(l.schema.plural(), "Please fill in all required fields correctly", err))
		return err
	}
	rows := l.draft.Rows()
	l.mu.Unlock()

	saved := rec
	if rs, ok := l.store.(RowStore[T]); ok {
		if sess.isNew {
			saved, err = rs.Create(ctx, l.key, rec)
		} else {
			saved, err = rs.Update(ctx, l.key, rec)
		}
	} else {
		err = l.store.PersistAll(ctx, l.key, rows)
	}
	if err != nil {
		l.logger.Warn("save failed", "id", sess.id, "new", sess.isNew, "err", err)
		l.notify.Notify(notice.Failure(l.schema.plural(), "Failed to save "+l.schema.Name, err))
		return fmt.Errorf("save %s %s: %w", l.schema.Name, sess.id, err)
	}
	if l.schema.ID(saved) == "" {
		saved = l.schema.SetID(saved, sess.id)
	}

	l.mu.Lock()
	if err := l.draft.Replace(sess.id, saved); err != nil {
		l.logger.Warn("saved row vanished from overlay", "id", sess.id)
	}
	l.remote[l.schema.ID(saved)] = true
	if l.edit != nil && l.edit.id == sess.id {
		l.edit = nil
	}
	l.mu.Unlock()

	if sess.isNew {
		l.notify.Notify(notice.Success(l.schema.plural(), "New "+l.schema.Name+" added successfully"))
	} else {
		l.notify.Notify(notice.Success(l.schema.plural(), l.schema.title()+" updated successfully"))
	}

	if sess.isNew && l.opts.RefetchOnCreate {
		release()
		if err := l.Load(ctx); err != nil {
			l.logger.Warn("refetch after create failed", "err", err)
		}
	}
	return nil
}

// Cancel ends the edit session. A new row is discarded; an existing row is
// restored to its value at StartEdit.
func (l *List[T]) Cancel() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.edit == nil {
		return ErrNotEditing
	}
	if l.guard.Busy(ActionPersist) {
		return ErrBusy
	}
	sess := l.edit
	if sess.isNew {
		if err := l.draft.Remove(sess.id); err != nil {
			l.logger.Warn("cancel: new row missing from overlay", "id", sess.id, "err", err)
		}
		l.page.Total = l.draft.Len()
		l.page = l.page.Clamp()
	} else if err := l.draft.Replace(sess.id, sess.snapshot); err != nil {
		l.logger.Warn("cancel: row missing from overlay", "id", sess.id, "err", err)
	}
	l.edit = nil
	return nil
}

// RequestDelete opens the confirmation prompt for id.
func (l *List[T]) RequestDelete(id string) (Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		return Prompt{}, ErrPromptPending
	}
	if _, ok := l.draft.Get(id); !ok {
		return Prompt{}, ErrNotFound
	}
	p := Prompt{
		ID:      id,
		Title:   "Delete " + l.schema.Name,
		Content: "Are you sure you want to delete this " + l.schema.Name + "? This action cannot be undone.",
		OK:      "Yes",
		Cancel:  "No",
	}
	l.pending = &p
	return p, nil
}

// Pending returns the open confirmation prompt, if any.
func (l *List[T]) Pending() (Prompt, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return Prompt{}, false
	}
	return *l.pending, true
}

// DeclineDelete closes the prompt without changing anything.
func (l *List[T]) DeclineDelete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil {
		return ErrNoPrompt
	}
	l.pending = nil
	return nil
}

// ConfirmDelete accepts the prompt: persisted rows are deleted on the server
// first, then removed from the overlay. A row that never reached the server is
// only removed locally.
func (l *List[T]) ConfirmDelete(ctx context.Context) error {
	release, err := l.guard.Acquire(ActionDelete)
	if err != nil {
		return err
	}
	defer release()

	l.mu.Lock()
	if l.pending == nil {
		l.mu.Unlock()
		return ErrNoPrompt
	}
	if l.guard.Busy(ActionPersist) {
		l.mu.Unlock()
		return ErrBusy
	}
	id := l.pending.ID
	l.pending = nil
	localOnly := !l.remote[id] || (l.edit != nil && l.edit.id == id && l.edit.isNew)
	l.mu.Unlock()

	if !localOnly {
		if err := l.store.Delete(ctx, l.key, id); err != nil {
			l.logger.Warn("delete failed", "id", id, "err", err)
			l.notify.Notify(notice.Failure(l.schema.plural(), "Failed to delete "+l.schema.Name, err))
			return fmt.Errorf("delete %s %s: %w", l.schema.Name, id, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.draft.Remove(id); err != nil {
		return err
	}
	delete(l.remote, id)
	if l.edit != nil && l.edit.id == id {
		l.edit = nil
	}
	l.page.Total = l.draft.Len()
	l.page = l.page.Clamp()
	l.notify.Notify(notice.Success(l.schema.plural(), l.schema.title()+" deleted successfully"))
	return nil
}

// SetPage changes the page and page size. The page is clamped to the
// available range.
func (l *List[T]) SetPage(page, size int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if size > 0 {
		l.page.PageSize = size
	}
	l.page.Current = page
	l.page.Total = l.draft.Len()
	l.page = l.page.Clamp()
}

// SortBy orders the view by field. An empty field restores collection order.
// Sorting never reorders the overlay itself.
func (l *List[T]) SortBy(field string, desc bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if field == "" {
		l.sortBy, l.desc = "", false
		return nil
	}
	f, ok := l.schema.Field(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if f.Less == nil {
		return fmt.Errorf("%w: %q", ErrNotSortable, field)
	}
	l.sortBy, l.desc = field, desc
	return nil
}
