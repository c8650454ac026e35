package editlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/insightdelivered/statement-desk/internal/notice"
)

// Form edits a single record as a group of fields, like the account header
// above a transaction table. Save persists through save; Cancel restores the
// value the form had when editing began.
type Form[T any] struct {
	name   string
	fields Schema[T]
	save   func(ctx context.Context, value T) error
	notify notice.Notifier
	logger *slog.Logger
	guard  *Guard

	mu       sync.Mutex
	value    T
	snapshot T
	editing  bool
}

// NewForm builds a field group. Only Name, Fields and Validate of schema are
// used.
func NewForm[T any](schema Schema[T], save func(ctx context.Context, value T) error, opts Options) *Form[T] {
	if opts.Notifier == nil {
		opts.Notifier = notice.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Guard == nil {
		opts.Guard = NewGuard()
	}
	return &Form[T]{
		name:   schema.Name,
		fields: schema,
		save:   save,
		notify: opts.Notifier,
		logger: opts.Logger.With("form", schema.Name),
		guard:  opts.Guard,
	}
}

// Seed sets the persisted value and leaves edit mode.
func (f *Form[T]) Seed(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value, f.snapshot, f.editing = v, v, false
}

// Value is the current, possibly unsaved, value.
func (f *Form[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Form[T]) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing
}

// Begin switches the group into edit mode.
func (f *Form[T]) Begin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.editing {
		f.snapshot = f.value
		f.editing = true
	}
}

// Set updates one field from raw input.
func (f *Form[T]) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.editing {
		return ErrNotEditing
	}
	if f.guard.Busy(ActionPersist) {
		return ErrBusy
	}
	next, err := f.fields.apply(f.value, field, value)
	if err != nil {
		return err
	}
	f.value = next
	return nil
}

// Save persists the group. On failure the form stays in edit mode.
func (f *Form[T]) Save(ctx context.Context) error {
	release, err := f.guard.Acquire(ActionPersist)
	if err != nil {
		return err
	}
	defer release()

	f.mu.Lock()
	if !f.editing {
		f.mu.Unlock()
		return ErrNotEditing
	}
	v := f.value
	f.mu.Unlock()

	if err := f.fields.Check(v); err != nil {
		f.notify.Notify(notice.Failure(f.name, "Please fill in all required fields correctly", err))
		return err
	}
	if err := f.save(ctx, v); err != nil {
		f.logger.Warn("save failed", "err", err)
		f.notify.Notify(notice.Failure(f.name, "Error while saving the data", err))
		return fmt.Errorf("save %s: %w", f.name, err)
	}

	f.mu.Lock()
	f.snapshot = v
	f.editing = false
	f.mu.Unlock()
	f.notify.Notify(notice.Success(f.name, "Changes saved successfully"))
	return nil
}

// Cancel leaves edit mode and restores the value from before Begin. It is
// refused while a save is in flight.
func (f *Form[T]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.guard.Busy(ActionPersist) {
		return ErrBusy
	}
	f.value = f.snapshot
	f.editing = false
	return nil
}
