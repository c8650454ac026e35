package editlist

import "slices"

// Overlay is the in-memory working copy of a collection. Every mutation swaps
// in a fresh backing slice, so slices returned by Rows stay valid snapshots.
type Overlay[T any] struct {
	id   func(T) string
	rows []T
}

// NewOverlay returns an empty overlay identifying records with id.
func NewOverlay[T any](id func(T) string) *Overlay[T] {
	return &Overlay[T]{id: id}
}

// Seed replaces the overlay wholesale.
func (o *Overlay[T]) Seed(rows []T) {
	o.rows = slices.Clone(rows)
}

// Rows returns the current collection in display order.
func (o *Overlay[T]) Rows() []T {
	return o.rows
}

func (o *Overlay[T]) Len() int {
	return len(o.rows)
}

func (o *Overlay[T]) index(id string) int {
	for i, r := range o.rows {
		if o.id(r) == id {
			return i
		}
	}
	return -1
}

// Get finds a record by id.
func (o *Overlay[T]) Get(id string) (T, bool) {
	if i := o.index(id); i >= 0 {
		return o.rows[i], true
	}
	var zero T
	return zero, false
}

// Replace swaps the record with the given id for rec. rec may carry a new id.
func (o *Overlay[T]) Replace(id string, rec T) error {
	i := o.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := slices.Clone(o.rows)
	next[i] = rec
	o.rows = next
	return nil
}

// Insert appends rec and returns the new length.
func (o *Overlay[T]) Insert(rec T) int {
	next := make([]T, len(o.rows), len(o.rows)+1)
	copy(next, o.rows)
	o.rows = append(next, rec)
	return len(o.rows)
}

// Remove deletes the record with the given id. Removing an absent id returns
// ErrNotFound and leaves the overlay untouched.
func (o *Overlay[T]) Remove(id string) error {
	i := o.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]T, 0, len(o.rows)-1)
	next = append(next, o.rows[:i]...)
	next = append(next, o.rows[i+1:]...)
	o.rows = next
	return nil
}
