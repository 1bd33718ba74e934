package memstore

import (
	"context"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

// Cloner is satisfied by entity types that can deep-copy themselves. Both
// in-memory stores clone on the way in and on the way out, so a caller
// mutating its copy after Save never changes what a later Get returns.
type Cloner[T any] interface {
	Clone() T
}

var _ repo.Repository[todo.User, int] = (*ListStore[todo.User])(nil)

// ListStore is the sequential in-memory backend: an ordered growable list
// where a record's identity is its position at insertion time. There is no
// credential search in this backend.
type ListStore[T Cloner[T]] struct {
	items []T
}

// NewListStore returns an empty sequential store.
func NewListStore[T Cloner[T]]() *ListStore[T] {
	return &ListStore[T]{items: []T{}}
}

// All returns a copy of every record in insertion order.
func (s *ListStore[T]) All(_ context.Context) ([]T, error) {
	out := make([]T, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out, nil
}

// Get is a bounds-checked positional lookup.
func (s *ListStore[T]) Get(_ context.Context, id int) (T, bool, error) {
	if id < 0 || id >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	return s.items[id].Clone(), true, nil
}

// Save appends a copy of the entity and returns its position.
func (s *ListStore[T]) Save(_ context.Context, entity T) (int, error) {
	s.items = append(s.items, entity.Clone())
	return len(s.items) - 1, nil
}
