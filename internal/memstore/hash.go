package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

var _ repo.Repository[todo.User, uuid.UUID] = (*HashStore[todo.User])(nil)

// HashStore is the hash-indexed in-memory backend: records keyed by a
// randomly generated token. All returns values in unspecified (map
// iteration) order; callers must not rely on it.
type HashStore[T Cloner[T]] struct {
	keys  KeyGenerator
	items map[uuid.UUID]T
}

// NewHashStore returns an empty hash-indexed store drawing random tokens.
func NewHashStore[T Cloner[T]]() *HashStore[T] {
	return NewHashStoreWithKeys[T](RandomKeys{})
}

// NewHashStoreWithKeys returns an empty store drawing tokens from keys.
// Tests use this to pin identities.
func NewHashStoreWithKeys[T Cloner[T]](keys KeyGenerator) *HashStore[T] {
	return &HashStore[T]{keys: keys, items: make(map[uuid.UUID]T)}
}

// All returns a copy of every record, in unspecified order.
func (s *HashStore[T]) All(_ context.Context) ([]T, error) {
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out, nil
}

// Get is a direct key lookup.
func (s *HashStore[T]) Get(_ context.Context, id uuid.UUID) (T, bool, error) {
	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return item.Clone(), true, nil
}

// Save draws a fresh token, stores a copy under it, and returns it. A
// duplicate draw is a key-generation failure, never a silent overwrite.
func (s *HashStore[T]) Save(_ context.Context, entity T) (uuid.UUID, error) {
	key, err := s.keys.NewKey()
	if err != nil {
		return uuid.Nil, repo.NewError(repo.ErrCodeKeyGen, "memstore.save", err)
	}
	if _, taken := s.items[key]; taken {
		return uuid.Nil, repo.NewError(repo.ErrCodeKeyGen, "memstore.save", fmt.Errorf("duplicate key %s", key))
	}
	s.items[key] = entity.Clone()
	return key, nil
}
