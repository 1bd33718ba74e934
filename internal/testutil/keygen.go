package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FixedKeyGenerator returns predetermined tokens for the hash-indexed
// store. This pins identities for golden comparison, and seeding the same
// token twice exercises the store's duplicate-draw failure path.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedKeyGenerator struct {
	mu   sync.Mutex
	keys []uuid.UUID
	idx  int
}

// NewFixedKeyGenerator creates a generator that returns keys in order.
func NewFixedKeyGenerator(keys ...uuid.UUID) *FixedKeyGenerator {
	return &FixedKeyGenerator{keys: keys}
}

// SequentialKeyGenerator returns a generator over n distinct, stable
// tokens: 00000000-0000-4000-8000-000000000000, ...0001, and so on.
func SequentialKeyGenerator(n int) *FixedKeyGenerator {
	keys := make([]uuid.UUID, n)
	for i := range keys {
		keys[i] = uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", i))
	}
	return NewFixedKeyGenerator(keys...)
}

// NewKey returns the next predetermined token, or an error once all are
// consumed. Exhaustion surfaces as a store key-generation failure instead
// of a panic, matching the storage layer's error policy.
func (g *FixedKeyGenerator) NewKey() (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.keys) {
		return uuid.Nil, fmt.Errorf("fixed key generator: all %d keys consumed", len(g.keys))
	}
	key := g.keys[g.idx]
	g.idx++
	return key, nil
}
