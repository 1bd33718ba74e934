package memstore

import (
	"fmt"

	"github.com/google/uuid"
)

// KeyGenerator draws identity tokens for the hash-indexed store. The
// default draws random UUIDs; tests substitute a canned sequence to pin
// identities.
type KeyGenerator interface {
	// NewKey returns a fresh token.
	NewKey() (uuid.UUID, error)
}

// RandomKeys generates UUIDv4 tokens. Collision probability is negligible
// by construction, and the store still checks each draw against its index.
type RandomKeys struct{}

// NewKey implements KeyGenerator.
func (RandomKeys) NewKey() (uuid.UUID, error) {
	key, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}
