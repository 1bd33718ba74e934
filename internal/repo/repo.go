package repo

import "context"

// Repository is the uniform storage contract. A store picks its own identity
// type ID and assigns a fresh identity on every Save; callers treat
// identities as opaque and scoped to the store instance that issued them.
//
// Stores are not safe for concurrent use. Callers that share a store across
// goroutines must synchronize externally.
type Repository[T any, ID comparable] interface {
	// All returns every stored record. Order is backend-defined: insertion
	// order for sequential and relational stores, unspecified for
	// hash-indexed stores.
	All(ctx context.Context) ([]T, error)

	// Get returns the record stored under id. Absence is signaled by
	// ok=false with a nil error; an error means the lookup itself failed.
	Get(ctx context.Context, id ID) (T, bool, error)

	// Save persists an independent copy of entity and returns the identity
	// assigned to it. Save always inserts: saving the same value twice
	// yields two records with distinct identities.
	Save(ctx context.Context, entity T) (ID, error)
}

// Credential is one equality predicate in a find call: a searchable field
// and the value it must equal. Concrete credentials form a closed, per-type
// enumeration declared next to the entity; field names never come from
// external input.
type Credential interface {
	// CredentialField names the searchable field.
	CredentialField() string

	// CredentialValue returns the value the field must equal.
	CredentialValue() any
}

// Searchable extends Repository with credential-based lookup.
type Searchable[T any, ID comparable] interface {
	Repository[T, ID]

	// Find returns the records matching the conjunction of all credentials.
	// An empty credential list behaves like All. A limit <= 0 means no cap;
	// otherwise at most limit records are returned. Order is backend-defined,
	// as with All. No match is an empty result, not an error.
	Find(ctx context.Context, creds []Credential, limit int) ([]T, error)
}
