// Package sqlstore is the relational backend: a SQLite-backed
// implementation of the storage contract, generic over any entity type
// that supplies a Mapping.
//
// One DB wraps one live connection (the pool is pinned to a single
// connection; SQLite has one writer at a time). Each entity type gets its
// own Store over that shared DB. Setup must run exactly once per entity
// type and database; the create-table statements are deliberately not
// idempotent, so a second Setup fails loudly instead of masking a reused
// database file.
//
// Identities are the int64 row ids SQLite assigns on insert. Statement
// text comes only from the mappings and the query builder; caller values
// travel exclusively as bound parameters.
//
// # Known limitation
//
// Loading users is an N+1 access pattern: each scanned user row issues a
// secondary query for its owned tasks. There is no batching. This keeps
// every table's row format flat and is fine at the result-set sizes this
// layer is designed for.
package sqlstore
