// Package memstore holds the two in-memory backends: a sequential store
// with positional identities and a hash-indexed store with random token
// identities. Both satisfy the storage contract with full value semantics
// and no SQL involvement, and neither is safe for concurrent use.
package memstore
