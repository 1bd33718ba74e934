// Package repo defines the storage contract every backend implements.
//
// The contract is generic over the entity type T and an identity type ID
// chosen by each backend. Identity schemes are deliberately incompatible
// across backends (database row id, insertion position, random token,
// document key) and must never be assumed interchangeable.
//
// Operations and their outcome shapes:
//   - All: every stored record, backend-defined order
//   - Get: three-way outcome - value, absence (ok=false, nil error), failure
//   - Save: persists a copy and returns a freshly assigned identity
//   - Find (Searchable only): conjunction of equality credentials, optional cap
//
// Absence is a success case, never an error. Infrastructure failures
// (malformed statement, lost connection, row mapping, key generation)
// propagate as *Error with a stable code; no operation returns partial
// results.
//
// This package contains contract and error types only. All backend packages
// import repo; repo imports nothing internal. This keeps the contract the
// foundational layer with no circular dependencies.
package repo
