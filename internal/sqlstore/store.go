package sqlstore

import (
	"context"
	"fmt"

	"github.com/stashkit/stash/internal/querysql"
	"github.com/stashkit/stash/internal/repo"
)

// Store is the relational backend for one entity type. It satisfies the
// storage contract with int64 identities assigned by SQLite on insert.
//
// All statement text comes from the entity's Mapping and the query builder;
// values only ever travel as bound parameters.
type Store[T any] struct {
	db      *DB
	mapping Mapping[T]
}

// NewStore builds a store for one entity type over a shared database.
func NewStore[T any](db *DB, mapping Mapping[T]) *Store[T] {
	return &Store[T]{db: db, mapping: mapping}
}

// Setup executes the entity's create-table statement. It must run exactly
// once per database; a second call fails with a statement error because the
// table already exists.
func (s *Store[T]) Setup(ctx context.Context) error {
	if _, err := s.db.db.ExecContext(ctx, s.mapping.CreateTable()); err != nil {
		return repo.NewError(repo.ErrCodeStatement, "sqlstore.setup", fmt.Errorf("create table %s: %w", s.mapping.Table(), err))
	}
	return nil
}

// All returns every stored record in insertion (row id) order.
func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	return s.selectWhere(ctx, "sqlstore.all", nil, 0)
}

// Get returns the record stored under id. A missing row is ok=false with a
// nil error.
func (s *Store[T]) Get(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	matches, err := s.selectWhere(ctx, "sqlstore.get", []querysql.Predicate{{Field: "id", Value: id}}, 1)
	if err != nil {
		return zero, false, err
	}
	if len(matches) == 0 {
		return zero, false, nil
	}
	return matches[0], true, nil
}

// Save inserts the entity and returns the row id SQLite assigned. When the
// mapping is a ChildBinder, child rows are inserted in the same transaction
// so the owner and its collection commit together. Save always inserts;
// saving the same value twice yields two rows.
func (s *Store[T]) Save(ctx context.Context, entity T) (int64, error) {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, repo.NewError(repo.ErrCodeConnection, "sqlstore.save", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, s.mapping.Insert(), s.mapping.Bind(entity)...)
	if err != nil {
		return 0, repo.NewError(repo.ErrCodeStatement, "sqlstore.save", fmt.Errorf("insert into %s: %w", s.mapping.Table(), err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, repo.NewError(repo.ErrCodeStatement, "sqlstore.save", fmt.Errorf("last insert id: %w", err))
	}

	if binder, ok := s.mapping.(ChildBinder[T]); ok {
		if err := binder.BindChildren(ctx, tx, id, entity); err != nil {
			return 0, repo.NewError(repo.ErrCodeStatement, "sqlstore.save", fmt.Errorf("bind children: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, repo.NewError(repo.ErrCodeConnection, "sqlstore.save", fmt.Errorf("commit: %w", err))
	}

	return id, nil
}

// Find returns the records matching the conjunction of all credentials, in
// insertion order, capped at limit when limit > 0. An empty credential list
// behaves like All.
func (s *Store[T]) Find(ctx context.Context, creds []repo.Credential, limit int) ([]T, error) {
	preds := make([]querysql.Predicate, 0, len(creds))
	for _, c := range creds {
		preds = append(preds, querysql.Predicate{Field: c.CredentialField(), Value: c.CredentialValue()})
	}
	return s.selectWhere(ctx, "sqlstore.find", preds, limit)
}

// selectWhere builds the statement for the given predicates, executes it,
// and maps every returned row through the entity's scan function. A scan
// failure for any single row fails the whole call; no partial results are
// returned.
//
// Rows are drained before any Scan runs: the pool is pinned to a single
// connection, and a mapping's secondary fetch would otherwise block on the
// connection the open cursor still holds.
func (s *Store[T]) selectWhere(ctx context.Context, op string, preds []querysql.Predicate, limit int) ([]T, error) {
	stmt, params, err := querysql.Select(s.mapping.SelectAll(), preds, limit)
	if err != nil {
		return nil, repo.NewError(repo.ErrCodeStatement, op, err)
	}

	rows, err := s.db.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, repo.NewError(repo.ErrCodeStatement, op, fmt.Errorf("query %s: %w", s.mapping.Table(), err))
	}
	defer rows.Close()

	collected := []*Row{}
	for rows.Next() {
		row, err := readRow(rows)
		if err != nil {
			return nil, repo.NewError(repo.ErrCodeScan, op, err)
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, repo.NewError(repo.ErrCodeConnection, op, fmt.Errorf("iterate %s: %w", s.mapping.Table(), err))
	}
	rows.Close()

	results := []T{}
	for _, row := range collected {
		entity, err := s.mapping.Scan(ctx, s.db, row)
		if err != nil {
			return nil, repo.NewError(repo.ErrCodeScan, op, err)
		}
		results = append(results, entity)
	}

	return results, nil
}
