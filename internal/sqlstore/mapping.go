package sqlstore

import (
	"context"
	"database/sql"
)

// Querier runs parameterized queries against the backing database.
// *DB satisfies it; mapping scan functions receive a Querier so they can
// issue secondary fetches (e.g. loading a user's tasks) during row
// reconstruction.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Mapping describes how one entity type is persisted relationally.
// There is one implementation per concrete entity, flat, with no
// inheritance between them.
//
// Statement text and bind order are fixed at definition time: Bind must
// return values in exactly the placeholder order of Insert, and Scan must
// read columns by name so the mapping survives column reordering.
type Mapping[T any] interface {
	// Table returns the table name.
	Table() string

	// CreateTable returns the CREATE TABLE statement. It is deliberately
	// not idempotent: running setup twice against the same store fails.
	CreateTable() string

	// SelectAll returns the parameterless full-table select. Selects by
	// identity and by credential are derived from it by the query builder.
	SelectAll() string

	// Insert returns the parameterized single-row insert statement.
	Insert() string

	// Bind maps an instance to its bound values, in exactly the
	// placeholder order of Insert.
	Bind(e T) []any

	// Scan reconstructs an instance from one result row. Columns are read
	// by name, and type defaults apply to NULL columns (a NULL tags column
	// becomes an empty tag list, a NULL due column a zero time).
	Scan(ctx context.Context, q Querier, row *Row) (T, error)
}

// ChildBinder is an optional mapping capability for entities that own a
// collection stored in a separate table. After the owner's insert, the
// store calls BindChildren inside the same transaction so the owner row
// and its child rows commit together.
type ChildBinder[T any] interface {
	BindChildren(ctx context.Context, tx *sql.Tx, ownerID int64, e T) error
}
