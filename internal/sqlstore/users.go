package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stashkit/stash/internal/querysql"
	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

var _ repo.Searchable[todo.User, int64] = (*Store[todo.User])(nil)
var _ ChildBinder[todo.User] = UserMapping{}

// NewUserStore returns the relational store for users and their owned
// task lists.
func NewUserStore(db *DB) *Store[todo.User] {
	return NewStore[todo.User](db, UserMapping{})
}

// UserMapping persists users across two tables: the user row itself and
// one task row per owned task, linked by owner_id.
//
// Loading a user eagerly re-fetches its tasks with an owner credential,
// one extra query per user row. For result sets of N users that is N+1
// queries; acceptable here, where result sets stay small.
type UserMapping struct {
	tasks TaskMapping
}

// Table implements Mapping.
func (UserMapping) Table() string { return "users" }

// CreateTable implements Mapping.
func (UserMapping) CreateTable() string {
	return `CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`
}

// SelectAll implements Mapping.
func (UserMapping) SelectAll() string {
	return `SELECT id, name FROM users`
}

// Insert implements Mapping.
func (UserMapping) Insert() string {
	return `INSERT INTO users (name) VALUES (?)`
}

// Bind implements Mapping.
func (UserMapping) Bind(u todo.User) []any {
	return []any{u.Name}
}

// Scan implements Mapping. The owned task list is reconstructed by a
// secondary fetch keyed on the owner credential, ordered by row id so
// insertion order round-trips.
func (m UserMapping) Scan(ctx context.Context, q Querier, row *Row) (todo.User, error) {
	id, err := row.Int64("id")
	if err != nil {
		return todo.User{}, err
	}
	name, err := row.String("name")
	if err != nil {
		return todo.User{}, err
	}

	tasks, err := m.fetchTasks(ctx, q, id)
	if err != nil {
		return todo.User{}, fmt.Errorf("fetch tasks for user %d: %w", id, err)
	}

	return todo.User{Name: name, Tasks: tasks}, nil
}

// fetchTasks loads the tasks owned by the user stored under ownerID, in
// insertion order.
func (m UserMapping) fetchTasks(ctx context.Context, q Querier, ownerID int64) ([]todo.Task, error) {
	owned := todo.OwnedBy(ownerID)
	stmt, params, err := querysql.Select(m.tasks.SelectAll(), []querysql.Predicate{
		{Field: owned.CredentialField(), Value: owned.CredentialValue()},
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}
	// The builder never emits ORDER BY; insertion order must round-trip.
	stmt += " ORDER BY id"

	rows, err := q.Query(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []todo.Task{}
	for rows.Next() {
		row, err := readRow(rows)
		if err != nil {
			return nil, err
		}
		task, err := m.tasks.Scan(ctx, q, row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// BindChildren implements ChildBinder: every owned task is inserted in the
// owner's transaction with owner_id pointing at the fresh user row.
// One statement per task; a bulk insert is a possible followup if task
// lists ever grow large.
func (m UserMapping) BindChildren(ctx context.Context, tx *sql.Tx, ownerID int64, u todo.User) error {
	const insertOwned = `INSERT INTO tasks ("desc", done, due, tags, owner_id) VALUES (?, ?, ?, ?, ?)`

	for _, t := range u.Tasks {
		args := append(m.tasks.Bind(t), ownerID)
		if _, err := tx.ExecContext(ctx, insertOwned, args...); err != nil {
			return fmt.Errorf("insert task %q: %w", t.Desc, err)
		}
	}
	return nil
}
