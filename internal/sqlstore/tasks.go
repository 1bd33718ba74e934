package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

var _ repo.Searchable[todo.Task, int64] = (*Store[todo.Task])(nil)

// NewTaskStore returns the relational store for tasks.
func NewTaskStore(db *DB) *Store[todo.Task] {
	return NewStore[todo.Task](db, TaskMapping{})
}

// TaskMapping persists tasks as flat rows.
//
// The tags list is flattened to a comma-joined TEXT column, NULL when
// empty. The due timestamp is stored as Unix milliseconds UTC, NULL when
// unset; millisecond precision is the round-trip boundary here, so any
// sub-millisecond fraction of Due is truncated on save. owner_id is NULL
// for tasks saved standalone and is filled by the user save cascade for
// owned tasks. "desc" is a SQL keyword and stays quoted in every
// statement.
type TaskMapping struct{}

// Table implements Mapping.
func (TaskMapping) Table() string { return "tasks" }

// CreateTable implements Mapping.
func (TaskMapping) CreateTable() string {
	return `CREATE TABLE tasks (
		id INTEGER PRIMARY KEY,
		"desc" TEXT NOT NULL,
		done BOOLEAN NOT NULL,
		due INTEGER,
		tags TEXT,
		owner_id INTEGER REFERENCES users(id)
	)`
}

// SelectAll implements Mapping.
func (TaskMapping) SelectAll() string {
	return `SELECT id, "desc", done, due, tags, owner_id FROM tasks`
}

// Insert implements Mapping.
func (TaskMapping) Insert() string {
	return `INSERT INTO tasks ("desc", done, due, tags) VALUES (?, ?, ?, ?)`
}

// Bind implements Mapping. Value order matches the Insert placeholders.
func (TaskMapping) Bind(t todo.Task) []any {
	return []any{t.Desc, t.Done, dueMillis(t.Due), joinTags(t.Tags)}
}

// Scan implements Mapping. NULL tags become an empty list and a NULL due
// column a zero time, matching the type's defaults.
func (TaskMapping) Scan(_ context.Context, _ Querier, row *Row) (todo.Task, error) {
	desc, err := row.String("desc")
	if err != nil {
		return todo.Task{}, err
	}
	done, err := row.Bool("done")
	if err != nil {
		return todo.Task{}, err
	}
	millis, hasDue, err := row.NullInt64("due")
	if err != nil {
		return todo.Task{}, err
	}
	joined, hasTags, err := row.NullString("tags")
	if err != nil {
		return todo.Task{}, err
	}

	task := todo.Task{
		Desc: desc,
		Done: done,
		Tags: splitTags(joined, hasTags),
	}
	if hasDue {
		task.Due = time.UnixMilli(millis).UTC()
	}
	return task, nil
}

// dueMillis flattens a due time to Unix milliseconds, NULL for the zero
// time (no due date). Sub-millisecond precision does not survive the
// column; loads come back truncated to the millisecond.
func dueMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixMilli()
}

// joinTags flattens a tag list to a comma-joined value, NULL when empty.
func joinTags(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	return strings.Join(tags, ",")
}

// splitTags is the inverse of joinTags. NULL and the empty string both
// mean no tags.
func splitTags(joined string, present bool) []string {
	if !present || joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
