package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stashkit/stash/internal/todo"
)

// createTestDB opens a fresh database in a temp dir and runs setup for
// both entity types.
func createTestDB(t *testing.T) (*DB, *Store[todo.User], *Store[todo.Task]) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := NewUserStore(db)
	tasks := NewTaskStore(db)
	ctx := context.Background()
	if err := users.Setup(ctx); err != nil {
		t.Fatalf("users Setup() failed: %v", err)
	}
	if err := tasks.Setup(ctx); err != nil {
		t.Fatalf("tasks Setup() failed: %v", err)
	}
	return db, users, tasks
}

// createTestUser builds a user with a done, an open, and a tagged task.
func createTestUser(name string) todo.User {
	one := todo.NewTask("One")
	one.Finish()
	two := todo.NewTask("Two").DueAt(time.Date(2026, 8, 29, 12, 24, 0, 0, time.UTC))
	two.Tags = []string{"urgent", "home"}
	return todo.NewUser(name, one, two, todo.NewTask("Tre"))
}
