package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/stashkit/stash/internal/repo"
)

// ErrNoSuchUser is returned by use cases that need a user which the store
// does not hold.
var ErrNoSuchUser = errors.New("todo: no such user")

// DoneTasks returns the user's completed tasks in insertion order.
func DoneTasks(u User) []Task {
	done := []Task{}
	for _, t := range u.Tasks {
		if t.Done {
			done = append(done, t)
		}
	}
	return done
}

// DoneTasksByID loads the user stored under id and returns its completed
// tasks in insertion order. A missing user is ErrNoSuchUser; store failures
// propagate unchanged.
func DoneTasksByID[ID comparable](ctx context.Context, users repo.Repository[User, ID], id ID) ([]Task, error) {
	u, ok, err := users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return nil, ErrNoSuchUser
	}
	return DoneTasks(u), nil
}

// DoneTasksByName resolves a user by exact name and returns its completed
// tasks in insertion order. A missing user is ErrNoSuchUser.
func DoneTasksByName[ID comparable](ctx context.Context, users repo.Searchable[User, ID], name string) ([]Task, error) {
	matches, err := users.Find(ctx, []repo.Credential{ByName(name)}, 1)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", name, err)
	}
	if len(matches) == 0 {
		return nil, ErrNoSuchUser
	}
	return DoneTasks(matches[0]), nil
}
