package harness

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/stashkit/stash/internal/memstore"
	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/sqlstore"
	"github.com/stashkit/stash/internal/testutil"
	"github.com/stashkit/stash/internal/todo"
)

// Backend names the harness can run against.
const (
	BackendSQLite = "sqlite"
	BackendList   = "list"
	BackendHash   = "hash"
)

// Backends lists every backend the harness can construct.
var Backends = []string{BackendSQLite, BackendList, BackendHash}

func knownBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// Run executes a scenario against one backend and returns the normalized
// result. Each run gets a fresh store; the hash backend draws identities
// from a canned sequence so runs are reproducible.
//
// Step failures that are part of the contract (absence) land in the
// transcript; infrastructure failures abort the run with an error.
func Run(scenario *Scenario, backend string) (*Result, error) {
	r, err := newRunner(backend)
	if err != nil {
		return nil, fmt.Errorf("set up %s backend: %w", backend, err)
	}
	defer r.close()

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		event, err := runStep(ctx, r, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.Events = append(result.Events, event)
	}
	result.RawIDs = r.rawIDs()

	evaluate(scenario, result)
	return result, nil
}

// runStep executes one step and normalizes its outcome.
func runStep(ctx context.Context, r runner, step Step) (Event, error) {
	switch step.Op {
	case OpSave:
		user, err := step.User.Build()
		if err != nil {
			return Event{}, err
		}
		ref, err := r.save(ctx, user)
		if err != nil {
			return Event{}, err
		}
		return Event{Op: OpSave, ID: fmt.Sprintf("id#%d", ref)}, nil

	case OpGet:
		user, ok, err := r.get(ctx, step.Ref)
		if err != nil {
			return Event{}, err
		}
		event := Event{Op: OpGet, Found: &ok}
		if ok {
			event.User = RenderUser(user)
		}
		return event, nil

	case OpAll:
		users, err := r.all(ctx)
		if err != nil {
			return Event{}, err
		}
		return Event{Op: OpAll, Users: renderSorted(users)}, nil

	case OpFind:
		users, err := r.find(ctx, step.Name, step.Limit)
		if err != nil {
			return Event{}, err
		}
		return Event{Op: OpFind, Users: renderSorted(users)}, nil

	case OpDoneByID:
		tasks, err := r.doneByRef(ctx, step.Ref)
		if err != nil {
			return Event{}, err
		}
		return Event{Op: OpDoneByID, Tasks: renderTasks(tasks)}, nil

	case OpDoneByName:
		tasks, err := r.doneByName(ctx, step.Name)
		if err != nil {
			return Event{}, err
		}
		return Event{Op: OpDoneByName, Tasks: renderTasks(tasks)}, nil

	default:
		return Event{}, fmt.Errorf("unknown op %q", step.Op)
	}
}

// renderSorted renders users and sorts the list. All/find order is
// backend-defined, so the transcript imposes its own.
func renderSorted(users []todo.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = RenderUser(u)
	}
	sort.Strings(out)
	return out
}

// renderTasks renders tasks, keeping their order: task lists are
// insertion-ordered on every backend.
func renderTasks(tasks []todo.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = RenderTask(t)
	}
	return out
}

// runner adapts one backend to the step vocabulary, tracking issued
// identities by save order so steps can address records without knowing
// the backend's identity scheme.
type runner interface {
	save(ctx context.Context, u todo.User) (int, error)
	get(ctx context.Context, ref int) (todo.User, bool, error)
	all(ctx context.Context) ([]todo.User, error)
	find(ctx context.Context, name string, limit int) ([]todo.User, error)
	doneByRef(ctx context.Context, ref int) ([]todo.Task, error)
	doneByName(ctx context.Context, name string) ([]todo.Task, error)
	rawIDs() []string
	close()
}

// newRunner constructs a fresh store for the named backend.
func newRunner(backend string) (runner, error) {
	switch backend {
	case BackendSQLite:
		db, err := sqlstore.Open(":memory:")
		if err != nil {
			return nil, err
		}
		users := sqlstore.NewUserStore(db)
		tasks := sqlstore.NewTaskStore(db)
		ctx := context.Background()
		if err := users.Setup(ctx); err != nil {
			db.Close()
			return nil, err
		}
		if err := tasks.Setup(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &storeRunner[int64]{store: users, search: users, cleanup: func() { db.Close() }}, nil

	case BackendList:
		return &storeRunner[int]{store: memstore.NewListStore[todo.User]()}, nil

	case BackendHash:
		store := memstore.NewHashStoreWithKeys[todo.User](testutil.SequentialKeyGenerator(64))
		return &storeRunner[uuid.UUID]{store: store}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// storeRunner is the generic backend adapter. search is nil for backends
// without credential support; find and done-by-name steps fail there.
type storeRunner[ID comparable] struct {
	store   repo.Repository[todo.User, ID]
	search  repo.Searchable[todo.User, ID]
	ids     []ID
	cleanup func()
}

func (r *storeRunner[ID]) save(ctx context.Context, u todo.User) (int, error) {
	id, err := r.store.Save(ctx, u)
	if err != nil {
		return 0, err
	}
	r.ids = append(r.ids, id)
	return len(r.ids) - 1, nil
}

func (r *storeRunner[ID]) get(ctx context.Context, ref int) (todo.User, bool, error) {
	id, err := r.idFor(ref)
	if err != nil {
		return todo.User{}, false, err
	}
	return r.store.Get(ctx, id)
}

func (r *storeRunner[ID]) all(ctx context.Context) ([]todo.User, error) {
	return r.store.All(ctx)
}

func (r *storeRunner[ID]) find(ctx context.Context, name string, limit int) ([]todo.User, error) {
	if r.search == nil {
		return nil, fmt.Errorf("backend does not support find")
	}
	var creds []repo.Credential
	if name != "" {
		creds = append(creds, todo.ByName(name))
	}
	return r.search.Find(ctx, creds, limit)
}

func (r *storeRunner[ID]) doneByRef(ctx context.Context, ref int) ([]todo.Task, error) {
	id, err := r.idFor(ref)
	if err != nil {
		return nil, err
	}
	return todo.DoneTasksByID(ctx, r.store, id)
}

func (r *storeRunner[ID]) doneByName(ctx context.Context, name string) ([]todo.Task, error) {
	if r.search == nil {
		return nil, fmt.Errorf("backend does not support done-by-name")
	}
	return todo.DoneTasksByName(ctx, r.search, name)
}

func (r *storeRunner[ID]) rawIDs() []string {
	out := make([]string, len(r.ids))
	for i, id := range r.ids {
		out[i] = fmt.Sprint(id)
	}
	return out
}

func (r *storeRunner[ID]) idFor(ref int) (ID, error) {
	if ref < 0 || ref >= len(r.ids) {
		var zero ID
		return zero, fmt.Errorf("no saved record #%d", ref)
	}
	return r.ids[ref], nil
}

func (r *storeRunner[ID]) close() {
	if r.cleanup != nil {
		r.cleanup()
	}
}
