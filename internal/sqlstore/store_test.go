package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

func TestSetup_SecondCallFails(t *testing.T) {
	_, users, _ := createTestDB(t)

	err := users.Setup(context.Background())
	if err == nil {
		t.Fatal("second Setup() should fail: create table is not idempotent")
	}
	if !repo.IsCode(err, repo.ErrCodeStatement) {
		t.Errorf("want statement error, got %v", err)
	}
}

func TestUserStore_RoundTrip(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	mike := createTestUser("Mike")
	id, err := users.Save(ctx, mike)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := users.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() did not find the saved user")
	}
	if !got.Equal(mike) {
		t.Errorf("round-trip mismatch:\nsaved  %+v\nloaded %+v", mike, got)
	}
}

func TestUserStore_TaskOrderRoundTrips(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	u := todo.NewUser("Ana", todo.NewTask("first"), todo.NewTask("second"), todo.NewTask("third"))
	id, err := users.Save(ctx, u)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := users.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	want := []string{"first", "second", "third"}
	if len(got.Tasks) != len(want) {
		t.Fatalf("want %d tasks, got %d", len(want), len(got.Tasks))
	}
	for i, desc := range want {
		if got.Tasks[i].Desc != desc {
			t.Errorf("task[%d] = %q, want %q", i, got.Tasks[i].Desc, desc)
		}
	}
}

func TestTaskStore_RoundTrip_Defaults(t *testing.T) {
	_, _, tasks := createTestDB(t)
	ctx := context.Background()

	// No due date, no tags: both columns are NULL and must come back as
	// the type's defaults.
	bare := todo.NewTask("Walk dog")
	id, err := tasks.Save(ctx, bare)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := tasks.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	if !got.Due.IsZero() {
		t.Errorf("NULL due should load as zero time, got %v", got.Due)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("NULL tags should load as empty list, got %#v", got.Tags)
	}
	if !got.Equal(bare) {
		t.Errorf("round-trip mismatch: %+v vs %+v", bare, got)
	}
}

func TestTaskStore_RoundTrip_AllFields(t *testing.T) {
	_, _, tasks := createTestDB(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	full := todo.Task{Desc: "Buy Milk", Done: true, Due: due, Tags: []string{"urgent", "errand"}}
	id, err := tasks.Save(ctx, full)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := tasks.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	if !got.Equal(full) {
		t.Errorf("round-trip mismatch:\nsaved  %+v\nloaded %+v", full, got)
	}
}

func TestTaskStore_DueTruncatedToMillis(t *testing.T) {
	_, _, tasks := createTestDB(t)
	ctx := context.Background()

	// The due column holds Unix milliseconds; finer precision is cut off
	// on save rather than round-tripped.
	due := time.Date(2026, 9, 1, 8, 30, 0, 123456789, time.UTC)
	id, err := tasks.Save(ctx, todo.NewTask("Sharpen pencils").DueAt(due))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := tasks.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	want := due.Truncate(time.Millisecond)
	if !got.Due.Equal(want) {
		t.Errorf("want due %v, got %v", want, got.Due)
	}
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	_, users, _ := createTestDB(t)

	_, ok, err := users.Get(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Get() on a never-saved id must not error, got %v", err)
	}
	if ok {
		t.Error("Get() on a never-saved id must report absence")
	}
}

func TestSave_AlwaysInserts(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	u := todo.NewUser("Twin")
	first, err := users.Save(ctx, u)
	if err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	second, err := users.Save(ctx, u)
	if err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	if first == second {
		t.Errorf("identities must be distinct, both were %d", first)
	}

	all, err := users.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("want 2 records after saving the same value twice, got %d", len(all))
	}
}

func TestFind_ByName(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	saved := map[string]todo.User{}
	for _, name := range []string{"A", "B", "C", "D"} {
		u := todo.NewUser(name)
		if _, err := users.Save(ctx, u); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
		saved[name] = u
	}

	matches, err := users.Find(ctx, []repo.Credential{todo.ByName("C")}, 0)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("want exactly one match, got %d", len(matches))
	}
	if !matches[0].Equal(saved["C"]) {
		t.Errorf("Find() returned %+v, want saved C", matches[0])
	}
}

func TestFind_Conjunction(t *testing.T) {
	_, users, tasks := createTestDB(t)
	ctx := context.Background()

	// Two owners with overlapping done flags; the conjunction must never
	// widen to a union.
	one := todo.NewTask("One")
	one.Finish()
	two := todo.NewTask("Two")
	two.Finish()
	mikeID, err := users.Save(ctx, todo.NewUser("Mike", one, todo.NewTask("Tre")))
	if err != nil {
		t.Fatalf("Save(Mike) failed: %v", err)
	}
	if _, err := users.Save(ctx, todo.NewUser("Anna", two)); err != nil {
		t.Fatalf("Save(Anna) failed: %v", err)
	}

	matches, err := tasks.Find(ctx, []repo.Credential{todo.IsDone(true), todo.OwnedBy(mikeID)}, 0)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("want 1 match (done AND owned by Mike), got %d", len(matches))
	}
	if matches[0].Desc != "One" {
		t.Errorf("matched %q, want \"One\"", matches[0].Desc)
	}
}

func TestFind_EmptyCredentialsBehavesLikeAll(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := users.Save(ctx, todo.NewUser(name)); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	matches, err := users.Find(ctx, nil, 0)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("want all 3 records, got %d", len(matches))
	}
}

func TestFind_LimitCapsResults(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D"} {
		if _, err := users.Save(ctx, todo.NewUser(name)); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	matches, err := users.Find(ctx, nil, 2)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("want 2 records under limit, got %d", len(matches))
	}
	// Truncation is deterministic: insertion order, first two rows.
	if matches[0].Name != "A" || matches[1].Name != "B" {
		t.Errorf("want [A B], got [%s %s]", matches[0].Name, matches[1].Name)
	}
}

func TestFind_NoMatchIsEmptyNotNil(t *testing.T) {
	_, users, _ := createTestDB(t)

	matches, err := users.Find(context.Background(), []repo.Credential{todo.ByName("nobody")}, 0)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if matches == nil {
		t.Error("no match should be an empty slice, not nil")
	}
	if len(matches) != 0 {
		t.Errorf("want no matches, got %d", len(matches))
	}
}

func TestDoneTasksByID_ReturnsDoneInInsertionOrder(t *testing.T) {
	_, users, _ := createTestDB(t)
	ctx := context.Background()

	one := todo.NewTask("One")
	one.Finish()
	two := todo.NewTask("Two")
	two.Finish()
	id, err := users.Save(ctx, todo.NewUser("Mike", one, todo.NewTask("Tre"), two))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	done, err := todo.DoneTasksByID[int64](ctx, users, id)
	if err != nil {
		t.Fatalf("DoneTasksByID() failed: %v", err)
	}
	if len(done) != 2 || done[0].Desc != "One" || done[1].Desc != "Two" {
		t.Errorf("want [One Two], got %+v", done)
	}
}

func TestDoneTasksByName_MissingUser(t *testing.T) {
	_, users, _ := createTestDB(t)

	_, err := todo.DoneTasksByName[int64](context.Background(), users, "ghost")
	if !errors.Is(err, todo.ErrNoSuchUser) {
		t.Errorf("want ErrNoSuchUser, got %v", err)
	}
}
