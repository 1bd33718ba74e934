package todo

import (
	"slices"
	"time"
)

// Task is an owned record: something a user should do.
// The zero Due means no due date. Identity is assigned by whichever store
// the task is saved into; the struct never carries it.
type Task struct {
	Desc string
	Done bool
	Due  time.Time
	Tags []string
}

// NewTask returns an open task with no tags and no due date.
func NewTask(desc string) Task {
	return Task{Desc: desc}
}

// Finish marks the task as done.
func (t *Task) Finish() {
	t.Done = true
}

// DueAt returns a copy of the task with the given due time set.
func (t Task) DueAt(when time.Time) Task {
	t.Due = when
	return t
}

// Clone returns a deep copy: mutating the copy's tags never affects the
// original. Stores with value semantics rely on this.
func (t Task) Clone() Task {
	c := t
	c.Tags = slices.Clone(t.Tags)
	return c
}

// Equal reports structural equality over all fields. Due times are compared
// as instants, tag lists element-wise with nil and empty considered equal.
func (t Task) Equal(o Task) bool {
	if t.Desc != o.Desc || t.Done != o.Done || !t.Due.Equal(o.Due) {
		return false
	}
	if len(t.Tags) != len(o.Tags) {
		return false
	}
	for i := range t.Tags {
		if t.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// User is the owning record: a name and an ordered task list. Task order is
// insertion order and round-trips through every backend.
type User struct {
	Name  string
	Tasks []Task
}

// NewUser returns a user owning the given tasks, in the given order.
func NewUser(name string, tasks ...Task) User {
	u := User{Name: name}
	for _, t := range tasks {
		u.AddTask(t)
	}
	return u
}

// AddTask appends a task to the user's list.
func (u *User) AddTask(t Task) {
	u.Tasks = append(u.Tasks, t)
}

// Clone returns a deep copy of the user and every owned task.
func (u User) Clone() User {
	c := u
	if u.Tasks != nil {
		c.Tasks = make([]Task, len(u.Tasks))
		for i, t := range u.Tasks {
			c.Tasks[i] = t.Clone()
		}
	}
	return c
}

// Equal reports structural equality: same name and pairwise-equal task
// lists in the same order.
func (u User) Equal(o User) bool {
	if u.Name != o.Name || len(u.Tasks) != len(o.Tasks) {
		return false
	}
	for i := range u.Tasks {
		if !u.Tasks[i].Equal(o.Tasks[i]) {
			return false
		}
	}
	return true
}
