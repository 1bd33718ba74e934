package dynamostore

import (
	"time"

	"github.com/stashkit/stash/internal/todo"
)

// userItem is the document shape for one user: the owning record with its
// owned task list nested, instead of split across tables.
type userItem struct {
	ID    string     `dynamodbav:"id"`
	Name  string     `dynamodbav:"name"`
	Tasks []taskItem `dynamodbav:"tasks,omitempty"`
}

type taskItem struct {
	Desc string   `dynamodbav:"desc"`
	Done bool     `dynamodbav:"done"`
	Due  int64    `dynamodbav:"due,omitempty"`
	Tags []string `dynamodbav:"tags,omitempty"`
}

// toItem flattens a user into its document shape. Due times become Unix
// milliseconds, zero meaning no due date.
func toItem(id string, u todo.User) userItem {
	item := userItem{ID: id, Name: u.Name}
	for _, t := range u.Tasks {
		ti := taskItem{Desc: t.Desc, Done: t.Done, Tags: t.Tags}
		if !t.Due.IsZero() {
			ti.Due = t.Due.UTC().UnixMilli()
		}
		item.Tasks = append(item.Tasks, ti)
	}
	return item
}

// fromItem reconstructs a user, applying the type defaults for absent
// attributes (no tags attribute means an empty tag list).
func fromItem(item userItem) todo.User {
	u := todo.User{Name: item.Name}
	for _, ti := range item.Tasks {
		t := todo.Task{Desc: ti.Desc, Done: ti.Done, Tags: ti.Tags}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if ti.Due != 0 {
			t.Due = time.UnixMilli(ti.Due).UTC()
		}
		u.AddTask(t)
	}
	return u
}
