package harness

import (
	"strings"
	"time"

	"github.com/stashkit/stash/internal/todo"
)

// Event is one transcript entry: the normalized outcome of one step.
type Event struct {
	Op    string   `json:"op"`
	ID    string   `json:"id,omitempty"`    // save: normalized identity placeholder
	Found *bool    `json:"found,omitempty"` // get
	User  string   `json:"user,omitempty"`  // get: the loaded record
	Users []string `json:"users,omitempty"` // all/find: results, sorted
	Tasks []string `json:"tasks,omitempty"` // done-by-*: results, insertion order
}

// Result is the outcome of running one scenario against one backend.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Events is the normalized transcript, one entry per step. Identity
	// values are replaced by save-order placeholders and unordered result
	// lists are sorted, so the transcript is identical across backends.
	Events []Event `json:"events"`

	// Errors holds assertion failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RawIDs are the backend-native identity renderings in save order.
	// They never appear in the transcript (they differ per backend); the
	// distinct_ids and raw_ids assertions check them.
	RawIDs []string `json:"-"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{Pass: true, Events: []Event{}, Errors: []string{}}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// RenderUser flattens a user to a stable one-line form:
// the name alone, or "name[task, task, ...]".
func RenderUser(u todo.User) string {
	if len(u.Tasks) == 0 {
		return u.Name
	}
	parts := make([]string, len(u.Tasks))
	for i, t := range u.Tasks {
		parts[i] = RenderTask(t)
	}
	return u.Name + "[" + strings.Join(parts, ", ") + "]"
}

// RenderTask flattens a task: the description, "*" when done, one " +tag"
// per tag, and " due=<RFC3339>" when a due date is set.
func RenderTask(t todo.Task) string {
	var sb strings.Builder
	sb.WriteString(t.Desc)
	if t.Done {
		sb.WriteString("*")
	}
	for _, tag := range t.Tags {
		sb.WriteString(" +")
		sb.WriteString(tag)
	}
	if !t.Due.IsZero() {
		sb.WriteString(" due=")
		sb.WriteString(t.Due.UTC().Format(time.RFC3339))
	}
	return sb.String()
}
