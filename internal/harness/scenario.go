package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stashkit/stash/internal/todo"
)

// Scenario defines one conformance scenario: a sequence of storage
// operations run against each listed backend, with assertions over the
// resulting transcript. Because identities are normalized and unordered
// results sorted, one scenario produces one transcript regardless of
// backend.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backends lists the backends to run against. Every listed backend
	// must support every step (the sequential store, for one, has no
	// find support).
	Backends []string `yaml:"backends"`

	// Steps is the operation sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the transcript and the issued identities.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one storage operation.
type Step struct {
	// Op is one of save, get, all, find, done-by-id, done-by-name.
	Op string `yaml:"op"`

	// User is the record to save (op: save).
	User *UserSpec `yaml:"user,omitempty"`

	// Ref addresses a previously saved record by save order, starting at
	// 0 (op: get, done-by-id).
	Ref int `yaml:"ref,omitempty"`

	// Name is the exact-name credential (op: find, done-by-name).
	// Empty on a find means no credentials, which behaves like all.
	Name string `yaml:"name,omitempty"`

	// Limit caps find results; 0 means no cap (op: find).
	Limit int `yaml:"limit,omitempty"`
}

// Step operations.
const (
	OpSave       = "save"
	OpGet        = "get"
	OpAll        = "all"
	OpFind       = "find"
	OpDoneByID   = "done-by-id"
	OpDoneByName = "done-by-name"
)

// UserSpec declares a user record in YAML.
type UserSpec struct {
	Name  string     `yaml:"name"`
	Tasks []TaskSpec `yaml:"tasks,omitempty"`
}

// TaskSpec declares a task record in YAML. Due is RFC 3339.
type TaskSpec struct {
	Desc string   `yaml:"desc"`
	Done bool     `yaml:"done,omitempty"`
	Due  string   `yaml:"due,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

// Build converts the spec into a domain user.
func (s UserSpec) Build() (todo.User, error) {
	u := todo.User{Name: s.Name}
	for i, ts := range s.Tasks {
		task := todo.Task{Desc: ts.Desc, Done: ts.Done, Tags: ts.Tags}
		if ts.Due != "" {
			due, err := time.Parse(time.RFC3339, ts.Due)
			if err != nil {
				return todo.User{}, fmt.Errorf("task[%d]: parse due: %w", i, err)
			}
			task.Due = due
		}
		u.AddTask(task)
	}
	return u, nil
}

// Assertion validates one aspect of a finished run.
type Assertion struct {
	// Type is one of result_count, result_users, result_tasks,
	// distinct_ids, raw_ids.
	Type string `yaml:"type"`

	// Step indexes the step whose result is asserted on (result_*).
	Step int `yaml:"step,omitempty"`

	// Count is the expected result size (result_count).
	Count int `yaml:"count,omitempty"`

	// Users are the expected rendered users, in transcript order
	// (result_users).
	Users []string `yaml:"users,omitempty"`

	// Tasks are the expected rendered tasks, in insertion order
	// (result_tasks).
	Tasks []string `yaml:"tasks,omitempty"`

	// IDs are the expected backend-native identities in save order
	// (raw_ids); backend-scoped by nature, so scenarios using it should
	// list a single backend.
	IDs []string `yaml:"ids,omitempty"`
}

// Assertion types.
const (
	AssertResultCount = "result_count"
	AssertResultUsers = "result_users"
	AssertResultTasks = "result_tasks"
	AssertDistinctIDs = "distinct_ids"
	AssertRawIDs      = "raw_ids"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, so a typo like "assertion:" fails at load time rather than
// being silently ignored.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and cross-references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Backends) == 0 {
		return fmt.Errorf("backends list is required and must be non-empty")
	}
	for _, b := range s.Backends {
		if !knownBackend(b) {
			return fmt.Errorf("unknown backend %q: must be one of %v", b, Backends)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	saves := 0
	for i, step := range s.Steps {
		switch step.Op {
		case OpSave:
			if step.User == nil {
				return fmt.Errorf("steps[%d]: user is required for save", i)
			}
			saves++
		case OpGet, OpDoneByID:
			if step.Ref < 0 || step.Ref >= saves {
				return fmt.Errorf("steps[%d]: ref %d does not address a prior save", i, step.Ref)
			}
		case OpDoneByName:
			if step.Name == "" {
				return fmt.Errorf("steps[%d]: name is required for done-by-name", i)
			}
		case OpAll, OpFind:
			// No required fields.
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, steps int) error {
	switch a.Type {
	case AssertResultCount, AssertResultUsers, AssertResultTasks:
		if a.Step < 0 || a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step %d out of range", index, a.Step)
		}
		if a.Type == AssertResultUsers && len(a.Users) == 0 {
			return fmt.Errorf("assertions[%d]: users list is required for result_users", index)
		}
		if a.Type == AssertResultTasks && len(a.Tasks) == 0 {
			return fmt.Errorf("assertions[%d]: tasks list is required for result_tasks", index)
		}
	case AssertDistinctIDs:
		// No fields.
	case AssertRawIDs:
		if len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for raw_ids", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
