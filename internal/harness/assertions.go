package harness

import (
	"fmt"
	"reflect"
)

// evaluate runs every assertion against the finished result, recording
// failures. The transcript stays intact either way so a failing run still
// produces a readable golden diff.
func evaluate(scenario *Scenario, result *Result) {
	for i, a := range scenario.Assertions {
		switch a.Type {
		case AssertResultCount:
			got := resultSize(result.Events[a.Step])
			if got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: step %d returned %d results, want %d", i, a.Step, got, a.Count))
			}

		case AssertResultUsers:
			got := result.Events[a.Step].Users
			if !reflect.DeepEqual(got, a.Users) {
				result.AddError(fmt.Sprintf("assertions[%d]: step %d users %v, want %v", i, a.Step, got, a.Users))
			}

		case AssertResultTasks:
			got := result.Events[a.Step].Tasks
			if !reflect.DeepEqual(got, a.Tasks) {
				result.AddError(fmt.Sprintf("assertions[%d]: step %d tasks %v, want %v", i, a.Step, got, a.Tasks))
			}

		case AssertDistinctIDs:
			seen := make(map[string]int, len(result.RawIDs))
			for pos, id := range result.RawIDs {
				if prev, dup := seen[id]; dup {
					result.AddError(fmt.Sprintf("assertions[%d]: saves %d and %d issued the same identity %q", i, prev, pos, id))
				}
				seen[id] = pos
			}

		case AssertRawIDs:
			if !reflect.DeepEqual(result.RawIDs, a.IDs) {
				result.AddError(fmt.Sprintf("assertions[%d]: raw ids %v, want %v", i, result.RawIDs, a.IDs))
			}
		}
	}
}

// resultSize measures how many records a step produced: the list length
// for list-shaped ops, 1 or 0 for a get.
func resultSize(e Event) int {
	switch e.Op {
	case OpAll, OpFind:
		return len(e.Users)
	case OpDoneByID, OpDoneByName:
		return len(e.Tasks)
	case OpGet:
		if e.Found != nil && *e.Found {
			return 1
		}
		return 0
	default:
		return 0
	}
}
