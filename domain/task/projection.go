package task

import (
	"sort"
	"strings"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// SortKey selects the ordering of a projection.
type SortKey string

const (
	SortNone     SortKey = "none"
	SortPriority SortKey = "priority"
	SortDate     SortKey = "date"
	SortDueDate  SortKey = "dueDate"
)

// ParseStatus maps a query value to a filter. Unknown values select everything.
func ParseStatus(value string) StatusFilter {
	switch StatusFilter(strings.TrimSpace(value)) {
	case StatusCompleted:
		return StatusCompleted
	case StatusPending:
		return StatusPending
	default:
		return StatusAll
	}
}

// ParseSort maps a query value to a sort key. Unknown values keep collection order.
func ParseSort(value string) SortKey {
	switch SortKey(strings.TrimSpace(value)) {
	case SortPriority:
		return SortPriority
	case SortDate:
		return SortDate
	case SortDueDate:
		return SortDueDate
	default:
		return SortNone
	}
}

// Query describes a view over the task collection.
type Query struct {
	Status StatusFilter `json:"status,omitempty"`
	Search string       `json:"search,omitempty"`
	Sort   SortKey      `json:"sort,omitempty"`
}

// Project returns the visible, ordered subsequence of tasks for q.
// The input slice is never modified.
func Project(tasks []Task, q Query) []Task {
	needle := strings.ToLower(q.Search)

	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesStatus(t, q.Status) {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		result = append(result, t)
	}

	if less := lessFunc(q.Sort, result); less != nil {
		sort.SliceStable(result, less)
	}
	return result
}

func matchesStatus(t Task, status StatusFilter) bool {
	switch status {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	default:
		return true
	}
}

func matchesSearch(t Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func lessFunc(key SortKey, ts []Task) func(i, j int) bool {
	switch key {
	case SortPriority:
		return func(i, j int) bool {
			return ts[i].Priority.Rank() > ts[j].Priority.Rank()
		}
	case SortDate:
		return func(i, j int) bool {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
	case SortDueDate:
		// tasks without a due date go last
		return func(i, j int) bool {
			a, b := ts[i].DueDate, ts[j].DueDate
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.Before(b.Time)
		}
	default:
		return nil
	}
}
