package task

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task is the core domain entity representing a todo item.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	DueDate     *Date     `json:"dueDate,omitempty"`
}

// Draft carries the caller-supplied fields of a new task.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// New builds a task from a draft, applying defaults. The id is assigned by the store.
func New(draft Draft, now time.Time) (Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	priority := draft.Priority
	if priority == "" {
		priority = PriorityLow
	}

	return Task{
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		Priority:    priority,
		CreatedAt:   now,
		DueDate:     draft.DueDate.Clone(),
	}, nil
}

// Patch is a partial update. A nil field was omitted by the caller and is left alone;
// a non-nil field is applied even when it holds the zero value. Title is the exception:
// a stored task always keeps a title, so a blank one counts as omitted.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *DateEdit `json:"dueDate,omitempty"`
}

// DateEdit sets or clears a due date. A zero DateEdit clears.
type DateEdit struct {
	Date *Date
}

func (p Patch) hasTitle() bool {
	return p.Title != nil && strings.TrimSpace(*p.Title) != ""
}

// Fields names the fields the patch changes, in declaration order.
func (p Patch) Fields() []string {
	fields := make([]string, 0, 4)
	if p.hasTitle() {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	return fields
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Fields()) == 0
}

// Apply merges the patch into t. It has the signature of a repository update
// callback and never fails.
func (p Patch) Apply(t *Task) error {
	if p.hasTitle() {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
		if t.Priority == "" {
			t.Priority = PriorityLow
		}
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate.Date.Clone()
	}
	return nil
}
