package api

import (
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/activity"
)

// CreateTaskRequest is the HTTP request for creating a task.
// An empty dueDate string is the same as omitting it.
type CreateTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    domain.Priority  `json:"priority"`
	DueDate     *domain.DateEdit `json:"dueDate"`
}

func (r CreateTaskRequest) draft() domain.Draft {
	d := domain.Draft{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
	if r.DueDate != nil {
		d.DueDate = r.DueDate.Date
	}
	return d
}

// UpdateTaskRequest is the HTTP request for a partial update. Fields that are
// omitted or null are left alone; see domain.Patch.
type UpdateTaskRequest = domain.Patch

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}
