package task

import (
	"context"

	domain "github.com/example/task-tracker/domain/task"
)

// ServiceError carries a failure across the request-reply boundary.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	return &ServiceError{Code: domain.Code(err), Message: err.Error()}
}

// Err converts the payload back into an error wrapping the domain sentinels.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	return domain.FromCode(e.Code, e.Message)
}

// ListTasksRequest is the request for listing tasks. Empty fields select the whole
// collection in insertion order.
type ListTasksRequest struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// Query returns the projection described by the request.
func (r ListTasksRequest) Query() domain.Query {
	return domain.Query{
		Status: domain.ParseStatus(r.Status),
		Search: r.Search,
		Sort:   domain.ParseSort(r.Sort),
	}
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	Error *ServiceError `json:"error,omitempty"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	domain.Draft
}

// UpdateTaskRequest is the request for a partial update.
type UpdateTaskRequest struct {
	TaskID int64 `json:"task_id"`
	domain.Patch
}

// TaskIDRequest addresses a single task.
type TaskIDRequest struct {
	TaskID int64 `json:"task_id"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task. Deleted is false when the id
// was already absent, which is not an error.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// TaskPort defines the task operations used by driving adapters such as the HTTP API.
type TaskPort interface {
	ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (domain.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (domain.Task, error)
	ToggleTask(ctx context.Context, taskID int64) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
}
