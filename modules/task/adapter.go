package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// callService performs one typed request-reply call against container.
func callService[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListTasks returns the projection described by req via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := callService(ctx, a.container, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "create-task", &req, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.task()
}

// UpdateTask merges the provided fields via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "update-task", &req, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.task()
}

// ToggleTask flips the completion flag via the toggle-task service.
func (a *taskAdapter) ToggleTask(ctx context.Context, taskID int64) (domain.Task, error) {
	req := TaskIDRequest{TaskID: taskID}
	var resp TaskResponse
	if err := callService(ctx, a.container, "toggle-task", &req, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.task()
}

// DeleteTask removes a task via the delete-task service. An absent id is not an error.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID int64) error {
	req := TaskIDRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := callService(ctx, a.container, "delete-task", &req, &resp); err != nil {
		return err
	}
	return resp.Error.Err()
}

// task unpacks a single-task response.
func (r TaskResponse) task() (domain.Task, error) {
	if err := r.Error.Err(); err != nil {
		return domain.Task{}, err
	}
	if r.Task == nil {
		return domain.Task{}, fmt.Errorf("empty task response")
	}
	return *r.Task, nil
}
