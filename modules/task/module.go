package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule owns the canonical task collection and serves it to other modules.
type TaskModule struct {
	repo    Repository
	service *Service
	logger  types.Logger
}

var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.EventBusAwareModule   = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
)

// NewModule creates the task module over repo. A nil cache disables list caching.
func NewModule(repo Repository, c cache.ListCache, logger types.Logger) *TaskModule {
	return &TaskModule{
		repo:    repo,
		service: NewService(repo, c, logger),
		logger:  logger,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.service.SetEventBus(bus)
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskToggledV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "toggle-task", json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register toggle-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", []string{"list-tasks", "create-task", "update-task", "toggle-task", "delete-task"})
	return nil
}

// The handlers below never return a Go error for domain failures; the failure is
// carried in the response so the caller can rebuild the sentinel.

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx, req)
	if err != nil {
		return ListTasksResponse{Error: newServiceError(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.CreateTask(ctx, req)
	if err != nil {
		return TaskResponse{Error: newServiceError(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.UpdateTask(ctx, req)
	if err != nil {
		return TaskResponse{Error: newServiceError(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *TaskModule) toggleTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.ToggleTask(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: newServiceError(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	deleted, err := m.service.deleteTask(ctx, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{Error: newServiceError(err)}, nil
	}
	return DeleteTaskResponse{Deleted: deleted}, nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.service.eventBus == nil {
		m.logger.Warn("Event bus not set, task events will not be published")
	}
	m.logger.Info("Task module started")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if err := m.repo.Close(); err != nil {
		return fmt.Errorf("failed to close task repository: %w", err)
	}
	m.logger.Info("Task module stopped")
	return nil
}

// pinger is implemented by repositories backed by a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the repository is reachable.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if p, ok := m.repo.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("task store ping failed: %v", err),
			}
		}
	}

	tasks, err := m.repo.List(ctx)
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("task store unavailable: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"store": fmt.Sprintf("%T", m.repo),
			"tasks": len(tasks),
		},
	}
}
