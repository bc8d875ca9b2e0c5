package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

// Service implements the task store operations on top of a Repository.
type Service struct {
	repo    Repository
	cache   cache.ListCache
	sfGroup singleflight.Group
	// generation is part of every list cache key; each mutation moves it forward.
	generation atomic.Int64
	eventBus   mono.EventBus
	logger     types.Logger
	now        func() time.Time
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service. A nil cache disables list caching.
func NewService(repo Repository, c cache.ListCache, logger types.Logger) *Service {
	if c == nil {
		c = cache.Disabled{}
	}
	s := &Service{
		repo:   repo,
		cache:  c,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	// entries cached by a previous process never match a fresh store
	s.generation.Store(time.Now().UnixNano())
	return s
}

// SetEventBus enables event publishing.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// flightKey collapses concurrent reads of the same projection at the same generation.
func flightKey(gen int64, q domain.Query) string {
	return fmt.Sprintf("%d|%s|%s|%s", gen, q.Status, q.Sort, q.Search)
}

// ListTasks returns the projection described by req (cache-aside).
func (s *Service) ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	q := req.Query()
	gen := s.generation.Load()

	cached, found, err := s.cache.Lookup(ctx, gen, q)
	if err != nil {
		s.logger.Warn("List cache read failed", "generation", gen, "error", err)
	}
	if found {
		s.logger.Debug("List cache hit", "generation", gen)
		return cached, nil
	}

	val, err, _ := s.sfGroup.Do(flightKey(gen, q), func() (any, error) {
		all, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return domain.Project(all, q), nil
	})
	if err != nil {
		return nil, err
	}
	tasks := val.([]domain.Task)

	// skip the write when a mutation landed while we were reading
	if s.generation.Load() == gen {
		if err := s.cache.Store(ctx, gen, q, tasks); err != nil {
			s.logger.Warn("List cache write failed", "generation", gen, "error", err)
		}
	}

	// singleflight callers share the slice
	result := make([]domain.Task, len(tasks))
	copy(result, tasks)
	return result, nil
}

// CreateTask validates the draft and stores a new task.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (domain.Task, error) {
	t, err := domain.New(req.Draft, s.now())
	if err != nil {
		return domain.Task{}, err
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return domain.Task{}, fmt.Errorf("failed to save task: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("Task created", "id", t.ID, "priority", string(t.Priority))
	s.publish("TaskCreated", t.ID, func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Priority:  string(t.Priority),
			CreatedAt: t.CreatedAt,
		}, nil)
	})

	return t, nil
}

// UpdateTask merges the provided fields into an existing task.
func (s *Service) UpdateTask(ctx context.Context, req UpdateTaskRequest) (domain.Task, error) {
	t, err := s.repo.Update(ctx, req.TaskID, req.Patch.Apply)
	if err != nil {
		return domain.Task{}, err
	}
	if req.Patch.Empty() {
		return t, nil
	}
	s.invalidate(ctx)

	fields := req.Patch.Fields()
	s.logger.Info("Task updated", "id", t.ID, "fields", fields)
	s.publish("TaskUpdated", t.ID, func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Fields:    fields,
			UpdatedAt: s.now(),
		}, nil)
	})

	return t, nil
}

// ToggleTask flips the completion flag.
func (s *Service) ToggleTask(ctx context.Context, taskID int64) (domain.Task, error) {
	t, err := s.repo.Update(ctx, taskID, func(t *domain.Task) error {
		t.Completed = !t.Completed
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)

	s.logger.Info("Task toggled", "id", t.ID, "completed", t.Completed)
	s.publish("TaskToggled", t.ID, func(bus mono.EventBus) error {
		return events.TaskToggledV1.Publish(bus, events.TaskToggledEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			ToggledAt: s.now(),
		}, nil)
	})

	return t, nil
}

// DeleteTask removes a task. Deleting an absent id succeeds and changes nothing.
func (s *Service) DeleteTask(ctx context.Context, taskID int64) error {
	_, err := s.deleteTask(ctx, taskID)
	return err
}

func (s *Service) deleteTask(ctx context.Context, taskID int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		s.logger.Debug("Delete of absent task ignored", "id", taskID)
		return false, nil
	}
	s.invalidate(ctx)

	s.logger.Info("Task deleted", "id", taskID)
	s.publish("TaskDeleted", taskID, func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    taskID,
			DeletedAt: s.now(),
		}, nil)
	})

	return true, nil
}

// invalidate retires every cached projection.
func (s *Service) invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Retire(ctx); err != nil {
		s.logger.Warn("Failed to invalidate list cache", "error", err)
	}
}

// publish emits an event when a bus is attached. Failures are logged, not returned.
func (s *Service) publish(event string, taskID int64, emit func(mono.EventBus) error) {
	if s.eventBus == nil {
		return
	}
	if err := emit(s.eventBus); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "id", taskID, "error", err)
	}
}
