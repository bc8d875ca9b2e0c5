package task

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/example/task-tracker/domain/task"
)

// Repository owns the canonical task collection.
type Repository interface {
	// List returns every task in insertion order.
	List(ctx context.Context) ([]domain.Task, error)
	// Create assigns a fresh id to t and stores it.
	Create(ctx context.Context, t *domain.Task) error
	// Update runs fn on the stored task and saves the result atomically.
	// It returns domain.ErrNotFound when id is absent and leaves the task unchanged when fn fails.
	Update(ctx context.Context, id int64, fn func(*domain.Task) error) (domain.Task, error)
	// Delete removes the task and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
	Close() error
}

// Store drivers accepted by OpenRepository.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// OpenRepository opens the backend selected by driver.
func OpenRepository(driver string) (Repository, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryRepository(), nil
	case DriverSQLite:
		return OpenGormRepository(":memory:")
	default:
		return nil, fmt.Errorf("unknown task store driver %q", driver)
	}
}

// MemoryRepository keeps tasks in an insertion-ordered slice.
type MemoryRepository struct {
	tasks  []domain.Task
	nextID int64
	mu     sync.RWMutex
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks:  make([]domain.Task, 0),
		nextID: 1,
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Task, len(r.tasks))
	for i, t := range r.tasks {
		result[i] = clone(t)
	}
	return result, nil
}

func (r *MemoryRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	r.tasks = append(r.tasks, clone(*t))
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, fn func(*domain.Task) error) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Task{}, domain.NotFound(id)
	}

	working := clone(r.tasks[i])
	if err := fn(&working); err != nil {
		return domain.Task{}, err
	}
	working.ID = id
	r.tasks[i] = working
	return clone(working), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return true, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// clone detaches the due date pointer so callers cannot reach stored state.
func clone(t domain.Task) domain.Task {
	t.DueDate = t.DueDate.Clone()
	return t
}
