package client

import (
	"context"
	"sync"

	domain "github.com/example/task-tracker/domain/task"
)

// Board is the presentation-side copy of the task collection. It is never
// authoritative: every change goes to the server first and the reply is folded in
// with the domain reconciliation rules. A failed call leaves the board unchanged.
type Board struct {
	api   *Client
	mu    sync.RWMutex
	tasks []domain.Task
}

// NewBoard creates an empty board backed by api.
func NewBoard(api *Client) *Board {
	return &Board{
		api:   api,
		tasks: []domain.Task{},
	}
}

// Refresh replaces the local copy with the server's collection.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.List(ctx, domain.Query{})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Add creates a task and appends it. Fields the caller supplied win over the reply.
func (b *Board) Add(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	created, err := b.api.Create(ctx, draft)
	if err != nil {
		return domain.Task{}, err
	}
	merged := domain.MergeCreated(created, draft)

	b.mu.Lock()
	b.tasks = domain.ReplaceByID(b.tasks, merged)
	b.mu.Unlock()
	return merged, nil
}

// Update applies a partial update and replaces the local task with the reply.
func (b *Board) Update(ctx context.Context, id int64, patch domain.Patch) (domain.Task, error) {
	updated, err := b.api.Update(ctx, id, patch)
	if err != nil {
		return domain.Task{}, err
	}

	b.mu.Lock()
	b.tasks = domain.ReplaceByID(b.tasks, updated)
	b.mu.Unlock()
	return updated, nil
}

// Toggle flips completion. When the reply omits the new state the local flag is flipped.
// A task the board does not hold is left out of the board; only the reply's state
// is returned.
func (b *Board) Toggle(ctx context.Context, id int64) (domain.Task, error) {
	reply, err := b.api.Toggle(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	local, ok := find(b.tasks, id)
	if !ok {
		return domain.Task{ID: id, Completed: reply.Completed != nil && *reply.Completed}, nil
	}
	toggled := domain.ApplyToggle(local, reply)
	b.tasks = domain.ReplaceByID(b.tasks, toggled)
	return toggled, nil
}

// Remove deletes a task on the server and drops it locally.
func (b *Board) Remove(ctx context.Context, id int64) error {
	if err := b.api.Delete(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	b.tasks = domain.RemoveByID(b.tasks, id)
	b.mu.Unlock()
	return nil
}

// Move reorders the local copy only; the server order is untouched.
func (b *Board) Move(id int64, index int) {
	b.mu.Lock()
	b.tasks = domain.MoveByID(b.tasks, id, index)
	b.mu.Unlock()
}

// Tasks returns the local copy in board order.
func (b *Board) Tasks() []domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Visible projects the local copy for display.
func (b *Board) Visible(q domain.Query) []domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.Project(b.tasks, q)
}

func find(tasks []domain.Task, id int64) (domain.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
