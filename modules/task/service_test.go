package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newMockLogger() types.Logger {
	return &mockLogger{}
}

// memoryCache is an in-process cache.ListCache that records its traffic.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	gets        int
	hits        int
	invalidated int
	failGet     bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func memoryKey(gen int64, q domain.Query) string {
	return fmt.Sprintf("%d/%s/%s/%s", gen, q.Status, q.Sort, q.Search)
}

func (c *memoryCache) Lookup(_ context.Context, gen int64, q domain.Query) ([]domain.Task, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	data, ok := c.entries[memoryKey(gen, q)]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, false, err
	}
	return tasks, true, nil
}

func (c *memoryCache) Store(_ context.Context, gen int64, q domain.Query, tasks []domain.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memoryKey(gen, q)] = data
	return nil
}

func (c *memoryCache) Retire(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.invalidated++
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryRepository(), nil, newMockLogger())
}

func createTask(t *testing.T, s *Service, draft domain.Draft) domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), CreateTaskRequest{Draft: draft})
	require.NoError(t, err)
	return task
}

func TestService_CreateTask(t *testing.T) {
	s := newTestService(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	existing := createTask(t, s, domain.Draft{Title: "existing"})

	tests := []struct {
		name         string
		draft        domain.Draft
		wantErr      error
		wantPriority domain.Priority
	}{
		{
			name:         "defaults",
			draft:        domain.Draft{Title: "Write docs"},
			wantPriority: domain.PriorityLow,
		},
		{
			name:         "explicit priority",
			draft:        domain.Draft{Title: "Fix bug", Description: "crash on start", Priority: domain.PriorityHigh},
			wantPriority: domain.PriorityHigh,
		},
		{
			name:    "empty title",
			draft:   domain.Draft{Title: ""},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "blank title",
			draft:   domain.Draft{Title: "   ", Description: "no title"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := s.CreateTask(ctx, CreateTaskRequest{Draft: tt.draft})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, existing.ID, task.ID)
			assert.NotZero(t, task.ID)
			assert.False(t, task.Completed)
			assert.Equal(t, tt.wantPriority, task.Priority)
			assert.Equal(t, tt.draft.Title, task.Title)
			assert.Equal(t, tt.draft.Description, task.Description)
			assert.True(t, fixed.Equal(task.CreatedAt))
		})
	}
}

func TestService_CreateThenList(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	due := domain.NewDate(2099, time.January, 1)
	created := createTask(t, s, domain.Draft{Title: "Plan", Description: "sprint", Priority: domain.PriorityMedium, DueDate: &due})

	tasks, err := s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created, tasks[0])
}

func TestService_RejectedCreateLeavesCollectionUnchanged(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	createTask(t, s, domain.Draft{Title: "one"})
	_, err := s.CreateTask(ctx, CreateTaskRequest{})
	require.ErrorIs(t, err, domain.ErrValidation)

	tasks, err := s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	strPtr := func(v string) *string { return &v }
	prioPtr := func(v domain.Priority) *domain.Priority { return &v }

	tests := []struct {
		name    string
		patch   domain.Patch
		missing bool
		wantErr error
		check   func(t *testing.T, got domain.Task)
	}{
		{
			name:  "priority only keeps title and description",
			patch: domain.Patch{Priority: prioPtr(domain.PriorityHigh)},
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, domain.PriorityHigh, got.Priority)
				assert.Equal(t, "Original", got.Title)
				assert.Equal(t, "details", got.Description)
			},
		},
		{
			name:  "empty description clears it",
			patch: domain.Patch{Description: strPtr("")},
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, "", got.Description)
				assert.Equal(t, "Original", got.Title)
			},
		},
		{
			name:  "clear due date",
			patch: domain.Patch{DueDate: &domain.DateEdit{}},
			check: func(t *testing.T, got domain.Task) {
				assert.Nil(t, got.DueDate)
			},
		},
		{
			name:  "empty patch is a no-op",
			patch: domain.Patch{},
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, "Original", got.Title)
				assert.Equal(t, domain.PriorityMedium, got.Priority)
			},
		},
		{
			name:  "blank title is ignored and the rest applies",
			patch: domain.Patch{Title: strPtr(" "), Priority: prioPtr(domain.PriorityHigh)},
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, "Original", got.Title)
				assert.Equal(t, domain.PriorityHigh, got.Priority)
			},
		},
		{
			name:    "missing id",
			patch:   domain.Patch{Title: strPtr("x")},
			missing: true,
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			due := domain.NewDate(2030, time.May, 5)
			task := createTask(t, s, domain.Draft{
				Title:       "Original",
				Description: "details",
				Priority:    domain.PriorityMedium,
				DueDate:     &due,
			})

			id := task.ID
			if tt.missing {
				id += 1000
			}

			got, err := s.UpdateTask(ctx, UpdateTaskRequest{TaskID: id, Patch: tt.patch})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				tasks, listErr := s.ListTasks(ctx, ListTasksRequest{})
				require.NoError(t, listErr)
				assert.Equal(t, task, tasks[0])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, task.ID, got.ID)
			assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
			tt.check(t, got)
		})
	}
}

func TestService_ToggleTwiceRestores(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, domain.Draft{Title: "toggle me"})

	first, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Completed, second.Completed)

	_, err = s.ToggleTask(ctx, task.ID+99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	keep := createTask(t, s, domain.Draft{Title: "keep"})
	drop := createTask(t, s, domain.Draft{Title: "drop"})

	require.NoError(t, s.DeleteTask(ctx, drop.ID))
	require.NoError(t, s.DeleteTask(ctx, drop.ID))
	require.NoError(t, s.DeleteTask(ctx, 12345))

	tasks, err := s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep.ID, tasks[0].ID)
}

func TestService_ListTasksProjection(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := createTask(t, s, domain.Draft{Title: "A", Priority: domain.PriorityLow})
	bDue := domain.NewDate(2099, time.January, 1)
	b := createTask(t, s, domain.Draft{Title: "B", Priority: domain.PriorityHigh, DueDate: &bDue})
	cDue := domain.NewDate(2020, time.January, 1)
	c := createTask(t, s, domain.Draft{Title: "C", Description: "Needs Review", Priority: domain.PriorityMedium, DueDate: &cDue})
	_, err := s.ToggleTask(ctx, b.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  ListTasksRequest
		want []int64
	}{
		{name: "insertion order", req: ListTasksRequest{}, want: []int64{a.ID, b.ID, c.ID}},
		{name: "pending", req: ListTasksRequest{Status: "pending"}, want: []int64{a.ID, c.ID}},
		{name: "completed", req: ListTasksRequest{Status: "completed"}, want: []int64{b.ID}},
		{name: "priority", req: ListTasksRequest{Sort: "priority"}, want: []int64{b.ID, c.ID, a.ID}},
		{name: "due date", req: ListTasksRequest{Sort: "dueDate"}, want: []int64{c.ID, b.ID, a.ID}},
		{name: "search description", req: ListTasksRequest{Search: "review"}, want: []int64{c.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.ListTasks(ctx, tt.req)
			require.NoError(t, err)

			got := make([]int64, 0, len(tasks))
			for _, task := range tasks {
				got = append(got, task.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ListCache(t *testing.T) {
	c := newMemoryCache()
	s := NewService(NewMemoryRepository(), c, newMockLogger())
	ctx := context.Background()

	createTask(t, s, domain.Draft{Title: "first"})

	tasks, err := s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 0, c.hits)

	tasks, err = s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, c.hits)

	// a mutation must never be masked by a cached projection
	invalidations := c.invalidated
	second := createTask(t, s, domain.Draft{Title: "second"})
	assert.Greater(t, c.invalidated, invalidations)

	tasks, err = s.ListTasks(ctx, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[1].ID)

	_, err = s.ToggleTask(ctx, second.ID)
	require.NoError(t, err)
	tasks, err = s.ListTasks(ctx, ListTasksRequest{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}

func TestService_ListCacheErrorFallsBackToStore(t *testing.T) {
	c := newMemoryCache()
	c.failGet = true
	s := NewService(NewMemoryRepository(), c, newMockLogger())

	createTask(t, s, domain.Draft{Title: "still served"})

	tasks, err := s.ListTasks(context.Background(), ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "still served", tasks[0].Title)
}

func TestService_ConcurrentCreates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := s.CreateTask(ctx, CreateTaskRequest{Draft: domain.Draft{Title: "parallel"}})
			if err == nil {
				ids <- task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
