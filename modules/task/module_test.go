package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) *TaskModule {
	t.Helper()
	m := NewModule(NewMemoryRepository(), nil, newMockLogger())
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func TestTaskModule_Name(t *testing.T) {
	m := NewModule(NewMemoryRepository(), nil, newMockLogger())
	assert.Equal(t, "task", m.Name())
	assert.Len(t, m.EmitEvents(), 4)
}

func TestTaskModule_Handlers(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	created, err := m.createTask(ctx, CreateTaskRequest{Draft: domain.Draft{Title: "Handler task"}}, nil)
	require.NoError(t, err)
	require.Nil(t, created.Error)
	require.NotNil(t, created.Task)
	id := created.Task.ID

	toggled, err := m.toggleTask(ctx, TaskIDRequest{TaskID: id}, nil)
	require.NoError(t, err)
	require.Nil(t, toggled.Error)
	assert.True(t, toggled.Task.Completed)

	list, err := m.listTasks(ctx, ListTasksRequest{Status: "completed"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	deleted, err := m.deleteTask(ctx, TaskIDRequest{TaskID: id}, nil)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	again, err := m.deleteTask(ctx, TaskIDRequest{TaskID: id}, nil)
	require.NoError(t, err)
	assert.Nil(t, again.Error)
	assert.False(t, again.Deleted)
}

func TestTaskModule_ErrorsTravelInPayload(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	created, err := m.createTask(ctx, CreateTaskRequest{}, nil)
	require.NoError(t, err)
	require.NotNil(t, created.Error)
	assert.Equal(t, domain.CodeValidation, created.Error.Code)
	assert.Nil(t, created.Task)

	title := "x"
	updated, err := m.updateTask(ctx, UpdateTaskRequest{TaskID: 404, Patch: domain.Patch{Title: &title}}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.Error)
	assert.Equal(t, domain.CodeNotFound, updated.Error.Code)

	// the payload survives the wire and rebuilds the sentinel
	data, err := json.Marshal(updated)
	require.NoError(t, err)
	var decoded TaskResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, err = decoded.task()
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "task not found: 404", err.Error())
}

func TestUpdateTaskRequest_JSON(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"task_id":7,"description":"","dueDate":""}`), &req))

	assert.Equal(t, int64(7), req.TaskID)
	require.NotNil(t, req.Description)
	assert.Equal(t, "", *req.Description)
	require.NotNil(t, req.DueDate)
	assert.Nil(t, req.DueDate.Date)
	assert.Nil(t, req.Title)
	assert.Nil(t, req.Priority)
}

func TestTaskModule_Health(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	_, err := m.createTask(ctx, CreateTaskRequest{Draft: domain.Draft{Title: "one"}}, nil)
	require.NoError(t, err)

	status := m.Health(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Details["tasks"])
}

func TestTaskModule_HealthSQLite(t *testing.T) {
	repo, err := OpenGormRepository(":memory:")
	require.NoError(t, err)
	m := NewModule(repo, nil, newMockLogger())
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "*task.GormRepository", status.Details["store"])
}
