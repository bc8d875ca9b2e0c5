package api

import (
	"errors"
	"strconv"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

const defaultActivityLimit = 20

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api")

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Patch("/:id/toggle", m.toggleTask)

	api.Get("/activity", m.listActivity)
}

// healthHandler handles GET /health. The task store is checked with an unfiltered list.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	tasks, err := m.taskPort.ListTasks(c.UserContext(), task.ListTasksRequest{})
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "unhealthy",
			Details: map[string]any{
				"module": "api",
				"error":  err.Error(),
			},
		})
	}

	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"tasks":  len(tasks),
		},
	})
}

// listTasks handles GET /api/tasks. Without query parameters every task is
// returned in insertion order.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	tasks, err := m.taskPort.ListTasks(c.UserContext(), task.ListTasksRequest{
		Status: c.Query("status"),
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(tasks)
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := m.parseBody(c, &req); err != nil {
		return m.writeError(c, err)
	}

	created, err := m.taskPort.CreateTask(c.UserContext(), task.CreateTaskRequest{Draft: req.draft()})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// updateTask handles PUT /api/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	var patch UpdateTaskRequest
	if err := m.parseBody(c, &patch); err != nil {
		return m.writeError(c, err)
	}

	updated, err := m.taskPort.UpdateTask(c.UserContext(), task.UpdateTaskRequest{TaskID: id, Patch: patch})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(updated)
}

// deleteTask handles DELETE /api/tasks/:id. Unknown ids succeed.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	if err := m.taskPort.DeleteTask(c.UserContext(), id); err != nil {
		return m.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// toggleTask handles PATCH /api/tasks/:id/toggle.
func (m *APIModule) toggleTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	toggled, err := m.taskPort.ToggleTask(c.UserContext(), id)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(toggled)
}

// listActivity handles GET /api/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultActivityLimit)

	entries, err := m.activityPort.RecentActivity(c.UserContext(), limit)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(ActivityResponse{Entries: entries, Total: len(entries)})
}

// requestError is a client mistake detected before reaching the task module.
type requestError struct {
	kind    string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func taskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, &requestError{kind: "invalid_id", message: "Task ID must be an integer"}
	}
	return id, nil
}

// parseBody decodes a JSON body into dest. An empty body decodes as {}.
func (m *APIModule) parseBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dest); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return &requestError{kind: "invalid_request", message: "Invalid request body"}
	}
	return nil
}

// writeError maps err to a status code and the JSON error body.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   reqErr.kind,
			Message: reqErr.message,
		})
	}

	status := fiber.StatusInternalServerError
	message := "Internal Server Error"
	code := domain.Code(err)
	switch code {
	case domain.CodeValidation:
		status = fiber.StatusBadRequest
		message = err.Error()
	case domain.CodeNotFound:
		status = fiber.StatusNotFound
		message = err.Error()
	default:
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   code,
		Message: message,
	})
}
