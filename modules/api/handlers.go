package api

import (
	"errors"
	"strconv"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/example/task-management-demo/modules/auth"
	"github.com/example/task-management-demo/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	tasks  task.TaskPort
	auth   auth.AuthPort
	logger types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tasks task.TaskPort, authPort auth.AuthPort, logger types.Logger) *Handlers {
	return &Handlers{
		tasks:  tasks,
		auth:   authPort,
		logger: logger,
	}
}

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return badRequest(c, "page must be an integer")
	}
	size, err := queryInt(c, "size", domain.DefaultPageSize)
	if err != nil {
		return badRequest(c, "size must be an integer")
	}

	result, err := h.tasks.ListTasks(c.UserContext(), &task.ListTasksRequest{
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(toPageDTO(result))
}

// GetTask handles GET /api/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, "Invalid task ID")
	}

	t, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(toTaskDTO(t))
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate.Ptr(),
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(toTaskDTO(t))
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, "Invalid task ID")
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		ID:          id,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate.Ptr(),
		Status:      body.Status,
		Priority:    body.Priority,
		ModifiedBy:  body.ModifiedBy,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(toTaskDTO(t))
}

// DeleteTask handles DELETE /api/tasks/:id. Deleting an unknown id succeeds.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, "Invalid task ID")
	}

	if err := h.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return h.handleTaskError(c, err)
	}

	c.Status(fiber.StatusOK)
	return nil
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ok, err := h.auth.Login(c.UserContext(), body.Username, body.Password)
	if err != nil {
		h.logger.Error("Login failed", "username", body.Username, "error", err)
		return internalError(c)
	}

	return c.JSON(LoginResult{Success: ok})
}

// handleTaskError maps task errors to HTTP responses.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidTask):
		return badRequest(c, err.Error())
	}

	h.logger.Error("Task request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err)
	return internalError(c)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An unexpected error occurred",
	})
}

// queryInt reads an integer query parameter. A missing parameter yields def.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func taskID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
