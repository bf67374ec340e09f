package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/task-management-demo/domain/task"
)

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Status string `json:"status,omitempty"`
	Page   int    `json:"page"`
	Size   int    `json:"size"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Page  domain.Page   `json:"page"`
	Error *ServiceError `json:"error,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	ModifiedBy  string     `json:"modified_by,omitempty"`
}

// UpdateTaskRequest is the request for updating a task.
// A nil Status or Priority leaves the stored value unchanged.
type UpdateTaskRequest struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	ModifiedBy  string     `json:"modified_by,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// TaskResponse carries a single task, or the domain error that prevented it.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// Error kinds carried in ServiceError.
const (
	ErrorKindNotFound = "not_found"
	ErrorKindInvalid  = "invalid"
)

// ServiceError describes a domain failure inside a reply body so callers
// can tell it apart from a transport failure.
type ServiceError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Err converts the reply error back into an error matching the domain sentinel.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ErrorKindNotFound:
		return &remoteError{sentinel: domain.ErrNotFound, message: e.Message}
	case ErrorKindInvalid:
		return &remoteError{sentinel: domain.ErrInvalidTask, message: e.Message}
	}
	return errors.New(e.Message)
}

// toServiceError classifies err. It returns nil for errors that are not
// domain failures; those travel as transport errors instead.
func toServiceError(err error) *ServiceError {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &ServiceError{Kind: ErrorKindNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTask):
		return &ServiceError{Kind: ErrorKindInvalid, Message: err.Error()}
	}
	return nil
}

type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }
func (e *remoteError) Unwrap() error { return e.sentinel }

// TaskPort defines the task operations available to other modules.
type TaskPort interface {
	ListTasks(ctx context.Context, req *ListTasksRequest) (*domain.Page, error)
	GetTask(ctx context.Context, id uint) (*domain.Task, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}
