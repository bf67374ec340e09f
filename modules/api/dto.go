package api

import (
	domain "github.com/example/task-management-demo/domain/task"
)

// TaskDTO is the wire representation of a task.
type TaskDTO struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *domain.Timestamp `json:"dueDate"`
	CreatedBy   string            `json:"createdBy"`
	CreatedOn   domain.Timestamp  `json:"createdOn"`
	ModifiedBy  string            `json:"modifiedBy"`
	ModifiedOn  domain.Timestamp  `json:"modifiedOn"`
}

// PageDTO is the wire representation of a page of tasks.
type PageDTO struct {
	Content          []TaskDTO `json:"content"`
	TotalElements    int64     `json:"totalElements"`
	TotalPages       int       `json:"totalPages"`
	Number           int       `json:"number"`
	Size             int       `json:"size"`
	NumberOfElements int       `json:"numberOfElements"`
	First            bool      `json:"first"`
	Last             bool      `json:"last"`
	Empty            bool      `json:"empty"`
}

// CreateTaskBody is the body accepted by POST /api/tasks. Identity and
// audit fields are not part of it, so supplied values are dropped.
type CreateTaskBody struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *domain.Timestamp `json:"dueDate"`
}

// UpdateTaskBody is the body accepted by PUT /api/tasks/:id.
type UpdateTaskBody struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      *string           `json:"status"`
	Priority    *string           `json:"priority"`
	DueDate     *domain.Timestamp `json:"dueDate"`
	ModifiedBy  string            `json:"modifiedBy"`
}

// LoginBody is the body accepted by POST /api/auth/login.
type LoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     domain.NewTimestamp(t.DueDate),
		CreatedBy:   t.CreatedBy,
		CreatedOn:   domain.Timestamp{Time: t.CreatedOn},
		ModifiedBy:  t.ModifiedBy,
		ModifiedOn:  domain.Timestamp{Time: t.ModifiedOn},
	}
}

func toPageDTO(p *domain.Page) PageDTO {
	content := make([]TaskDTO, 0, len(p.Content))
	for i := range p.Content {
		content = append(content, toTaskDTO(&p.Content[i]))
	}
	return PageDTO{
		Content:          content,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		Number:           p.Number,
		Size:             p.Size,
		NumberOfElements: p.NumberOfElements,
		First:            p.First,
		Last:             p.Last,
		Empty:            p.Empty,
	}
}
