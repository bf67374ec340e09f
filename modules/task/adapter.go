package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort on top of the task module's request-reply services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks retrieves a page of tasks via the list service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*domain.Page, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list service call failed: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error.Err()
	}
	return &resp.Page, nil
}

// GetTask retrieves a task by ID via the get service.
func (a *taskAdapter) GetTask(ctx context.Context, id uint) (*domain.Task, error) {
	req := GetTaskRequest{ID: id}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get service call failed: %w", err)
	}
	return unwrapTask(resp)
}

// CreateTask creates a task via the create service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create service call failed: %w", err)
	}
	return unwrapTask(resp)
}

// UpdateTask updates a task via the update service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update service call failed: %w", err)
	}
	return unwrapTask(resp)
}

// DeleteTask deletes a task via the delete service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id uint) error {
	req := DeleteTaskRequest{ID: id}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete service call failed: %w", err)
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", id)
	}
	return nil
}

func unwrapTask(resp TaskResponse) (*domain.Task, error) {
	if resp.Error != nil {
		return nil, resp.Error.Err()
	}
	if resp.Task == nil {
		return nil, fmt.Errorf("empty task reply")
	}
	return resp.Task, nil
}
