package task

import (
	"context"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/go-monolith/mono"
)

// listTasks handles the list service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.service.List(ctx, req.Status, req.Page, req.Size)
	if err != nil {
		if svcErr := toServiceError(err); svcErr != nil {
			return ListTasksResponse{Error: svcErr}, nil
		}
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Page: page}, nil
}

// getTask handles the get service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return taskReply(m.service.Get(ctx, req.ID))
}

// createTask handles the create service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return taskReply(m.service.Create(ctx, &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CreatedBy:   req.CreatedBy,
		ModifiedBy:  req.ModifiedBy,
	}))
}

// updateTask handles the update service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return taskReply(m.service.Update(ctx, req.ID, Patch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		ModifiedBy:  req.ModifiedBy,
	}))
}

// deleteTask handles the delete service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

// taskReply puts domain failures into the reply body and passes other errors through.
func taskReply(task *domain.Task, err error) (TaskResponse, error) {
	if err != nil {
		if svcErr := toServiceError(err); svcErr != nil {
			return TaskResponse{Error: svcErr}, nil
		}
		return TaskResponse{}, err
	}
	return TaskResponse{Task: task}, nil
}
