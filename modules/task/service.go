package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/go-monolith/mono/pkg/types"
)

// Store is the persistence contract the service needs.
// *domain.Repository satisfies it.
type Store interface {
	Save(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint) (*domain.Task, error)
	DeleteByID(ctx context.Context, id uint) error
	FindAll(ctx context.Context, req domain.PageRequest) (domain.Page, error)
	FindByStatus(ctx context.Context, status string, req domain.PageRequest) (domain.Page, error)
}

// Publisher emits task lifecycle events.
type Publisher interface {
	TaskCreated(task *domain.Task) error
	TaskUpdated(task *domain.Task) error
	TaskDeleted(id uint, at time.Time) error
}

// ServiceConfig controls defaulting on create and auditing on update.
type ServiceConfig struct {
	Defaults domain.Defaults
	// ForceModifiedBy stamps Defaults.ModifiedBy on every update, ignoring
	// the caller-supplied value.
	ForceModifiedBy bool
}

// DefaultServiceConfig returns the canonical defaults with ForceModifiedBy enabled.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Defaults:        domain.DefaultValues(),
		ForceModifiedBy: true,
	}
}

// Patch carries the caller's update. Title, Description and DueDate always
// replace the stored values; Status and Priority only when set and non-empty.
type Patch struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      *string
	Priority    *string
	ModifiedBy  string
}

// Service holds the task business rules.
type Service struct {
	store     Store
	config    ServiceConfig
	logger    types.Logger
	publisher Publisher
}

// NewService creates a new Service.
func NewService(store Store, config ServiceConfig, logger types.Logger) *Service {
	return &Service{
		store:  store,
		config: config,
		logger: logger,
	}
}

// SetPublisher attaches an event publisher. Without one, no events are sent.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// List returns one page of tasks. An empty filter, or "All" in any casing,
// lists every task; anything else must match a status exactly.
func (s *Service) List(ctx context.Context, status string, page, size int) (domain.Page, error) {
	req := domain.PageRequest{Page: page, Size: size}

	if status == "" || strings.EqualFold(status, domain.StatusAll) {
		return s.store.FindAll(ctx, req)
	}
	return s.store.FindByStatus(ctx, status, req)
}

// Get returns the task with the given ID or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return task, nil
}

// Create fills in defaults and persists a new task. Any ID or timestamps
// supplied by the caller are discarded.
func (s *Service) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	d := s.config.Defaults

	task.ID = 0
	task.CreatedOn = time.Time{}
	task.ModifiedOn = time.Time{}
	if task.CreatedBy == "" {
		task.CreatedBy = d.CreatedBy
	}
	if task.ModifiedBy == "" {
		task.ModifiedBy = d.ModifiedBy
	}
	if task.Status == "" {
		task.Status = d.Status
	}
	if task.Priority == "" {
		task.Priority = d.Priority
	}
	s.warnUnknown(task)

	if err := s.store.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publish("TaskCreated", task.ID, func(p Publisher) error { return p.TaskCreated(task) })
	return task, nil
}

// Update merges patch into the stored task and persists it.
func (s *Service) Update(ctx context.Context, id uint, patch Patch) (*domain.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Title = patch.Title
	task.Description = patch.Description
	task.DueDate = patch.DueDate
	if patch.Status != nil && *patch.Status != "" {
		task.Status = *patch.Status
	}
	if patch.Priority != nil && *patch.Priority != "" {
		task.Priority = *patch.Priority
	}

	switch {
	case s.config.ForceModifiedBy || patch.ModifiedBy == "":
		task.ModifiedBy = s.config.Defaults.ModifiedBy
	default:
		task.ModifiedBy = patch.ModifiedBy
	}
	s.warnUnknown(task)

	if err := s.store.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publish("TaskUpdated", task.ID, func(p Publisher) error { return p.TaskUpdated(task) })
	return task, nil
}

// Delete removes a task. Deleting an unknown ID succeeds.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish("TaskDeleted", id, func(p Publisher) error { return p.TaskDeleted(id, time.Now()) })
	return nil
}

func (s *Service) warnUnknown(task *domain.Task) {
	if !domain.IsKnownStatus(task.Status) {
		s.logger.Warn("Task has unrecognized status", "status", task.Status, "title", task.Title)
	}
	if !domain.IsKnownPriority(task.Priority) {
		s.logger.Warn("Task has unrecognized priority", "priority", task.Priority, "title", task.Title)
	}
}

// publish is best-effort; failures are logged and never returned.
func (s *Service) publish(event string, id uint, send func(Publisher) error) {
	if s.publisher == nil {
		return
	}
	if err := send(s.publisher); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "taskID", id, "error", err)
	}
}
