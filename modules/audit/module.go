package audit

import (
	"context"
	"fmt"

	"github.com/example/task-management-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module writes one audit log line per task lifecycle event.
type Module struct {
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventConsumerModule = (*Module)(nil)
)

// NewModule creates a new audit module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "audit"
}

// RegisterEventConsumers subscribes to task events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated.v1", "TaskUpdated.v1", "TaskDeleted.v1"})
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Info("audit",
		"action", "created",
		"taskID", event.TaskID,
		"title", event.Title,
		"status", event.Status,
		"priority", event.Priority,
		"by", event.CreatedBy,
		"at", event.CreatedOn)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Info("audit",
		"action", "updated",
		"taskID", event.TaskID,
		"title", event.Title,
		"status", event.Status,
		"priority", event.Priority,
		"by", event.ModifiedBy,
		"at", event.ModifiedOn)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Info("audit",
		"action", "deleted",
		"taskID", event.TaskID,
		"at", event.DeletedAt)
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Audit module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Audit module stopped")
	return nil
}
