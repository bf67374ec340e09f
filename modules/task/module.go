package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-management-demo/database"
	domain "github.com/example/task-management-demo/domain/task"
	"github.com/example/task-management-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Config configures the task module.
type Config struct {
	Database database.Config
	Service  ServiceConfig
}

// TaskModule owns the task store and exposes it as request-reply services.
type TaskModule struct {
	config   Config
	logger   types.Logger
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
	_ mono.EventBusAwareModule   = (*TaskModule)(nil)
)

// NewModule creates a new TaskModule.
func NewModule(config Config, logger types.Logger) *TaskModule {
	return &TaskModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus is called by the framework before Start.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// The framework prefixes the names, so "list" becomes "services.task.list".
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	m.logger.Info("Registered task services",
		"services", []string{"list", "get", "create", "update", "delete"})
	return nil
}

// Start opens the database, runs migrations and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := database.Open(m.config.Database)
	if err != nil {
		return err
	}
	m.db = db

	repo := domain.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.service = NewService(repo, m.config.Service, m.logger)
	if m.eventBus != nil {
		m.service.SetPublisher(newBusPublisher(m.eventBus))
	} else {
		m.logger.Warn("Event bus not set, task events will not be published")
	}

	m.logger.Info("Task module started", "driver", m.config.Database.DriverName())
	return nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	if err := database.Close(m.db); err != nil {
		return err
	}

	m.logger.Info("Task module stopped")
	return nil
}

// Health pings the database.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.config.Database.DriverName(),
		},
	}
}

// Service returns the task service. It is nil until Start succeeds.
func (m *TaskModule) Service() *Service {
	return m.service
}
