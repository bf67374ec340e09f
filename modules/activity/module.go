// Package activity streams task lifecycle events to WebSocket subscribers.
package activity

import (
	"context"
	"fmt"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/example/task-management-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Activity types.
const (
	TypeCreated = "task.created"
	TypeUpdated = "task.updated"
	TypeDeleted = "task.deleted"
)

// Activity is one message on the feed.
type Activity struct {
	Type     string           `json:"type"`
	TaskID   uint             `json:"taskId"`
	Title    string           `json:"title,omitempty"`
	Status   string           `json:"status,omitempty"`
	Priority string           `json:"priority,omitempty"`
	By       string           `json:"by,omitempty"`
	At       domain.Timestamp `json:"at"`
}

// Module consumes task events and fans them out over WebSocket.
type Module struct {
	hub    *Hub
	cancel context.CancelFunc
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new activity module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
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
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(Activity{
		Type:     TypeCreated,
		TaskID:   event.TaskID,
		Title:    event.Title,
		Status:   event.Status,
		Priority: event.Priority,
		By:       event.CreatedBy,
		At:       domain.Timestamp{Time: event.CreatedOn},
	})
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(Activity{
		Type:     TypeUpdated,
		TaskID:   event.TaskID,
		Title:    event.Title,
		Status:   event.Status,
		Priority: event.Priority,
		By:       event.ModifiedBy,
		At:       domain.Timestamp{Time: event.ModifiedOn},
	})
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(Activity{
		Type:   TypeDeleted,
		TaskID: event.TaskID,
		At:     domain.Timestamp{Time: event.DeletedAt},
	})
	return nil
}

// Start runs the hub.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.hub.Run(ctx)

	m.logger.Info("Activity feed started")
	return nil
}

// Stop closes every subscriber and waits for the hub to exit.
func (m *Module) Stop(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.hub.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Activity feed stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("activity hub did not stop: %w", ctx.Err())
	}
}

// Health reports the number of subscribers.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.cancel != nil,
		Message: "operational",
		Details: map[string]any{
			"clients": m.hub.ClientCount(),
		},
	}
}

// Handler returns the fiber handler for the feed endpoint. Requests that are
// not WebSocket upgrades get 426 Upgrade Required.
func (m *Module) Handler() fiber.Handler {
	stream := websocket.New(m.serve)
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return stream(c)
	}
}

// serve keeps the connection registered until the client goes away.
// Inbound messages are ignored.
func (m *Module) serve(conn *websocket.Conn) {
	client := &Client{ID: uuid.New().String(), Conn: conn}
	m.hub.Register(client)
	defer m.hub.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("Feed connection error", "clientID", client.ID, "error", err)
			}
			return
		}
	}
}
