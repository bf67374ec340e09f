package task

import (
	"time"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/example/task-management-demo/events"
	"github.com/go-monolith/mono"
)

// busPublisher publishes task events on the mono event bus.
type busPublisher struct {
	bus mono.EventBus
}

func newBusPublisher(bus mono.EventBus) *busPublisher {
	return &busPublisher{bus: bus}
}

func (p *busPublisher) TaskCreated(task *domain.Task) error {
	return events.TaskCreatedV1.Publish(p.bus, events.TaskCreatedEvent{
		TaskID:    task.ID,
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		CreatedBy: task.CreatedBy,
		CreatedOn: task.CreatedOn,
	}, nil)
}

func (p *busPublisher) TaskUpdated(task *domain.Task) error {
	return events.TaskUpdatedV1.Publish(p.bus, events.TaskUpdatedEvent{
		TaskID:     task.ID,
		Title:      task.Title,
		Status:     task.Status,
		Priority:   task.Priority,
		ModifiedBy: task.ModifiedBy,
		ModifiedOn: task.ModifiedOn,
	}, nil)
}

func (p *busPublisher) TaskDeleted(id uint, at time.Time) error {
	return events.TaskDeletedV1.Publish(p.bus, events.TaskDeletedEvent{
		TaskID:    id,
		DeletedAt: at,
	}, nil)
}
