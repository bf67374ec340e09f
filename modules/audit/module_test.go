package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/task-management-demo/events"
	"github.com/go-monolith/mono/pkg/types"
)

type logEntry struct {
	msg  string
	args []any
}

// recordingLogger implements types.Logger and keeps Info calls.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Debug(_ string, _ ...any) {}
func (l *recordingLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{msg: msg, args: args})
}
func (l *recordingLogger) Warn(_ string, _ ...any)          {}
func (l *recordingLogger) Error(_ string, _ ...any)         {}
func (l *recordingLogger) With(_ ...any) types.Logger       { return l }
func (l *recordingLogger) WithModule(_ string) types.Logger { return l }
func (l *recordingLogger) WithError(_ error) types.Logger   { return l }

func (l *recordingLogger) last() logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[len(l.entries)-1]
}

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}

func TestModule_HandlesTaskEvents(t *testing.T) {
	log := &recordingLogger{}
	m := NewModule(log)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name   string
		handle func() error
		action string
		by     any
	}{
		{
			name: "created",
			handle: func() error {
				return m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: 7, Title: "t", CreatedBy: "SYSTEM", CreatedOn: now}, nil)
			},
			action: "created",
			by:     "SYSTEM",
		},
		{
			name: "updated",
			handle: func() error {
				return m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: 7, Title: "t2", ModifiedBy: "alice", ModifiedOn: now}, nil)
			},
			action: "updated",
			by:     "alice",
		},
		{
			name: "deleted",
			handle: func() error {
				return m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: 7, DeletedAt: now}, nil)
			},
			action: "deleted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.handle(); err != nil {
				t.Fatalf("handler error = %v", err)
			}

			entry := log.last()
			if entry.msg != "audit" {
				t.Errorf("expected audit message, got %q", entry.msg)
			}
			if got := argValue(entry.args, "action"); got != tt.action {
				t.Errorf("action = %v, want %v", got, tt.action)
			}
			if got := argValue(entry.args, "taskID"); got != uint(7) {
				t.Errorf("taskID = %v, want 7", got)
			}
			if got := argValue(entry.args, "by"); got != tt.by {
				t.Errorf("by = %v, want %v", got, tt.by)
			}
		})
	}
}

func TestModule_Lifecycle(t *testing.T) {
	m := NewModule(&recordingLogger{})

	if m.Name() != "audit" {
		t.Errorf("expected name audit, got %q", m.Name())
	}
	if err := m.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
