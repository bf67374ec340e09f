package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/example/task-management-demo/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockLogger implements types.Logger for testing
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func (m *mockLogger) warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warns...)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	created []uint
	updated []uint
	deleted []uint
	err     error
}

func (p *recordingPublisher) TaskCreated(task *domain.Task) error {
	p.created = append(p.created, task.ID)
	return p.err
}

func (p *recordingPublisher) TaskUpdated(task *domain.Task) error {
	p.updated = append(p.updated, task.ID)
	return p.err
}

func (p *recordingPublisher) TaskDeleted(id uint, _ time.Time) error {
	p.deleted = append(p.deleted, id)
	return p.err
}

// failingStore returns err from every operation.
type failingStore struct {
	err   error
	saves int
}

func (s *failingStore) Save(context.Context, *domain.Task) error {
	s.saves++
	return s.err
}
func (s *failingStore) FindByID(context.Context, uint) (*domain.Task, error) { return nil, s.err }
func (s *failingStore) DeleteByID(context.Context, uint) error               { return s.err }
func (s *failingStore) FindAll(context.Context, domain.PageRequest) (domain.Page, error) {
	return domain.Page{}, s.err
}
func (s *failingStore) FindByStatus(context.Context, string, domain.PageRequest) (domain.Page, error) {
	return domain.Page{}, s.err
}

func newTestRepository(t *testing.T) *domain.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := domain.NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func newTestService(t *testing.T) (*Service, *recordingPublisher, *mockLogger) {
	t.Helper()

	log := &mockLogger{}
	pub := &recordingPublisher{}
	svc := NewService(newTestRepository(t), DefaultServiceConfig(), log)
	svc.SetPublisher(pub)
	return svc, pub, log
}

func strPtr(s string) *string { return &s }

func TestService_Create_AppliesDefaults(t *testing.T) {
	svc, pub, _ := newTestService(t)
	before := time.Now().Truncate(time.Microsecond)

	created, err := svc.Create(context.Background(), &domain.Task{Title: "Write design doc"})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, domain.SystemUser, created.CreatedBy)
	assert.Equal(t, domain.SystemUser, created.ModifiedBy)
	assert.True(t, created.CreatedOn.Equal(created.ModifiedOn))
	assert.False(t, created.CreatedOn.Before(before))
	assert.Equal(t, []uint{created.ID}, pub.created)
}

func TestService_Create_IgnoresCallerIdentityAndTimestamps(t *testing.T) {
	svc, _, _ := newTestService(t)
	stale := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), &domain.Task{
		ID:         77,
		Title:      "Backdated",
		CreatedOn:  stale,
		ModifiedOn: stale,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uint(77), created.ID)
	assert.True(t, created.CreatedOn.After(stale))
}

func TestService_Create_ConfiguredDefaults(t *testing.T) {
	config := DefaultServiceConfig()
	config.Defaults.Priority = domain.PriorityHigh
	svc := NewService(newTestRepository(t), config, &mockLogger{})

	created, err := svc.Create(context.Background(), &domain.Task{Title: "Urgent"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
}

func TestService_Create_Validation(t *testing.T) {
	svc, pub, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &domain.Task{Description: "no title"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTask))
	assert.Empty(t, pub.created)
}

func TestService_Create_UnknownStatusIsWarnedNotRejected(t *testing.T) {
	svc, _, log := newTestService(t)

	created, err := svc.Create(context.Background(), &domain.Task{Title: "Odd", Status: "Blocked"})
	require.NoError(t, err)
	assert.Equal(t, "Blocked", created.Status)
	assert.Contains(t, log.warnings(), "Task has unrecognized status")
}

func TestService_Scenario(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.Task{Title: "Write design doc"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, created.Status)
	require.Equal(t, domain.PriorityMedium, created.Priority)
	require.True(t, created.CreatedOn.Equal(created.ModifiedOn))

	id := created.ID
	createdOn := created.CreatedOn
	priorModified := created.ModifiedOn

	updated, err := svc.Update(ctx, id, Patch{Title: "Write design doc v2", Status: strPtr(domain.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "Write design doc v2", updated.Title)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, domain.PriorityMedium, updated.Priority)
	assert.Equal(t, domain.SystemUser, updated.CreatedBy)
	assert.True(t, updated.CreatedOn.Equal(createdOn))
	assert.False(t, updated.ModifiedOn.Before(priorModified))

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.Equal(t, []uint{id}, pub.created)
	assert.Equal(t, []uint{id}, pub.updated)
	assert.Equal(t, []uint{id}, pub.deleted)
}

func TestService_Update_MergeRules(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, &domain.Task{
		Title:       "Plan",
		Description: "initial",
		Status:      domain.StatusInProgress,
		Priority:    domain.PriorityHigh,
		DueDate:     &due,
	})
	require.NoError(t, err)

	t.Run("absent status and priority keep stored values", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, Patch{Title: "Plan v2"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.Equal(t, domain.PriorityHigh, updated.Priority)
		assert.Equal(t, "", updated.Description)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("empty strings count as absent", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, Patch{
			Title:    "Plan v3",
			Status:   strPtr(""),
			Priority: strPtr(""),
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.Equal(t, domain.PriorityHigh, updated.Priority)
	})

	t.Run("present values overwrite", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, Patch{
			Title:       "Plan v4",
			Description: "rewritten",
			DueDate:     &due,
			Status:      strPtr(domain.StatusDone),
			Priority:    strPtr(domain.PriorityLow),
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusDone, updated.Status)
		assert.Equal(t, domain.PriorityLow, updated.Priority)
		assert.Equal(t, "rewritten", updated.Description)
		require.NotNil(t, updated.DueDate)
		assert.True(t, updated.DueDate.Equal(due))
	})
}

func TestService_Update_ModifiedBy(t *testing.T) {
	ctx := context.Background()

	t.Run("forced", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		created, err := svc.Create(ctx, &domain.Task{Title: "Audit"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, Patch{Title: "Audit", ModifiedBy: "alice"})
		require.NoError(t, err)
		assert.Equal(t, domain.SystemUser, updated.ModifiedBy)
	})

	t.Run("caller supplied with fallback", func(t *testing.T) {
		config := DefaultServiceConfig()
		config.ForceModifiedBy = false
		svc := NewService(newTestRepository(t), config, &mockLogger{})

		created, err := svc.Create(ctx, &domain.Task{Title: "Audit"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, Patch{Title: "Audit", ModifiedBy: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.ModifiedBy)

		updated, err = svc.Update(ctx, created.ID, Patch{Title: "Audit"})
		require.NoError(t, err)
		assert.Equal(t, domain.SystemUser, updated.ModifiedBy)
	})
}

func TestService_Update_NotFound(t *testing.T) {
	store := &failingStore{}
	svc := NewService(store, DefaultServiceConfig(), &mockLogger{})

	_, err := svc.Update(context.Background(), 404, Patch{Title: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, store.saves, "update of a missing task must not write")
}

func TestService_Delete_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.Delete(context.Background(), 12345))
	require.NoError(t, svc.Delete(context.Background(), 12345))
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		status := domain.StatusOpen
		if i%5 == 0 {
			status = domain.StatusDone
		}
		_, err := svc.Create(ctx, &domain.Task{Title: fmt.Sprintf("Task %d", i), Status: status})
		require.NoError(t, err)
	}

	t.Run("first page", func(t *testing.T) {
		page, err := svc.List(ctx, "", 0, 10)
		require.NoError(t, err)

		assert.Len(t, page.Content, 10)
		assert.Equal(t, int64(25), page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		for i := 1; i < len(page.Content); i++ {
			assert.False(t, page.Content[i].ModifiedOn.After(page.Content[i-1].ModifiedOn))
		}
	})

	t.Run("All in any casing lists everything", func(t *testing.T) {
		unfiltered, err := svc.List(ctx, "", 0, 100)
		require.NoError(t, err)

		for _, filter := range []string{"All", "all", "ALL", "aLl"} {
			page, err := svc.List(ctx, filter, 0, 100)
			require.NoError(t, err)
			assert.Equal(t, unfiltered.TotalElements, page.TotalElements, filter)
			assert.Equal(t, unfiltered.Content, page.Content, filter)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		page, err := svc.List(ctx, domain.StatusDone, 0, 10)
		require.NoError(t, err)

		assert.Equal(t, int64(5), page.TotalElements)
		for _, task := range page.Content {
			assert.Equal(t, domain.StatusDone, task.Status)
		}
	})
}

func TestService_StoreFaultsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := NewService(&failingStore{err: boom}, DefaultServiceConfig(), &mockLogger{})
	ctx := context.Background()

	_, err := svc.List(ctx, "", 0, 10)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Create(ctx, &domain.Task{Title: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = svc.Update(ctx, 1, Patch{Title: "x"})
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, svc.Delete(ctx, 1), boom)
}

func TestService_PublishFailureIsNotReturned(t *testing.T) {
	log := &mockLogger{}
	svc := NewService(newTestRepository(t), DefaultServiceConfig(), log)
	svc.SetPublisher(&recordingPublisher{err: errors.New("bus down")})

	_, err := svc.Create(context.Background(), &domain.Task{Title: "still saved"})
	require.NoError(t, err)
	assert.Contains(t, log.warnings(), "Failed to publish event")
}
