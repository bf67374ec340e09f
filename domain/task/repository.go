package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Repository provides database operations for tasks.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
	}
}

// WithClock replaces the clock used to stamp audit timestamps.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Migrate runs database migrations for the task table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// Save inserts the task when it has no ID and overwrites the stored row otherwise.
// A new row gets CreatedOn and ModifiedOn stamped with the same instant; an
// existing row only gets ModifiedOn re-stamped, and its CreatedOn and CreatedBy
// columns are never written.
func (r *Repository) Save(ctx context.Context, task *Task) error {
	if err := checkConstraints(task); err != nil {
		return err
	}

	now := r.timestamp()

	if task.ID == 0 {
		task.CreatedOn = now
		task.ModifiedOn = now
		if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", translateError(err))
		}
		return nil
	}

	task.ModifiedOn = now
	result := r.db.WithContext(ctx).
		Model(task).
		Select("*").
		Omit("id", "created_on", "created_by").
		Updates(task)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", translateError(err))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	var stored Task
	if err := r.db.WithContext(ctx).First(&stored, task.ID).Error; err != nil {
		return fmt.Errorf("failed to reload task: %w", err)
	}
	*task = stored
	return nil
}

// FindByID retrieves a task by its ID. It returns nil without an error when
// no such task exists.
func (r *Repository) FindByID(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// DeleteByID removes a task. Deleting a missing ID is not an error.
func (r *Repository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Task{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// FindAll returns one page of tasks, most recently modified first.
func (r *Repository) FindAll(ctx context.Context, req PageRequest) (Page, error) {
	return r.findPage(ctx, req, func(db *gorm.DB) *gorm.DB { return db })
}

// FindByStatus returns one page of tasks whose status matches exactly,
// most recently modified first.
func (r *Repository) FindByStatus(ctx context.Context, status string, req PageRequest) (Page, error) {
	return r.findPage(ctx, req, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	})
}

func (r *Repository) findPage(ctx context.Context, req PageRequest, filter func(*gorm.DB) *gorm.DB) (Page, error) {
	req = req.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Scopes(filter).Count(&total).Error; err != nil {
		return Page{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	var tasks []Task
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order("modified_on DESC").
		Order("id DESC").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&tasks).Error
	if err != nil {
		return Page{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	return NewPage(tasks, req, total), nil
}

// timestamp truncates to microseconds so values survive a round trip through
// either supported database unchanged.
func (r *Repository) timestamp() time.Time {
	return r.now().Truncate(time.Microsecond)
}

// checkConstraints enforces the NOT NULL columns before the row reaches the
// database, so both drivers report the same error.
func checkConstraints(task *Task) error {
	if task.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if task.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidTask)
	}
	return nil
}

// translateError maps driver constraint violations onto ErrInvalidTask.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502", "23514": // not_null_violation, check_violation
			return fmt.Errorf("%w: %s", ErrInvalidTask, pgErr.Message)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %s", ErrInvalidTask, liteErr.Error())
		}
	}
	return err
}
