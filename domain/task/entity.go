package task

import "time"

// Task statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// SystemUser is the auditor recorded when no caller identity is available.
const SystemUser = "SYSTEM"

// StatusAll is the list filter value that disables status filtering.
const StatusAll = "All"

// Task is a persisted work item.
type Task struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"not null;index" json:"status"`
	Priority    string     `gorm:"size:32" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `gorm:"column:created_by" json:"created_by"`
	CreatedOn   time.Time  `gorm:"column:created_on" json:"created_on"`
	ModifiedBy  string     `gorm:"column:modified_by" json:"modified_by"`
	ModifiedOn  time.Time  `gorm:"column:modified_on;index" json:"modified_on"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// Defaults is the single table of values applied to fields a caller leaves unset.
type Defaults struct {
	CreatedBy  string
	ModifiedBy string
	Status     string
	Priority   string
}

// DefaultValues returns the canonical defaults.
func DefaultValues() Defaults {
	return Defaults{
		CreatedBy:  SystemUser,
		ModifiedBy: SystemUser,
		Status:     StatusOpen,
		Priority:   PriorityMedium,
	}
}

// IsKnownStatus reports whether s is one of the enumerated statuses.
func IsKnownStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// IsKnownPriority reports whether p is one of the enumerated priorities.
func IsKnownPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
