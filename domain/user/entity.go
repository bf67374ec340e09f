package user

import (
	"time"
)

// User is an account known to the login stub.
type User struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Username     string    `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string    `gorm:"not null;type:text"`
	CreatedBy    string    `gorm:"column:created_by"`
	CreatedOn    time.Time `gorm:"column:created_on"`
	ModifiedBy   string    `gorm:"column:modified_by"`
	ModifiedOn   time.Time `gorm:"column:modified_on"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}
