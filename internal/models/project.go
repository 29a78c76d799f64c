package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a project that groups tasks and members.
// Name uniqueness is enforced in the service layer against active rows only,
// so a soft-deleted project does not block reuse of its name.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null;index" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Tasks       []Task         `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
