package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses. This is the canonical vocabulary; earlier revisions of the
// tracker used "To Do / In progress / Done", which is not accepted on the wire.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task represents a unit of work inside a project, optionally assigned to a
// user. StatusChangedAt is stamped on every status transition and nowhere else.
type Task struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Priority        string         `gorm:"size:20;not null" json:"priority"`               // high, medium, low
	Status          string         `gorm:"size:20;not null;default:pending" json:"status"` // pending, in_progress, completed
	DueDate         time.Time      `gorm:"not null" json:"due_date"`
	AssignedTo      *uint          `gorm:"index" json:"assigned_to"`
	Assignee        *User          `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	ProjectID       uint           `gorm:"index;not null" json:"project_id"`
	Project         *Project       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	StatusChangedAt *time.Time     `json:"status_changed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// IsTaskStatus reports whether s is a recognized task status.
func IsTaskStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// IsTaskPriority reports whether p is a recognized task priority.
func IsTaskPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
