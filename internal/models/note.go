package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a free-text annotation on a task. The author is always the
// authenticated actor; client-supplied author ids are ignored upstream.
type Note struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Note      string         `gorm:"type:text;not null" json:"note"` // max 5000 chars, validated at the boundary
	TaskID    uint           `gorm:"index;not null" json:"task_id"`
	Task      *Task          `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Note) TableName() string { return "notes" }
