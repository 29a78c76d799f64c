package models

import (
	"time"

	"gorm.io/gorm"
)

// System-wide roles. Project-scoped roles live on Membership.
const (
	SystemRoleAdmin = "admin"
	SystemRoleUser  = "user"
)

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"`                      // Hashed password, empty for LDAP users
	Role      string         `gorm:"size:50;default:user" json:"role"`       // admin, user
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsSystemRole reports whether r is a recognized system-wide role.
func IsSystemRole(r string) bool {
	return r == SystemRoleAdmin || r == SystemRoleUser
}
