package models

import (
	"time"
)

// Project-scoped roles carried on the membership pivot.
const (
	RoleManager   = "manager"
	RoleDeveloper = "developer"
	RoleTester    = "tester"
)

// Membership binds a user to a project with a role and accrual bookkeeping.
// At most one row may exist per (project, user) pair; the composite unique
// index is what serializes concurrent first-writers. Memberships are removed
// outright on detach, so there is no DeletedAt column here.
type Membership struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProjectID         uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project           *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID            uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User              *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role              *string   `gorm:"size:50" json:"role"` // manager, developer, tester; nil if never set
	ContributionHours *int      `json:"contribution_hours"`  // nil until the first accrual lands
	LastActivity      time.Time `json:"last_activity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }

// IsProjectRole reports whether r is a recognized project role.
func IsProjectRole(r string) bool {
	return r == RoleManager || r == RoleDeveloper || r == RoleTester
}
