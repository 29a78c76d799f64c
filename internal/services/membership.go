package services

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

// MembershipService owns the project/user pivot: roles, contribution hours
// and last-activity bookkeeping.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

type AttachRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=manager developer tester"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=manager developer tester"`
}

type MembershipListRequest struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

type MembershipListResponse struct {
	Items []models.Membership `json:"items"`
	Meta  response.PageMeta   `json:"meta"`
}

// RoleOf returns the user's role within a project. The empty string means no
// membership exists or the role was never set. Pure read, no side effects.
func (s *MembershipService) RoleOf(userID, projectID uint) (string, error) {
	var m models.Membership
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if m.Role == nil {
		return "", nil
	}
	return *m.Role, nil
}

// Attach adds a user to a project. The role defaults to developer. A second
// attach for the same pair fails with a conflict; the unique index is what
// decides the winner under concurrency.
func (s *MembershipService) Attach(projectID uint, req *AttachRequest) (*models.Membership, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleDeveloper
	}

	membership := models.Membership{
		ProjectID:    projectID,
		UserID:       req.UserID,
		Role:         &role,
		LastActivity: time.Now(),
	}
	if err := s.db.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		return nil, err
	}

	membership.User = &user
	return &membership, nil
}

// Detach removes a membership outright. A second detach for the same pair
// fails with not found; removal is not idempotent.
func (s *MembershipService) Detach(projectID, userID uint) error {
	result := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("membership not found")
	}
	return nil
}

// UpdateRole changes a member's project role.
func (s *MembershipService) UpdateRole(projectID, userID uint, req *UpdateRoleRequest) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("membership not found")
		}
		return nil, err
	}

	membership.Role = &req.Role
	if err := s.db.Save(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Accrue adds contribution-hours credit to a membership and stamps its
// last-activity time, treating an unset counter as zero. If no membership
// exists one is created with the counter left unset, so the accrual event is
// recorded as activity rather than dropped. That path should not happen for
// properly authorized mutations, hence the warning.
//
// Runs on the caller's handle so task mutation and accrual commit or roll
// back together.
func (s *MembershipService) Accrue(tx *gorm.DB, projectID, userID uint, hours int) error {
	var m models.Membership
	err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = models.Membership{
			ProjectID:    projectID,
			UserID:       userID,
			LastActivity: time.Now(),
		}
		err = tx.Create(&m).Error
		if err == nil {
			log.Warn().
				Uint("project_id", projectID).
				Uint("user_id", userID).
				Msg("accrual for a non-member, membership auto-created with unset role")
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// Lost the race to a concurrent first writer; increment its row.
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	total := hours
	if m.ContributionHours != nil {
		total += *m.ContributionHours
	}
	return tx.Model(&m).Updates(map[string]interface{}{
		"contribution_hours": total,
		"last_activity":      time.Now(),
	}).Error
}

// List returns a project's memberships with embedded user identities.
func (s *MembershipService) List(projectID uint, req *MembershipListRequest) (*MembershipListResponse, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 5
	}

	var memberships []models.Membership
	var total int64

	query := s.db.Model(&models.Membership{}).Where("project_id = ?", projectID)
	query.Count(&total)

	offset := (req.Page - 1) * req.PerPage
	if err := query.Preload("User").
		Offset(offset).Limit(req.PerPage).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	return &MembershipListResponse{
		Items: memberships,
		Meta:  response.NewPageMeta(req.Page, req.PerPage, total),
	}, nil
}
