package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	Name    string `form:"name"`
}

type ProjectListResponse struct {
	Items []models.Project  `json:"items"`
	Meta  response.PageMeta `json:"meta"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
}

// List returns paginated active projects.
func (s *ProjectService) List(req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 5
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PerPage
	if err := query.Offset(offset).Limit(req.PerPage).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Items: projects,
		Meta:  response.NewPageMeta(req.Page, req.PerPage, total),
	}, nil
}

// GetByID returns an active project with its tasks.
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Tasks").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Create creates a project. Names must be unique among active projects only;
// a tombstoned project does not block reuse of its name.
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	if err := s.checkNameAvailable(req.Name, 0); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update edits a project's fields.
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != project.Name {
		if err := s.checkNameAvailable(*req.Name, id); err != nil {
			return nil, err
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.db.Save(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete tombstones a project. Its tasks stay attached and reappear with it
// on restore.
func (s *ProjectService) Delete(id uint) error {
	result := s.db.Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("project not found")
	}
	return nil
}

// Restore clears a project's tombstone, a no-op when the project is live.
// The name must still be free among active projects.
func (s *ProjectService) Restore(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Unscoped().First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if project.DeletedAt.Valid {
		if err := s.checkNameAvailable(project.Name, id); err != nil {
			return nil, err
		}
		if err := s.db.Unscoped().Model(&project).Update("deleted_at", nil).Error; err != nil {
			return nil, err
		}
		project.DeletedAt = gorm.DeletedAt{}
	}

	return &project, nil
}

func (s *ProjectService) checkNameAvailable(name string, excludeID uint) error {
	var count int64
	query := s.db.Model(&models.Project{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	query.Count(&count)
	if count > 0 {
		return response.NewConflict("a project with this name already exists")
	}
	return nil
}
