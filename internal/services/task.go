package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

// Contribution-hours credit per task mutation. Authoring work (create, field
// edits) credits less than execution work (status changes).
const (
	AccrualTaskCreate       = 2
	AccrualTaskUpdateFields = 2
	AccrualTaskUpdateStatus = 12
)

// StatusPolicy decides whether an actor may change a task's status. Two
// strategies exist in the product's history: assignment-based and
// project-role-based. AssignmentPolicy is the default.
type StatusPolicy interface {
	Allows(task *models.Task, actorID uint) (bool, error)
}

// AssignmentPolicy permits only the user the task is assigned to.
type AssignmentPolicy struct{}

func (AssignmentPolicy) Allows(task *models.Task, actorID uint) (bool, error) {
	return task.AssignedTo != nil && *task.AssignedTo == actorID, nil
}

// ProjectRolePolicy permits members holding one of the listed project roles.
type ProjectRolePolicy struct {
	Memberships *MembershipService
	Roles       []string
}

func (p *ProjectRolePolicy) Allows(task *models.Task, actorID uint) (bool, error) {
	role, err := p.Memberships.RoleOf(actorID, task.ProjectID)
	if err != nil {
		return false, err
	}
	for _, r := range p.Roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

type TaskService struct {
	db           *gorm.DB
	memberships  *MembershipService
	statusPolicy StatusPolicy
}

func NewTaskService(db *gorm.DB, memberships *MembershipService) *TaskService {
	return &TaskService{
		db:           db,
		memberships:  memberships,
		statusPolicy: AssignmentPolicy{},
	}
}

// NewTaskServiceWithPolicy builds a TaskService with a custom status policy.
func NewTaskServiceWithPolicy(db *gorm.DB, memberships *MembershipService, policy StatusPolicy) *TaskService {
	return &TaskService{
		db:           db,
		memberships:  memberships,
		statusPolicy: policy,
	}
}

type TaskListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	ProjectID  uint   `form:"project_id"`
	Status     string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority   string `form:"priority" binding:"omitempty,oneof=high medium low"`
	AssignedTo uint   `form:"assigned_to"`
	Search     string `form:"search"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"` // by due date
	OldestTask bool   `form:"oldest_task"`
	NewestTask bool   `form:"newest_task"`
}

type TaskListResponse struct {
	Items []models.Task     `json:"items"`
	Meta  response.PageMeta `json:"meta"`
}

type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description" binding:"required"`
	Priority    string    `json:"priority" binding:"required,oneof=high medium low"`
	Status      string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	AssignedTo  *uint     `json:"assigned_to"`
	ProjectID   uint      `json:"project_id" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=high medium low"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *uint      `json:"assigned_to"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress completed"`
}

// List returns tasks matching the filters. The oldest_task/newest_task flags
// short-circuit to a single-item page.
func (s *TaskService) List(req *TaskListRequest) (*TaskListResponse, error) {
	if req.OldestTask || req.NewestTask {
		order := "created_at ASC"
		if req.NewestTask {
			order = "created_at DESC"
		}
		var task models.Task
		if err := s.db.Preload("Assignee").Preload("Project").Order(order).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("no tasks found")
			}
			return nil, err
		}
		return &TaskListResponse{
			Items: []models.Task{task},
			Meta:  response.NewPageMeta(1, 1, 1),
		}, nil
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 5
	}

	var tasks []models.Task
	var total int64

	query := s.db.Model(&models.Task{})

	if req.ProjectID != 0 {
		query = query.Where("project_id = ?", req.ProjectID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", req.AssignedTo)
	}
	if req.Search != "" {
		query = query.Where("title LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	order := "created_at DESC"
	if req.SortOrder != "" {
		order = "due_date " + req.SortOrder
	}

	offset := (req.Page - 1) * req.PerPage
	if err := query.Preload("Assignee").Preload("Project").
		Offset(offset).Limit(req.PerPage).
		Order(order).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return &TaskListResponse{
		Items: tasks,
		Meta:  response.NewPageMeta(req.Page, req.PerPage, total),
	}, nil
}

// GetByID returns an active task.
func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").Preload("Project").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// MyProjectTasks returns tasks in every project the actor belongs to.
func (s *TaskService) MyProjectTasks(actorID uint, req *TaskListRequest) (*TaskListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 5
	}

	var tasks []models.Task
	var total int64

	query := s.db.Model(&models.Task{}).
		Joins("JOIN memberships ON memberships.project_id = tasks.project_id").
		Where("memberships.user_id = ?", actorID)

	if req.Status != "" {
		query = query.Where("tasks.status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("tasks.priority = ?", req.Priority)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PerPage
	if err := query.Preload("Assignee").Preload("Project").
		Offset(offset).Limit(req.PerPage).
		Order("tasks.created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return &TaskListResponse{
		Items: tasks,
		Meta:  response.NewPageMeta(req.Page, req.PerPage, total),
	}, nil
}

// Create authors a task. Only a project manager may create tasks; the
// authoring credit is accrued in the same transaction as the insert.
func (s *TaskService) Create(actorID uint, req *CreateTaskRequest) (*models.Task, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	role, err := s.memberships.RoleOf(actorID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleManager {
		return nil, response.NewForbidden("only a project manager can create tasks")
	}

	// Due dates on the current day are allowed.
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if req.DueDate.Before(startOfToday) {
		return nil, response.NewBadRequest("due date must not be in the past")
	}

	if req.AssignedTo != nil {
		var assignee models.User
		if err := s.db.First(&assignee, *req.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("assigned user not found")
			}
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		ProjectID:   req.ProjectID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return s.memberships.Accrue(tx, req.ProjectID, actorID, AccrualTaskCreate)
	}); err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateFields edits a task's ordinary fields. Manager-only. Touching the
// status through this path still stamps status_changed_at.
func (s *TaskService) UpdateFields(taskID, actorID uint, req *UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	role, err := s.memberships.RoleOf(actorID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleManager {
		return nil, response.NewForbidden("only a project manager can edit tasks")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.AssignedTo != nil {
		var assignee models.User
		if err := s.db.First(&assignee, *req.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("assigned user not found")
			}
			return nil, err
		}
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		updates["status_changed_at"] = time.Now()
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&task).Updates(updates).Error; err != nil {
				return err
			}
		}
		return s.memberships.Accrue(tx, task.ProjectID, actorID, AccrualTaskUpdateFields)
	}); err != nil {
		return nil, err
	}

	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus transitions a task's status. The status policy gates the
// actor; the transition and the execution credit commit together.
func (s *TaskService) UpdateStatus(taskID, actorID uint, req *UpdateStatusRequest) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	allowed, err := s.statusPolicy.Allows(&task, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, response.NewForbidden("only the assigned user can change this task's status")
	}

	now := time.Now()
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&task).Updates(map[string]interface{}{
			"status":            req.Status,
			"status_changed_at": now,
		}).Error; err != nil {
			return err
		}
		return s.memberships.Accrue(tx, task.ProjectID, actorID, AccrualTaskUpdateStatus)
	}); err != nil {
		return nil, err
	}

	task.Status = req.Status
	task.StatusChangedAt = &now
	return &task, nil
}

// Delete tombstones a task.
func (s *TaskService) Delete(taskID uint) error {
	result := s.db.Delete(&models.Task{}, taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("task not found")
	}
	return nil
}

// Restore clears a task's tombstone. Restoring a live task is a successful
// no-op; restoring an id that never existed is not found.
func (s *TaskService) Restore(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Unscoped().First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	if task.DeletedAt.Valid {
		if err := s.db.Unscoped().Model(&task).Update("deleted_at", nil).Error; err != nil {
			return nil, err
		}
		task.DeletedAt = gorm.DeletedAt{}
	}

	return &task, nil
}
