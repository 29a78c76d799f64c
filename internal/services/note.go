package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

// NoteService guards note authoring behind the tester role of the owning
// task's project.
type NoteService struct {
	db          *gorm.DB
	memberships *MembershipService
}

func NewNoteService(db *gorm.DB, memberships *MembershipService) *NoteService {
	return &NoteService{db: db, memberships: memberships}
}

type CreateNoteRequest struct {
	Note   string `json:"note" binding:"required,max=5000"`
	TaskID uint   `json:"task_id" binding:"required"`
}

type UpdateNoteRequest struct {
	Note string `json:"note" binding:"required,max=5000"`
}

type NoteListRequest struct {
	Page    int  `form:"page" binding:"omitempty,min=1"`
	PerPage int  `form:"per_page" binding:"omitempty,min=1,max=100"`
	TaskID  uint `form:"task_id"`
	UserID  uint `form:"user_id"`
}

type NoteListResponse struct {
	Items []models.Note     `json:"items"`
	Meta  response.PageMeta `json:"meta"`
}

// TaskNotesResponse aggregates a task's title, its assigned user and every
// note that user has written across all tasks.
type TaskNotesResponse struct {
	TaskTitle    string        `json:"task_title"`
	AssignedUser *models.User  `json:"assigned_user"`
	Notes        []models.Note `json:"notes"`
}

// authorize resolves actor role through task and project. It fails closed: a
// missing task, project or membership denies rather than reporting absence,
// so existence is not leaked to outsiders.
func (s *NoteService) authorize(taskID, actorID uint) error {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewForbidden("only a project tester can annotate tasks")
		}
		return err
	}

	var project models.Project
	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewForbidden("only a project tester can annotate tasks")
		}
		return err
	}

	role, err := s.memberships.RoleOf(actorID, task.ProjectID)
	if err != nil {
		return err
	}
	if role != models.RoleTester {
		return response.NewForbidden("only a project tester can annotate tasks")
	}
	return nil
}

// Create adds a note to a task. The author is always the authenticated
// actor; any author id in the payload is ignored.
func (s *NoteService) Create(actorID uint, req *CreateNoteRequest) (*models.Note, error) {
	if err := s.authorize(req.TaskID, actorID); err != nil {
		return nil, err
	}

	note := models.Note{
		Note:   req.Note,
		TaskID: req.TaskID,
		UserID: actorID,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Update changes a note's text. The gate is re-evaluated against the note's
// current task.
func (s *NoteService) Update(noteID, actorID uint, req *UpdateNoteRequest) (*models.Note, error) {
	var note models.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("note not found")
		}
		return nil, err
	}

	if err := s.authorize(note.TaskID, actorID); err != nil {
		return nil, err
	}

	note.Note = req.Note
	if err := s.db.Save(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete tombstones a note.
func (s *NoteService) Delete(noteID uint) error {
	result := s.db.Delete(&models.Note{}, noteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("note not found")
	}
	return nil
}

// Restore clears a note's tombstone, a no-op when the note is live.
func (s *NoteService) Restore(noteID uint) (*models.Note, error) {
	var note models.Note
	if err := s.db.Unscoped().First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("note not found")
		}
		return nil, err
	}

	if note.DeletedAt.Valid {
		if err := s.db.Unscoped().Model(&note).Update("deleted_at", nil).Error; err != nil {
			return nil, err
		}
		note.DeletedAt = gorm.DeletedAt{}
	}

	return &note, nil
}

// List returns notes filtered by task or author.
func (s *NoteService) List(req *NoteListRequest) (*NoteListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 5
	}

	var notes []models.Note
	var total int64

	query := s.db.Model(&models.Note{})
	if req.TaskID != 0 {
		query = query.Where("task_id = ?", req.TaskID)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PerPage
	if err := query.Preload("User").
		Offset(offset).Limit(req.PerPage).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}

	return &NoteListResponse{
		Items: notes,
		Meta:  response.NewPageMeta(req.Page, req.PerPage, total),
	}, nil
}

// ListForTask returns the task's title, its assigned user, and every note
// that user has written across all tasks. The aggregation is by assignee on
// purpose: it reads as the notes history of the person doing this task.
func (s *NoteService) ListForTask(taskID uint) (*TaskNotesResponse, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	resp := &TaskNotesResponse{
		TaskTitle:    task.Title,
		AssignedUser: task.Assignee,
		Notes:        []models.Note{},
	}

	if task.AssignedTo == nil {
		return resp, nil
	}

	if err := s.db.Where("user_id = ?", *task.AssignedTo).
		Order("created_at DESC").
		Find(&resp.Notes).Error; err != nil {
		return nil, err
	}

	return resp, nil
}
