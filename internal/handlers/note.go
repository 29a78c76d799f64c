package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/middleware"
	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type NoteHandler struct {
	noteService *services.NoteService
}

func NewNoteHandler(db *gorm.DB) *NoteHandler {
	memberships := services.NewMembershipService(db)
	return &NoteHandler{
		noteService: services.NewNoteService(db, memberships),
	}
}

// List returns notes filtered by task or author
// GET /api/notes
func (h *NoteHandler) List(c *gin.Context) {
	var req services.NoteListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.noteService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Create adds a note to a task, tester role required
// POST /api/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req services.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.noteService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, note)
}

// Update edits a note's text, tester role required
// PUT /api/notes/:note
func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "note")
	if !ok {
		return
	}

	var req services.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.noteService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, note)
}

// Delete tombstones a note
// DELETE /api/notes/:note
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "note")
	if !ok {
		return
	}

	if err := h.noteService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "note deleted"})
}

// Restore clears a note's tombstone
// POST /api/notes/:note/restore
func (h *NoteHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "note")
	if !ok {
		return
	}

	note, err := h.noteService.Restore(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, note)
}

// ListForTask returns the task's title, assignee and that user's notes
// GET /api/tasks/:task/notes
func (h *NoteHandler) ListForTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	resp, err := h.noteService.ListForTask(taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
