package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/middleware"
	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	memberships := services.NewMembershipService(db)
	return &TaskHandler{
		taskService: services.NewTaskService(db, memberships),
	}
}

// List returns tasks matching the query filters
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	var req services.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.taskService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// MyProjectTasks returns tasks in the actor's projects
// GET /api/my-project-tasks
func (h *TaskHandler) MyProjectTasks(c *gin.Context) {
	var req services.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.taskService.MyProjectTasks(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a task
// GET /api/tasks/:task
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Create authors a task, manager role required
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// Update edits a task's fields, manager role required
// PUT /api/tasks/:task
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateFields(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// UpdateStatus transitions a task's status, assignee only
// PATCH /api/tasks/:task/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateStatus(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Delete tombstones a task
// DELETE /api/tasks/:task
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	if err := h.taskService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted"})
}

// Restore clears a task's tombstone
// POST /api/tasks/:task/restore
func (h *TaskHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.Restore(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}
