package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns paginated projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.projectService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a project with its tasks
// GET /api/projects/:project
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// Update edits a project
// PUT /api/projects/:project
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Delete tombstones a project
// DELETE /api/projects/:project
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted"})
}

// Restore clears a project's tombstone
// POST /api/projects/:project/restore
func (h *ProjectHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	project, err := h.projectService.Restore(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}
