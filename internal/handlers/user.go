package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db),
	}
}

// List returns paginated users
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a user
// GET /api/users/:user
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Create creates a new user
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Update edits a user
// PUT /api/users/:user
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Delete tombstones a user
// DELETE /api/users/:user
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user deleted"})
}

// Restore clears a user's tombstone
// POST /api/users/:user/restore
func (h *UserHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.Restore(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}
