package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(db),
	}
}

// List returns a project's memberships with embedded users
// GET /api/projects/:project/users
func (h *MembershipHandler) List(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	var req services.MembershipListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.membershipService.List(projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Attach adds a user to a project
// POST /api/projects/:project/users
func (h *MembershipHandler) Attach(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	var req services.AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.Attach(projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, membership)
}

// Detach removes a user from a project
// DELETE /api/projects/:project/users/:user
func (h *MembershipHandler) Detach(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	if err := h.membershipService.Detach(projectID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user detached from project"})
}

// UpdateRole changes a member's project role
// PUT /api/projects/:project/users/:user
func (h *MembershipHandler) UpdateRole(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.UpdateRole(projectID, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, membership)
}
