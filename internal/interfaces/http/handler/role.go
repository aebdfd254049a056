package handler

import (
	"strconv"

	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleHandler handles role and permission endpoints
type RoleHandler struct {
	BaseHandler
	roleService *appidentity.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *appidentity.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// PermissionCatalogue returns every permission a role can carry
func (h *RoleHandler) PermissionCatalogue(c *gin.Context) {
	h.Success(c, h.roleService.ListPermissionCatalogue())
}

// Create adds a custom role to the school
func (h *RoleHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appidentity.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, role)
}

// GetByID retrieves a role by its ID
func (h *RoleHandler) GetByID(c *gin.Context) {
	schoolID, roleID, ok := h.scope(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetRoleByID(c.Request.Context(), schoolID, roleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, role)
}

// Update renames a custom role
func (h *RoleHandler) Update(c *gin.Context) {
	schoolID, roleID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), schoolID, roleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, role)
}

// SetPermissions replaces a role's permission set
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	schoolID, roleID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.SetRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.SetRolePermissions(c.Request.Context(), schoolID, roleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, role)
}

// Delete removes a custom role that is no longer assigned
func (h *RoleHandler) Delete(c *gin.Context) {
	schoolID, roleID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), schoolID, roleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// List retrieves a paginated list of roles
func (h *RoleHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil && pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.Search = c.Query("search")

	roles, total, err := h.roleService.ListRoles(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, roles, total, filter.Page, filter.PageSize)
}

func (h *RoleHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, roleID, true
}
