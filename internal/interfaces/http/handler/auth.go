package handler

import (
	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/elimu/backend/internal/infrastructure/auth"
	"github.com/elimu/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
	blacklist   auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler. The blacklist is optional;
// without it logout is a client-side discard.
func NewAuthHandler(authService *appidentity.AuthService, blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		blacklist:   blacklist,
	}
}

// CurrentUserResponse describes the authenticated caller
type CurrentUserResponse struct {
	UserID       string   `json:"user_id"`
	SchoolID     string   `json:"school_id,omitempty"`
	Email        string   `json:"email"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	Permissions  []string `json:"permissions"`
}

// Login authenticates with email and password and returns a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout revokes the presented token for its remaining lifetime
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.blacklist != nil && claims.ID != "" {
		ttl := claims.GetRemainingTTL()
		if ttl > 0 {
			if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, ttl); err != nil {
				h.InternalError(c, "Failed to revoke token")
				return
			}
		}
	}

	h.NoContent(c)
}

// Me returns the identity carried by the presented token
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	h.Success(c, CurrentUserResponse{
		UserID:       claims.UserID,
		SchoolID:     claims.SchoolID,
		Email:        claims.Email,
		IsSuperAdmin: claims.IsSuperAdmin,
		Permissions:  claims.Permissions,
	})
}

// ChangePassword rotates the caller's own password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
