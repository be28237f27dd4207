package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/scrollcampus/portal-api/internal/constants"
	"github.com/scrollcampus/portal-api/internal/dto"
	apierrors "github.com/scrollcampus/portal-api/internal/errors"
	"github.com/scrollcampus/portal-api/internal/middleware"
	"github.com/scrollcampus/portal-api/internal/services"
)

// AuthHandler hosts the session boundary: login starts a session and runs
// the first tenant resolution, logout tears the session down so in-flight
// results are discarded.
type AuthHandler struct {
	authService *services.AuthService
	tenancy     *services.TenancyService
	sessions    *services.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tenancy *services.TenancyService, sessions *services.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tenancy:     tenancy,
		sessions:    sessions,
	}
}

// Login authenticates a user, initializes the session, and resolves the
// active context. Resolution failure is fatal to session start: the user
// gets an error state, never a guessed context.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, "Invalid email or password")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	state := h.sessions.Start(user.ID)
	active, err := h.tenancy.ResolveSession(user.ID, state)
	if err != nil {
		h.sessions.End(user.ID)
		apierrors.ServiceUnavailable(c, "Couldn't load your workspace")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		h.sessions.End(user.ID)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    dto.ToUserDTO(*user),
		"context": dto.ToActiveContextDTO(active),
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok {
		h.sessions.End(userID)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user and their held context.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	response := gin.H{"user": dto.ToUserDTO(*user)}
	if state, ok := h.sessions.Get(userID); ok {
		if active := state.Current(); active != nil {
			response["context"] = dto.ToActiveContextDTO(active)
		}
	}

	c.JSON(http.StatusOK, response)
}
