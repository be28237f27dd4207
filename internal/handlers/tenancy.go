package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scrollcampus/portal-api/internal/dto"
	apierrors "github.com/scrollcampus/portal-api/internal/errors"
	"github.com/scrollcampus/portal-api/internal/middleware"
	"github.com/scrollcampus/portal-api/internal/services"
)

// TenancyHandler exposes tenant resolution and switching.
type TenancyHandler struct {
	tenancy  *services.TenancyService
	sessions *services.SessionManager
}

// NewTenancyHandler creates a new TenancyHandler.
func NewTenancyHandler(tenancy *services.TenancyService, sessions *services.SessionManager) *TenancyHandler {
	return &TenancyHandler{
		tenancy:  tenancy,
		sessions: sessions,
	}
}

func (h *TenancyHandler) sessionState(userID string) *services.SessionState {
	if state, ok := h.sessions.Get(userID); ok {
		return state
	}
	return h.sessions.Start(userID)
}

// GetContext re-resolves the caller's active context and returns it.
func (h *TenancyHandler) GetContext(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	state := h.sessionState(userID)
	active, err := h.tenancy.ResolveSession(userID, state)
	if err != nil {
		respondTenancyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActiveContextDTO(active))
}

// Switch changes the caller's active institution. A successful switch
// replaces the whole session context; the response tells the client to
// rebuild all tenant-scoped state rather than patch it piecemeal.
func (h *TenancyHandler) Switch(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SwitchRequest struct {
		InstitutionID string `json:"institution_id" binding:"required,uuid"`
	}

	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	state := h.sessionState(userID)
	current := state.Current()
	if current == nil {
		resolved, err := h.tenancy.ResolveSession(userID, state)
		if err != nil {
			respondTenancyError(c, err)
			return
		}
		current = resolved
	}

	next, err := h.tenancy.SwitchTo(userID, req.InstitutionID, current)
	if err != nil {
		respondTenancyError(c, err)
		return
	}

	if !state.CommitSwitch(next) {
		apierrors.Unauthorized(c, "Session ended")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("Now viewing %s as %s", next.ActiveInstitution.Name, next.ActiveRole),
		"reload_required": true,
		"context":         dto.ToActiveContextDTO(next),
	})
}

func respondTenancyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAMember):
		// 404 rather than 403 so the response does not leak which
		// institutions exist
		apierrors.NotFound(c, "Institution not found")
	case errors.Is(err, services.ErrPersistFailed):
		apierrors.ServiceUnavailable(c, "Couldn't save your selection, please try again")
	case errors.Is(err, services.ErrResolutionFailed):
		apierrors.ServiceUnavailable(c, "Couldn't load your workspace")
	case errors.Is(err, services.ErrSessionEnded):
		apierrors.Unauthorized(c, "Session ended")
	default:
		apierrors.InternalError(c, "")
	}
}
