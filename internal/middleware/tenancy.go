package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/scrollcampus/portal-api/internal/constants"
	apierrors "github.com/scrollcampus/portal-api/internal/errors"
	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/services"
)

// RequireRole gates a route on the session's role in its active
// institution. The active context is taken from the session state,
// resolving it first if the process has not seen this session yet
// (e.g. after a restart with a still-valid cookie).
func RequireRole(manager *services.SessionManager, tenancy *services.TenancyService, required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		state, ok := manager.Get(userID)
		if !ok {
			state = manager.Start(userID)
		}

		active := state.Current()
		if active == nil {
			resolved, err := tenancy.ResolveSession(userID, state)
			if err != nil {
				apierrors.ServiceUnavailable(c, "Couldn't load your workspace")
				c.Abort()
				return
			}
			active = resolved
		}

		if !active.HasAtLeast(required) {
			apierrors.Forbidden(c, "Insufficient privileges in the active institution")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActiveContext, active)
		c.Next()
	}
}

// GetActiveContext retrieves the resolved context stored by RequireRole.
func GetActiveContext(c *gin.Context) (*services.ActiveContext, bool) {
	value, exists := c.Get(constants.ContextKeyActiveContext)
	if !exists {
		return nil, false
	}

	active, ok := value.(*services.ActiveContext)
	return active, ok
}
