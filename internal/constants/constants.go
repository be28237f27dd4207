package constants

// Session and gin context keys
const (
	SessionCookieName       = "portal_session"
	ContextKeyUserID        = "user_id"
	ContextKeyActiveContext = "active_context"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
