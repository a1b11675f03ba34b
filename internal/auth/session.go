package auth

import "github.com/wakeupnow/wakeup/internal/models"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// IsAdmin reports whether the session belongs to an admin account
func (s *SessionData) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}
