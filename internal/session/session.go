// Package session holds the client-side authentication state: the bearer
// token returned by the backend plus the cached user profile. The Store is
// the single authority for "who is logged in"; every other component reads
// snapshots and never mutates the state directly.
package session

import "github.com/wakeupnow/wakeup/internal/models"

// User is the cached profile of the authenticated account
type User struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// IsAdmin reports whether the cached profile has the admin role
func (u User) IsAdmin() bool {
	return u.Role == models.RoleAdmin
}

// Snapshot is an immutable view of the session state.
// Invariant: User and Token are set if and only if IsAuthenticated is true.
type Snapshot struct {
	IsAuthenticated bool
	User            User
	Token           string
}
