package services

import "github.com/tbourn/go-adoption-backend/internal/domain"

// Actor is the identity a call is made on behalf of. It is supplied by the
// caller for every operation; services never look it up from ambient state.
type Actor struct {
	UserID uint
	Role   domain.Role
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Authenticated reports whether the actor identifies a user.
func (a Actor) Authenticated() bool { return a.UserID != 0 }
