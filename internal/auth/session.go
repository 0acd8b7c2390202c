// Package auth verifies users against the Login sheet and carries the
// signed-in user through request contexts.
package auth

import (
	"context"
	"strings"
)

// Roles a session can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AllDepartments is the department scope of an administrator.
const AllDepartments = "all"

// Principal is a verified user.
type Principal struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Session is the explicit state of a signed-in user. It is created at
// login, travels in a signed cookie and is dropped at logout.
type Session struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// IsAdmin is the single administrator policy: a user is an administrator
// when the name or id contains "admin", ignoring case.
func IsAdmin(p Principal) bool {
	return strings.Contains(strings.ToLower(p.UserName), RoleAdmin) ||
		strings.Contains(strings.ToLower(p.UserID), RoleAdmin)
}

// NewSession derives the session for p.
func NewSession(p Principal) Session {
	s := Session{UserID: p.UserID, UserName: p.UserName, Role: RoleUser, Department: p.UserID}
	if IsAdmin(p) {
		s.Role = RoleAdmin
		s.Department = AllDepartments
	}
	return s
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
