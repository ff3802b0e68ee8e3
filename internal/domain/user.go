package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a back-office user
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string `json:"-"`
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin is the privileged role: manages limits, currencies and customers,
	// and may edit operations created by anyone
	RoleAdmin Role = "admin"

	// RoleOperator can create exchange operations and edit its own
	RoleOperator Role = "operator"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

// Valid roles
var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsPrivileged reports whether the role holds the elevated capability
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

// CanCreate checks if the role can create exchange operations
func (r Role) CanCreate() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanViewAll checks if the role can view all resources
func (r Role) CanViewAll() bool {
	return r.IsValid()
}

// SystemUser is the actor used when authentication is disabled.
var SystemUser = &User{
	ID:     "system",
	Email:  "system@cambio.local",
	Name:   "System",
	Role:   RoleAdmin,
	Active: true,
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
	ErrInactiveUser     = errors.New("user account is inactive")
	ErrInvalidRole      = errors.New("invalid role")
)

type userContextKey struct{}

// ContextWithUser returns a copy of ctx carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from ctx.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// ActorID returns the id of the user in ctx, or "system".
func ActorID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.ID
	}
	return SystemUser.ID
}
