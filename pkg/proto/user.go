package proto

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/access"
)

// User is an interface representing a user.
type User interface {
	// ID returns the user's ID.
	ID() int64
	// Email returns the user's email.
	Email() string
	// Name returns the user's display name.
	Name() string
	// Role returns the user's role.
	Role() access.Role
	// SchoolID returns the user's school, 0 when unset.
	SchoolID() int64
}

// UserOptions are options for creating a user.
type UserOptions struct {
	// Name is the display name.
	Name string
	// Role is the user's role.
	Role access.Role
	// SchoolID is the user's school, 0 for none.
	SchoolID int64
}

// UserContextKey is the context key for the authenticated user.
var UserContextKey = &struct{ string }{"user"}

// UserFromContext returns the authenticated user, nil for anonymous callers.
func UserFromContext(ctx context.Context) User {
	if u, ok := ctx.Value(UserContextKey).(User); ok {
		return u
	}
	return nil
}

// WithUserContext returns a new context with the authenticated user.
func WithUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, UserContextKey, u)
}
