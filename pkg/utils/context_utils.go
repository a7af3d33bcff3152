package utils

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
	userRoleKey contextKey = "user_role"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// WithIdentity returns a copy of ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id.UserID)
	ctx = context.WithValue(ctx, usernameKey, id.Username)
	return context.WithValue(ctx, userRoleKey, id.Role)
}

// IdentityFromContext returns the caller identity, ok is false for anonymous contexts.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return Identity{}, false
	}
	username, _ := ctx.Value(usernameKey).(string)
	role, _ := ctx.Value(userRoleKey).(string)
	return Identity{UserID: userID, Username: username, Role: role}, true
}

// UserIDFromContext returns a pointer suitable for nullable created_by/user_id columns.
func UserIDFromContext(ctx context.Context) *int64 {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return &id.UserID
}
