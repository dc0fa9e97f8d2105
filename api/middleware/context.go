package middleware

import (
	"context"

	"github.com/solystore/pointshop-backend/pkg/collections/models"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) models.Role {
	if ctx == nil {
		return models.RoleMember
	}
	if v, ok := ctx.Value(ctxRole).(models.Role); ok {
		return v
	}
	return models.RoleMember
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, userID, username string, role models.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxUsername, username)
	return context.WithValue(ctx, ctxRole, role)
}
