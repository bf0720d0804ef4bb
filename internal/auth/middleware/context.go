package middleware

import (
	"context"

	"github.com/catalyst/backend/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// ContextWithUser returns a copy of ctx carrying the authenticated user
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from context
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
