// Package middleware authenticates requests by their access token and gates handlers by role.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/auth/service"
	loggermw "github.com/catalyst/backend/internal/logger/middleware"
	"github.com/catalyst/backend/internal/models"
	"github.com/catalyst/backend/internal/response"
	"go.uber.org/zap"
)

// AccessTokenCookie is the cookie consulted when no Authorization header is sent
const AccessTokenCookie = "access_token"

// UserFinder resolves a token subject to a stored user
type UserFinder interface {
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// Gate authenticates requests and resolves their user
type Gate struct {
	tokens *service.TokenGenerator
	users  UserFinder
	logger *zap.Logger
}

// NewGate creates a new gate
func NewGate(tokens *service.TokenGenerator, users UserFinder, logger *zap.Logger) *Gate {
	return &Gate{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Authenticated lets the request through when it carries a valid access token
// whose subject is an existing user of any role.
func (g *Gate) Authenticated(next http.Handler) http.Handler {
	return g.require("", next)
}

// RequireRole lets the request through only when the token subject is an existing
// user whose role equals role. Missing or invalid tokens answer 401, anything else 403.
func (g *Gate) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.require(role, next)
	}
}

func (g *Gate) require(role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r, role)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				g.logger.Error("failed to resolve token subject", zap.Error(err))
			}
			response.AppError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// resolve verifies the request token and returns its user when the role matches
func (g *Gate) resolve(r *http.Request, role models.Role) (*models.User, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, apperrors.Unauthenticated("Authentication required")
	}

	claims, err := g.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, errInvalidToken()
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, errInvalidToken()
	}

	user, err := g.users.GetByID(r.Context(), userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, errAccessDenied()
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to resolve token subject")
	}

	loggermw.SetIdentity(r.Context(), claims.Subject, string(user.Role))

	if role != "" && user.Role != role {
		return nil, errAccessDenied()
	}
	return user, nil
}

func errInvalidToken() *apperrors.Error {
	return apperrors.Unauthenticated("Invalid or expired token")
}

func errAccessDenied() *apperrors.Error {
	return apperrors.Forbidden("Access denied")
}

// ExtractToken returns the bearer token of the request, falling back to the access token cookie
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}

	return ""
}
