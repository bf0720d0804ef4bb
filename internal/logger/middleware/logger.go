package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/catalyst/backend/internal/middlewares"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "requestIdentity"

// identity is filled in by the access gate further down the chain
type identity struct {
	userID string
	role   string
}

// SetIdentity records the authenticated user of the current request for the access log.
// It is a no-op when the request did not pass through LoggerMiddleware.
func SetIdentity(ctx context.Context, userID, role string) {
	if id, ok := ctx.Value(identityKey).(*identity); ok {
		id.userID = userID
		id.role = role
	}
}

// LoggerMiddleware logs HTTP requests with request ID
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			id := &identity{userID: "anonymous", role: "unknown"}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), identityKey, id)))

			duration := time.Since(start)
			requestID := middlewares.GetRequestID(r.Context())

			logger.Info("HTTP request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.statusCode),
				zap.Duration("duration", duration),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.String("user_id", id.userID),
				zap.String("user_role", id.role),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
