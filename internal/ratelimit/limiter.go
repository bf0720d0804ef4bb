package ratelimit

import (
	"net/http"
	"time"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/response"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
)

// Factory builds per-IP limiters answering the error envelope with 429.
// With a nil Redis client the counters live in process memory.
type Factory struct {
	client *redis.Client
}

// NewFactory creates a limiter factory
func NewFactory(client *redis.Client) *Factory {
	return &Factory{client: client}
}

// ByIP limits each client IP to limit requests per window. name separates the counters of different limits.
func (f *Factory) ByIP(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	opts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	}
	if f.client != nil {
		opts = append(opts, httprate.WithLimitCounter(NewRedisCounter(f.client, defaultPrefix+":"+name)))
	}
	return httprate.Limit(limit, window, opts...)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	response.AppError(w, apperrors.New(apperrors.KindTooManyRequests, "Too many requests"))
}
