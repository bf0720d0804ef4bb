package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable; *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthStatus is the payload of the health endpoint
type HealthStatus struct {
	Status  string `json:"status"`
	Project string `json:"project"`
}

// HealthHandler answers liveness checks
type HealthHandler struct {
	BaseHandler
	project string
	db      Pinger
}

// NewHealthHandler creates a new health handler; a nil db skips the database check
func NewHealthHandler(project string, db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		project:     project,
		db:          db,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.SuccessBody{data=HealthStatus}
// @Failure 503 {object} response.ErrorBody{errors=HealthStatus}
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.Logger.Warn("health check failed", zap.Error(err))
			h.RespondError(w, http.StatusServiceUnavailable, "Database unreachable", HealthStatus{Status: "unhealthy", Project: h.project})
			return
		}
	}

	h.RespondSuccess(w, http.StatusOK, "OK", HealthStatus{Status: "healthy", Project: h.project})
}
