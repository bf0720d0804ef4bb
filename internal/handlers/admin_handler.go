package handlers

import (
	"context"
	"net/http"

	"github.com/catalyst/backend/internal/models"
	"github.com/catalyst/backend/internal/pagination"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for admin business logic.
type AdminService interface {
	// Method ListUsers returns one page of all users ordered by id descending.
	ListUsers(ctx context.Context, params pagination.Params) (pagination.Page[models.UserResponse], error)
}

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
	requireAdmin func(http.Handler) http.Handler
}

// NewAdminHandler creates a new admin handler; requireAdmin gates every route
func NewAdminHandler(adminService AdminService, requireAdmin func(http.Handler) http.Handler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
		requireAdmin: requireAdmin,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/users", h.ListUsers)
	})
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Paginated list of all users, newest first. per_page is capped at 100.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Items per page (default 10, max 100)"
// @Success 200 {object} response.SuccessBody{data=pagination.Page[models.UserResponse]} "Data fetched successfully"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 403 {object} response.ErrorBody "Access denied"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromQuery(r.URL.Query())

	page, err := h.adminService.ListUsers(r.Context(), params)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Data fetched successfully", page)
}
