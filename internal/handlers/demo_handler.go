package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/catalyst/backend/internal/auth/middleware"
	"github.com/catalyst/backend/internal/models"
	"github.com/catalyst/backend/internal/pagination"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxDemoUploadMemory is the part of a multipart form kept in memory, the rest spills to disk
const maxDemoUploadMemory = 10 << 20

// DemoService is the interface that wraps methods for the seed and utils demo endpoints.
type DemoService interface {
	// Method Seed inserts generated users into a nearly empty store and returns how many were inserted.
	//
	// Zero means the store was already populated.
	Seed(ctx context.Context) (int, error)
	// Method UtilsDemo lists users and optionally exercises file upload and email.
	//
	// Upload and email failures are reported inside the result.
	UtilsDemo(ctx context.Context, req *models.UtilsDemoRequest) (*models.UtilsDemoResult, error)
}

// DemoHandler handles demo-related HTTP requests
type DemoHandler struct {
	BaseHandler
	demoService   DemoService
	authenticated func(http.Handler) http.Handler
	limiter       func(http.Handler) http.Handler
}

// NewDemoHandler creates a new demo handler.
// authenticated and limiter wrap the utils demo routes.
func NewDemoHandler(
	demoService DemoService,
	authenticated func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
	logger *zap.Logger,
) *DemoHandler {
	return &DemoHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		demoService:   demoService,
		authenticated: authenticated,
		limiter:       limiter,
	}
}

// RegisterRoutes registers all demo handler routes
func (h *DemoHandler) RegisterRoutes(r chi.Router) {
	r.Route("/demo", func(r chi.Router) {
		r.Get("/seed", h.Seed)
		r.Group(func(r chi.Router) {
			r.Use(h.limiter, h.authenticated)
			r.Get("/utils-demo", h.UtilsDemo)
			r.Post("/utils-demo", h.UtilsDemo)
		})
	})
}

// Seed handles GET /demo/seed
// @Summary Seed demo users
// @Description Inserts 100 generated users (every tenth an admin, password 123456) unless more than 10 users exist.
// @Tags demo
// @Produce json
// @Success 200 {object} response.SuccessBody "Already seeded"
// @Success 201 {object} response.SuccessBody{data=models.SeedResult} "Seeded 100 fake users"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /demo/seed [get]
func (h *DemoHandler) Seed(w http.ResponseWriter, r *http.Request) {
	created, err := h.demoService.Seed(r.Context())
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if created == 0 {
		h.RespondSuccess(w, http.StatusOK, "Already seeded", nil)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, fmt.Sprintf("Seeded %d fake users", created), models.SeedResult{Created: created})
}

// UtilsDemo handles GET and POST /demo/utils-demo
// @Summary Utils demo
// @Description GET returns a page of users with the current user. POST additionally saves an uploaded "file" and sends a test email to "email" (multipart form or JSON body). Rate limited to 5 requests per minute.
// @Tags demo
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Items per page (default 10, max 100)"
// @Param file formData file false "File to upload (png, jpg, jpeg, gif, pdf, svg, webp)"
// @Param email formData string false "Recipient of the test email"
// @Success 200 {object} response.SuccessBody{data=models.UtilsDemoResult} "Utils demo fetched"
// @Failure 400 {object} response.ErrorBody "Invalid request body"
// @Failure 401 {object} response.ErrorBody "Authentication required"
// @Failure 429 {object} response.ErrorBody "Too many requests"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /demo/utils-demo [get]
// @Router /demo/utils-demo [post]
func (h *DemoHandler) UtilsDemo(w http.ResponseWriter, r *http.Request) {
	req := &models.UtilsDemoRequest{
		Params: pagination.FromQuery(r.URL.Query()),
	}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		req.CurrentUser = strconv.Itoa(user.ID)
	}

	message := "Utils demo fetched"
	if r.Method == http.MethodPost {
		cleanup, err := h.readDemoInput(r, req)
		if err != nil {
			h.RespondAppError(w, r, err)
			return
		}
		defer cleanup()
		message = "All flask-catalyst backend utils demo - SUCCESS!"
	}

	result, err := h.demoService.UtilsDemo(r.Context(), req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, message, result)
}

// readDemoInput fills the optional file and email of a POST from a multipart form or a JSON body
func (h *DemoHandler) readDemoInput(r *http.Request, req *models.UtilsDemoRequest) (func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxDemoUploadMemory); err != nil {
			h.Logger.Error("failed to parse multipart form", zap.Error(err))
			return noop, errInvalidBody()
		}
		req.EmailTo = r.FormValue("email")

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return noop, nil
		}
		if err != nil {
			h.Logger.Error("failed to get file from form", zap.Error(err))
			return noop, errInvalidBody()
		}
		req.File = &models.DemoUpload{Filename: header.Filename, Content: file}
		return func() { file.Close() }, nil

	case "application/json":
		var body struct {
			Email string `json:"email"`
		}
		if err := h.decodeJSON(r, &body); err != nil {
			return noop, err
		}
		req.EmailTo = body.Email
		return noop, nil

	default:
		return noop, nil
	}
}
