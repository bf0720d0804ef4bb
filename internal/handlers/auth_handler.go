package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/catalyst/backend/internal/auth/middleware"
	"github.com/catalyst/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RefreshTokenCookie is the cookie the refresh token is delivered in
const RefreshTokenCookie = "refresh_token"

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the credentials, creates the user with the default role and returns it.
	//
	// A taken username or email fails with a Conflict error, malformed input with a Validation error.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login checks username and password and returns a fresh token pair with the user.
	//
	// Unknown users and wrong passwords fail with the same Unauthenticated error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService  AuthService
	loginLimiter func(http.Handler) http.Handler
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewAuthHandler creates a new auth handler.
// loginLimiter wraps the login route; token TTLs set the cookie lifetimes.
func NewAuthHandler(
	authService AuthService,
	loginLimiter func(http.Handler) http.Handler,
	accessTTL, refreshTTL time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		authService:  authService,
		loginLimiter: loginLimiter,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(h.loginLimiter).Post("/login", h.Login)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with username, email and password. The role is always "user".
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} response.SuccessBody{data=models.RegisterResponse} "User created successfully"
// @Failure 400 {object} response.ErrorBody "Missing fields or username/email already exists"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "User created successfully", models.RegisterResponse{User: user.ToResponse()})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Authenticate with username and password. Returns an access and a refresh token in the body and as HTTP-only cookies. Rate limited to 10 requests per minute.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} response.SuccessBody{data=models.LoginResponse} "Login successful"
// @Failure 400 {object} response.ErrorBody "Missing username or password"
// @Failure 401 {object} response.ErrorBody "Invalid credentials"
// @Failure 429 {object} response.ErrorBody "Too many requests"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.setTokenCookies(w, resp.AccessToken, resp.RefreshToken)
	h.RespondSuccess(w, http.StatusOK, "Login successful", resp)
}

// setTokenCookies mirrors the issued tokens into HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
