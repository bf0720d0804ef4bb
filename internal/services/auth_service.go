package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/auth/service"
	"github.com/catalyst/backend/internal/models"
	"go.uber.org/zap"
)

// UserSharedRepository is the interface that wraps the uniqueness checks of the User table
type UserSharedRepository interface {
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	UserSharedRepository
	// Method Create inserts a new user into the database.
	//
	// A unique key violation is reported as models.ErrUsernameTaken or models.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by username.
	//
	// If user with such username does not exist, models.ErrUserNotFound is returned.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dummyPassword is hashed once and compared against when the login username is unknown
const dummyPassword = "catalyst-dummy-password"

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	tokenGenerator *service.TokenGenerator
	hasher         *service.PasswordHasher
	logger         *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	tokenGenerator *service.TokenGenerator,
	hasher *service.PasswordHasher,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		hasher:         hasher,
		logger:         logger,
	}
}

// Register creates a new user account with the default role
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	normalizedEmail, normalizedUsername, err := checkRegisterCredentials(ctx, s.userRepo, req.Email, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err, "Registration failed")
	}

	user := &models.User{
		Username:     normalizedUsername,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleUser, // Default role
	}

	// The pre-check above is racy; the unique keys of the store decide
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, models.ErrUsernameTaken):
			return nil, errUsernameTaken()
		case errors.Is(err, models.ErrEmailTaken):
			return nil, errEmailTaken()
		default:
			return nil, apperrors.Internal(err, "Registration failed")
		}
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Login authenticates a user by username and password and issues a token pair.
// Unknown usernames and wrong passwords fail identically.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		verr := apperrors.Validation("Username and password required")
		if username == "" {
			verr.WithField("username", "required")
		}
		if req.Password == "" {
			verr.WithField("password", "required")
		}
		return nil, verr
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		s.hasher.Verify(req.Password, s.dummy())
		return nil, errInvalidCredentials()
	}
	if err != nil {
		return nil, apperrors.Internal(err, "Login failed")
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials()
	}

	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(strconv.Itoa(user.ID), true)
	if err != nil {
		return nil, apperrors.Internal(err, "Login failed")
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func errInvalidCredentials() *apperrors.Error {
	return apperrors.Unauthenticated("Invalid credentials")
}

func errUsernameTaken() *apperrors.Error {
	return apperrors.Conflict("Username already exists").WithField("username", "already exists")
}

func errEmailTaken() *apperrors.Error {
	return apperrors.Conflict("Email already exists").WithField("email", "already exists")
}

// uniquenessResult is the outcome of one uniqueness check
type uniquenessResult struct {
	field  string
	exists bool
	err    error
}

// Method that combines all checks for register credentials and returns the normalized email and username.
//
// The two uniqueness lookups do not depend on each other, so they run in parallel.
// A taken username is reported before a taken email.
func checkRegisterCredentials(ctx context.Context, userRepo UserSharedRepository, email, username, password string) (string, string, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	verr := apperrors.Validation("Username, email and password are required")
	if normalizedUsername == "" {
		verr.WithField("username", "required")
	}
	if normalizedEmail == "" {
		verr.WithField("email", "required")
	}
	if password == "" {
		verr.WithField("password", "required")
	}
	if len(verr.Fields) > 0 {
		return "", "", verr
	}

	lerr := apperrors.Validation("Username or email too long")
	if utf8.RuneCountInString(normalizedUsername) > models.MaxUsernameLength {
		lerr.WithField("username", fmt.Sprintf("at most %d characters", models.MaxUsernameLength))
	}
	if utf8.RuneCountInString(normalizedEmail) > models.MaxEmailLength {
		lerr.WithField("email", fmt.Sprintf("at most %d characters", models.MaxEmailLength))
	}
	if len(lerr.Fields) > 0 {
		return "", "", lerr
	}

	if !emailRegex.MatchString(normalizedEmail) {
		return "", "", apperrors.Validation("Invalid email format").WithField("email", "invalid format")
	}

	results := make(chan uniquenessResult, 2)

	go func() {
		exists, err := userRepo.ExistsByUsername(ctx, normalizedUsername)
		results <- uniquenessResult{field: "username", exists: exists, err: err}
	}()

	go func() {
		exists, err := userRepo.ExistsByEmail(ctx, normalizedEmail)
		results <- uniquenessResult{field: "email", exists: exists, err: err}
	}()

	var usernameTaken, emailTaken bool
	var checkErr error
	for range 2 {
		res := <-results
		if res.err != nil {
			checkErr = errors.Join(checkErr, fmt.Errorf("failed to check %s: %w", res.field, res.err))
			continue
		}
		if res.field == "username" {
			usernameTaken = res.exists
		} else {
			emailTaken = res.exists
		}
	}

	switch {
	case checkErr != nil:
		return "", "", apperrors.Internal(checkErr, "Registration failed")
	case usernameTaken:
		return "", "", errUsernameTaken()
	case emailTaken:
		return "", "", errEmailTaken()
	}

	return normalizedEmail, normalizedUsername, nil
}
