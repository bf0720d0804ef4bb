package services

import (
	"context"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/models"
	"github.com/catalyst/backend/internal/pagination"
	"go.uber.org/zap"
)

// UserListRepository is the interface that wraps the read side of the User table used for listings
type UserListRepository interface {
	// Method Count returns the total number of users.
	Count(ctx context.Context) (int, error)
	// Method List returns at most "limit" users in "order", skipping the first "offset".
	List(ctx context.Context, order models.UserOrder, limit, offset int) ([]models.User, error)
}

// adminService implements AdminService
type adminService struct {
	userRepo UserListRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo UserListRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns one page of all users, newest first
func (s *adminService) ListUsers(ctx context.Context, params pagination.Params) (pagination.Page[models.UserResponse], error) {
	return listUsersPage(ctx, s.userRepo, params)
}

// listUsersPage is shared by the admin listing and the utils demo
func listUsersPage(ctx context.Context, userRepo UserListRepository, params pagination.Params) (pagination.Page[models.UserResponse], error) {
	total, err := userRepo.Count(ctx)
	if err != nil {
		return pagination.Page[models.UserResponse]{}, apperrors.Internal(err, "Failed to list users")
	}

	users, err := userRepo.List(ctx, models.OrderByIDDesc, params.Limit(), params.Offset())
	if err != nil {
		return pagination.Page[models.UserResponse]{}, apperrors.Internal(err, "Failed to list users")
	}

	page := pagination.NewPage(users, params, total)
	return pagination.Map(page, func(u models.User) models.UserResponse {
		return u.ToResponse()
	}), nil
}
