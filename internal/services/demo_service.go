package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/auth/service"
	"github.com/catalyst/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SeedThreshold is the user count above which seeding is skipped
	SeedThreshold = 10
	// SeedCount is the number of users one seed run inserts
	SeedCount = 100
	// SeedPassword is the password of every seeded user
	SeedPassword = "123456"

	demoUploadFolder   = "demo"
	demoEmailSubject   = "flask-catalyst Demo Email"
	demoEmailBody      = "<h1>Hello from flask-catalyst!</h1><p>All utils working!</p>"
	demoRateLimitInfo  = "This endpoint is rate limited to 5/min"
	demoSeedEmailHost  = "example.com"
	demoSeedNamePrefix = "user_"
)

// DemoUserRepository is the interface that wraps the User table access of the demo endpoints
type DemoUserRepository interface {
	UserListRepository
	// Method CreateBatchIfCountAtMost inserts all users in one transaction if the table holds at most
	// "limit" users, counted under lock in the same transaction. It reports whether it inserted.
	CreateBatchIfCountAtMost(ctx context.Context, limit int, users []*models.User) (bool, error)
}

// FileStore saves uploaded files and returns their public URL
type FileStore interface {
	Save(ctx context.Context, r io.Reader, filename, folder string) (string, error)
}

// EmailSender delivers an HTML email
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// demoService implements DemoService
type demoService struct {
	userRepo DemoUserRepository
	hasher   *service.PasswordHasher
	files    FileStore
	mailer   EmailSender
	logger   *zap.Logger
	newID    func() string
}

// NewDemoService creates a new demo service
func NewDemoService(
	userRepo DemoUserRepository,
	hasher *service.PasswordHasher,
	files FileStore,
	mailer EmailSender,
	logger *zap.Logger,
) *demoService {
	return &demoService{
		userRepo: userRepo,
		hasher:   hasher,
		files:    files,
		mailer:   mailer,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Seed inserts SeedCount generated users unless the store already holds more than SeedThreshold.
// It returns the number of inserted users, zero when seeding was skipped.
func (s *demoService) Seed(ctx context.Context) (int, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal(err, "Seeding failed")
	}
	if total > SeedThreshold {
		return 0, nil
	}

	// One hash for the whole batch
	passwordHash, err := s.hasher.Hash(SeedPassword)
	if err != nil {
		return 0, apperrors.Internal(err, "Seeding failed")
	}

	users := make([]*models.User, 0, SeedCount)
	for i := range SeedCount {
		username := demoSeedNamePrefix + strings.ReplaceAll(s.newID(), "-", "")[:12]
		role := models.RoleUser
		if i%10 == 0 {
			role = models.RoleAdmin
		}
		users = append(users, &models.User{
			Username:     username,
			Email:        username + "@" + demoSeedEmailHost,
			PasswordHash: passwordHash,
			Role:         role,
		})
	}

	inserted, err := s.userRepo.CreateBatchIfCountAtMost(ctx, SeedThreshold, users)
	if err != nil {
		return 0, apperrors.Internal(err, "Seeding failed")
	}
	if !inserted {
		return 0, nil
	}

	s.logger.Info("seeded users", zap.Int("count", len(users)))
	return len(users), nil
}

// UtilsDemo returns a page of users and, when asked to, exercises the file store and the mailer.
// Upload and email failures are reported in the result and never fail the call.
func (s *demoService) UtilsDemo(ctx context.Context, req *models.UtilsDemoRequest) (*models.UtilsDemoResult, error) {
	result := &models.UtilsDemoResult{
		CurrentUser:   req.CurrentUser,
		RateLimitInfo: demoRateLimitInfo,
	}

	if req.File != nil {
		url, err := s.files.Save(ctx, req.File.Content, req.File.Filename, demoUploadFolder)
		if err != nil {
			upErr := apperrors.Upstream(err, "File upload failed")
			s.logger.Warn("demo file upload failed", zap.Error(upErr), zap.Stringer("kind", upErr.Kind))
			result.FileUploadError = upErr.Error()
		} else {
			s.logger.Info("demo file uploaded", zap.String("url", url))
			result.UploadedFileURL = url
		}
	}

	if to := strings.TrimSpace(req.EmailTo); to != "" {
		if err := s.sendDemoEmail(ctx, to); err != nil {
			s.logger.Warn("demo email failed", zap.Error(err), zap.Stringer("kind", err.Kind))
			result.EmailError = err.Error()
		} else {
			result.EmailStatus = fmt.Sprintf("Test email sent to %s", to)
		}
	}

	page, err := listUsersPage(ctx, s.userRepo, req.Params)
	if err != nil {
		return nil, err
	}
	result.PaginatedUsers = page

	return result, nil
}

// sendDemoEmail returns a validation error for a malformed recipient, an upstream error when delivery fails
func (s *demoService) sendDemoEmail(ctx context.Context, to string) *apperrors.Error {
	if !emailRegex.MatchString(strings.ToLower(to)) {
		return apperrors.Validation(fmt.Sprintf("Invalid email address %q", to))
	}
	if err := s.mailer.Send(ctx, to, demoEmailSubject, demoEmailBody); err != nil {
		return apperrors.Upstream(err, "Email delivery failed")
	}
	return nil
}
