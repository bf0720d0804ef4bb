package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catalyst/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQL error numbers
const (
	mysqlDuplicateEntry = 1062
	mysqlDeadlock       = 1213
)

const userColumns = `id, username, email, password_hash, role, created_at`

// orderClauses whitelists the orderings a caller may request
var orderClauses = map[models.UserOrder]string{
	models.OrderByIDDesc: "id DESC",
}

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a new user into the database.
// Unique key violations map to models.ErrUsernameTaken or models.ErrEmailTaken.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC().Truncate(time.Second)
	}

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if dupErr := duplicateError(err); dupErr != nil {
			return dupErr
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// CreateBatchIfCountAtMost inserts all users in a single transaction, provided the table holds at most
// limit rows when the transaction starts. The count takes locks that hold off concurrent inserts
// until commit. It reports whether the batch was inserted.
func (r *userRepository) CreateBatchIfCountAtMost(ctx context.Context, limit int, users []*models.User) (bool, error) {
	inserted, err := r.createBatchIfCountAtMost(ctx, limit, users)
	if isDeadlock(err) {
		// Both contenders held the empty gap, the survivor has committed by now
		r.logger.Warn("batch insert deadlocked, retrying", zap.Error(err))
		inserted, err = r.createBatchIfCountAtMost(ctx, limit, users)
	}
	return inserted, err
}

func (r *userRepository) createBatchIfCountAtMost(ctx context.Context, limit int, users []*models.User) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users FOR UPDATE`).Scan(&total); err != nil {
		r.logger.Error("failed to count users for batch insert", zap.Error(err))
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if total > limit {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		r.logger.Error("failed to prepare batch insert", zap.Error(err))
		return false, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	createdAt := r.now().UTC().Truncate(time.Second)
	for _, user := range users {
		if user.CreatedAt.IsZero() {
			user.CreatedAt = createdAt
		}
		result, err := stmt.ExecContext(ctx, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
		if err != nil {
			if dupErr := duplicateError(err); dupErr != nil {
				return false, dupErr
			}
			r.logger.Error("failed to insert user in batch", zap.Error(err), zap.String("username", user.Username))
			return false, fmt.Errorf("failed to insert user %q: %w", user.Username, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("failed to get last insert id: %w", err)
		}
		user.ID = int(id)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit batch insert", zap.Error(err))
		return false, fmt.Errorf("failed to commit batch insert: %w", err)
	}

	return true, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`
	return r.getOne(ctx, query, userID)
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? LIMIT 1`
	return r.getOne(ctx, query, username)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// List returns a window of users in the requested order
func (r *userRepository) List(ctx context.Context, order models.UserOrder, limit, offset int) ([]models.User, error) {
	orderClause, ok := orderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unsupported user order %q", order)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY ` + orderClause + ` LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate users", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// emailUniqueKey is the unique key on users.email, see migrations
const emailUniqueKey = "uq_users_email"

// duplicateError maps a MySQL unique key violation to the matching sentinel, or returns nil
func duplicateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return nil
	}
	if strings.Contains(mysqlErr.Message, emailUniqueKey+"'") {
		return fmt.Errorf("%w: %s", models.ErrEmailTaken, mysqlErr.Message)
	}
	return fmt.Errorf("%w: %s", models.ErrUsernameTaken, mysqlErr.Message)
}

func isDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDeadlock
}
