package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/catalyst/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var userRowColumns = []string{"id", "username", "email", "password_hash", "role", "created_at"}

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db, zap.NewNop())
	repo.now = func() time.Time { return fixedNow }

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewUserRepository(t *testing.T) {
	db := &sql.DB{}
	logger := zap.NewNop()

	repo := NewUserRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestUserRepository_Create(t *testing.T) {
	newUser := func() *models.User {
		return &models.User{
			Username:     "testuser",
			Email:        "test@example.com",
			PasswordHash: "hashedpassword",
			Role:         models.RoleUser,
		}
	}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedID    int
		wantErr       bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("testuser", "test@example.com", "hashedpassword", "user", fixedNow).
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			expectedID: 7,
		},
		{
			name: "database error on insert",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
		{
			name: "error getting last insert id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("last insert id error")))
			},
			wantErr: true,
		},
		{
			name: "duplicate email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'test@example.com' for key 'users.uq_users_email'"})
			},
			expectedError: models.ErrEmailTaken,
			wantErr:       true,
		},
		{
			name: "duplicate username",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'testuser' for key 'users.uq_users_username'"})
			},
			expectedError: models.ErrUsernameTaken,
			wantErr:       true,
		},
		{
			name: "duplicate username mentioning email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'myemail' for key 'users.uq_users_username'"})
			},
			expectedError: models.ErrUsernameTaken,
			wantErr:       true,
		},
		{
			name: "other mysql error is not a conflict",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user := newUser()
			err := repo.Create(context.Background(), user)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.NotErrorIs(t, err, models.ErrEmailTaken)
					assert.NotErrorIs(t, err, models.ErrUsernameTaken)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
				assert.Equal(t, fixedNow, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateBatchIfCountAtMost(t *testing.T) {
	users := func() []*models.User {
		return []*models.User{
			{Username: "a", Email: "a@example.com", PasswordHash: "h", Role: models.RoleAdmin},
			{Username: "b", Email: "b@example.com", PasswordHash: "h", Role: models.RoleUser},
		}
	}
	countQuery := `SELECT COUNT\(\*\) FROM users FOR UPDATE`

	t.Run("success commits", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
		prep := mock.ExpectPrepare(`INSERT INTO users`)
		prep.ExpectExec().WithArgs("a", "a@example.com", "h", "admin", fixedNow).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs("b", "b@example.com", "h", "user", fixedNow).WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		batch := users()
		inserted, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, batch)

		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, 1, batch[0].ID)
		assert.Equal(t, 2, batch[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count above limit rolls back", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
		mock.ExpectRollback()

		inserted, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, users())

		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deadlock is retried once", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
		mock.ExpectBegin()
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		prep := mock.ExpectPrepare(`INSERT INTO users`)
		prep.ExpectExec().WillReturnError(deadlock)
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		mock.ExpectRollback()

		inserted, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, users())

		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second deadlock is returned", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
		for range 2 {
			mock.ExpectBegin()
			mock.ExpectQuery(countQuery).WillReturnError(deadlock)
			mock.ExpectRollback()
		}

		inserted, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, users())

		require.Error(t, err)
		assert.False(t, inserted)
		assert.True(t, isDeadlock(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		prep := mock.ExpectPrepare(`INSERT INTO users`)
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b' for key 'users.uq_users_username'"})
		mock.ExpectRollback()

		inserted, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, users())

		require.Error(t, err)
		assert.False(t, inserted)
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		_, err := repo.CreateBatchIfCountAtMost(context.Background(), 10, users())

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedUser  *models.User
		expectedError error
		wantErr       bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow(3, "alice", "alice@example.com", "hash", "admin", fixedNow)
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \?`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
			expectedUser: &models.User{
				ID:           3,
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
				Role:         models.RoleAdmin,
				CreatedAt:    fixedNow,
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \?`).
					WithArgs("alice").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrUserNotFound,
			wantErr:       true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \?`).
					WithArgs("alice").
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByUsername(context.Background(), "alice")

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, user)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.NotErrorIs(t, err, models.ErrUserNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(9, "bob", "bob@example.com", "hash", "user", fixedNow)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
		WithArgs(9).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = repo.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(4, "carol", "carol@example.com", "hash", "user", fixedNow)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \?`).
		WithArgs("carol@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "carol@example.com")

	require.NoError(t, err)
	assert.Equal(t, 4, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	tests := []struct {
		name      string
		call      func(*userRepository) (bool, error)
		query     string
		arg       string
		setupRows func(sqlmock.Sqlmock, string, string)
		expected  bool
		wantErr   bool
	}{
		{
			name:  "username exists",
			call:  func(r *userRepository) (bool, error) { return r.ExistsByUsername(context.Background(), "alice") },
			query: `SELECT EXISTS\(SELECT 1 FROM users WHERE username = \?\)`,
			arg:   "alice",
			setupRows: func(mock sqlmock.Sqlmock, query, arg string) {
				mock.ExpectQuery(query).WithArgs(arg).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expected: true,
		},
		{
			name:  "email does not exist",
			call:  func(r *userRepository) (bool, error) { return r.ExistsByEmail(context.Background(), "a@example.com") },
			query: `SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`,
			arg:   "a@example.com",
			setupRows: func(mock sqlmock.Sqlmock, query, arg string) {
				mock.ExpectQuery(query).WithArgs(arg).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expected: false,
		},
		{
			name:  "database error",
			call:  func(r *userRepository) (bool, error) { return r.ExistsByEmail(context.Background(), "a@example.com") },
			query: `SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`,
			arg:   "a@example.com",
			setupRows: func(mock sqlmock.Sqlmock, query, arg string) {
				mock.ExpectQuery(query).WithArgs(arg).WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupRows(mock, tt.query, tt.arg)

			exists, err := tt.call(repo)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, exists)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Count(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	tests := []struct {
		name          string
		order         models.UserOrder
		setupMock     func(sqlmock.Sqlmock)
		expectedNames []string
		wantErr       bool
	}{
		{
			name:  "id descending",
			order: models.OrderByIDDesc,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow(2, "b", "b@example.com", "h", "user", fixedNow).
					AddRow(1, "a", "a@example.com", "h", "admin", fixedNow)
				mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id DESC LIMIT \? OFFSET \?`).
					WithArgs(10, 20).
					WillReturnRows(rows)
			},
			expectedNames: []string{"b", "a"},
		},
		{
			name:  "empty window",
			order: models.OrderByIDDesc,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id DESC LIMIT \? OFFSET \?`).
					WithArgs(10, 20).
					WillReturnRows(sqlmock.NewRows(userRowColumns))
			},
			expectedNames: []string{},
		},
		{
			name:      "unknown order is rejected",
			order:     models.UserOrder("password_hash; DROP TABLE users"),
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   true,
		},
		{
			name:  "scan error",
			order: models.OrderByIDDesc,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow("not-an-int", "a", "a@example.com", "h", "user", fixedNow)
				mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id DESC`).
					WillReturnRows(rows)
			},
			wantErr: true,
		},
		{
			name:  "query error",
			order: models.OrderByIDDesc,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id DESC`).
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			users, err := repo.List(context.Background(), tt.order, 10, 20)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				names := make([]string, 0, len(users))
				for _, u := range users {
					names = append(names, u.Username)
				}
				assert.Equal(t, tt.expectedNames, names)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
