package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/catalyst/backend/internal/models"
)

// memoryUserRepository is an in-memory user store enforcing unique usernames and emails
type memoryUserRepository struct {
	mu     sync.Mutex
	users  []*models.User
	nextID int

	// batchMu serializes batch inserts the way the locked count does
	batchMu sync.Mutex

	// precheckBlind makes the Exists checks always report false to open the check-then-insert window
	precheckBlind bool

	countErr  error
	listErr   error
	createErr error
	batchErr  error
	existsErr error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{nextID: 1}
}

func (m *memoryUserRepository) add(username, email, hash string, role models.Role) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{ID: m.nextID, Username: username, Email: email, PasswordHash: hash, Role: role}
	m.nextID++
	m.users = append(m.users, user)
	return user
}

func (m *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *memoryUserRepository) CreateBatchIfCountAtMost(ctx context.Context, limit int, users []*models.User) (bool, error) {
	if m.batchErr != nil {
		return false, m.batchErr
	}
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	m.mu.Lock()
	total := len(m.users)
	m.mu.Unlock()
	if total > limit {
		return false, nil
	}
	for _, user := range users {
		if err := m.Create(ctx, user); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.precheckBlind {
		return false, nil
	}
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.precheckBlind {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUserRepository) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memoryUserRepository) List(ctx context.Context, order models.UserOrder, limit, offset int) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if order != models.OrderByIDDesc {
		return nil, errors.New("unexpected order")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		sorted = append(sorted, *u)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if offset >= len(sorted) {
		return []models.User{}, nil
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end], nil
}

// mockFileStore is a mock implementation of FileStore
type mockFileStore struct {
	url      string
	err      error
	folder   string
	filename string
	content  string
}

func (m *mockFileStore) Save(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	m.filename = filename
	m.folder = folder
	data, _ := io.ReadAll(r)
	m.content = string(data)
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

// mockEmailSender is a mock implementation of EmailSender
type mockEmailSender struct {
	err     error
	to      string
	subject string
	sent    int
}

func (m *mockEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.to = to
	m.subject = subject
	if m.err != nil {
		return m.err
	}
	m.sent++
	return nil
}
