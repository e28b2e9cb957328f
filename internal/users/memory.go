package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
)

// MemoryRepository is an in-process user data source backed by fixtures.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
	now   func() time.Time
}

// NewMemoryRepository seeds a repository with the given users.
func NewMemoryRepository(seed ...User) *MemoryRepository {
	m := &MemoryRepository{users: make(map[string]User, len(seed)), now: time.Now}
	for _, u := range seed {
		m.users[u.ID] = u.Clone()
	}
	return m
}

// ListUsers returns every user ordered by creation time.
func (m *MemoryRepository) ListUsers(context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, u.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// GetUser fetches one user.
func (m *MemoryRepository) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := u.Clone()
	return &out, nil
}

// CreateUser stores a pending user.
func (m *MemoryRepository) CreateUser(_ context.Context, input NewUser) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(input.Email))
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
	}
	user := User{
		ID:               uuid.NewString(),
		Email:            email,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Level:            input.Level,
		SubscriptionType: input.SubscriptionType,
		ParentID:         input.ParentID,
		Status:           StatusPending,
		CreatedAt:        m.now().UTC(),
	}
	if input.ProjectID != "" {
		user.ProjectIDs = []string{input.ProjectID}
	}
	m.users[user.ID] = user
	out := user.Clone()
	return &out, nil
}

// UpdateLevel changes the role level of a user.
func (m *MemoryRepository) UpdateLevel(_ context.Context, id string, level rbac.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.Level = level
	m.users[id] = u
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
