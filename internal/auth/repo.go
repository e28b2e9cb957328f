package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
)

// Account is a principal plus the password hash used by the local backend.
type Account struct {
	Principal    rbac.Principal
	PasswordHash string
}

// AccountRepository looks up accounts for the local backend.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
}

// PGAccounts reads accounts from the users table.
type PGAccounts struct {
	pool *pgxpool.Pool
}

// NewPGAccounts constructs a PostgreSQL account repository.
func NewPGAccounts(pool *pgxpool.Pool) *PGAccounts {
	return &PGAccounts{pool: pool}
}

const accountColumns = `id::text, email, first_name, last_name, role_level, subscription_type,
	COALESCE(parent_user_id::text, ''), is_active, COALESCE(password_hash, '')`

// FindByEmail fetches an account by case-insensitive email.
func (r *PGAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanAccount(row)
}

// FindByID fetches an account by id.
func (r *PGAccounts) FindByID(ctx context.Context, id string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id::text = $1`, id)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	p := &acc.Principal
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Level, &p.SubscriptionType,
		&p.ParentID, &p.IsActive, &acc.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// MemoryAccounts is an in-process account directory used for fixtures and tests.
type MemoryAccounts struct {
	mu      sync.RWMutex
	byEmail map[string]*Account
	byID    map[string]*Account
}

// NewMemoryAccounts indexes the given accounts.
func NewMemoryAccounts(accounts ...Account) *MemoryAccounts {
	m := &MemoryAccounts{
		byEmail: make(map[string]*Account, len(accounts)),
		byID:    make(map[string]*Account, len(accounts)),
	}
	for i := range accounts {
		m.Put(accounts[i])
	}
	return m
}

// Put adds or replaces an account.
func (m *MemoryAccounts) Put(acc Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := acc
	m.byEmail[strings.ToLower(acc.Principal.Email)] = &stored
	m.byID[acc.Principal.ID] = &stored
}

// FindByEmail implements AccountRepository.
func (m *MemoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := *acc
	return &out, nil
}

// FindByID implements AccountRepository.
func (m *MemoryAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.byID[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := *acc
	return &out, nil
}

var (
	_ AccountRepository = (*PGAccounts)(nil)
	_ AccountRepository = (*MemoryAccounts)(nil)
)
