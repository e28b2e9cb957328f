package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/synergy-shm/synergy/internal/shared"
)

// Keys under which identity state is persisted.
const (
	KeyToken        = "synergy_token"
	KeyRefreshToken = "synergy_refresh_token"
	KeyPrincipal    = "synergy_user"
	KeyRedirect     = "synergy_redirect_url"
)

// Snapshot is the persisted form of a session. Principal holds the encoded
// principal record exactly as stored.
type Snapshot struct {
	Token        string
	RefreshToken string
	Principal    string
}

// Store persists identity state between requests. Save writes all keys of a
// snapshot together.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
	SetRedirect(ctx context.Context, path string) error
	TakeRedirect(ctx context.Context) (string, error)
}

// Locker is implemented by stores that can serialize logins across
// processes sharing the same session.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// MemoryStore keeps identity state in a map.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Token:        m.values[KeyToken],
		RefreshToken: m.values[KeyRefreshToken],
		Principal:    m.values[KeyPrincipal],
	}, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	setOrDelete(m.values, KeyToken, snap.Token)
	setOrDelete(m.values, KeyRefreshToken, snap.RefreshToken)
	setOrDelete(m.values, KeyPrincipal, snap.Principal)
	return nil
}

// Clear implements Store. The redirect target survives.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyToken)
	delete(m.values, KeyRefreshToken)
	delete(m.values, KeyPrincipal)
	return nil
}

// SetRedirect implements Store.
func (m *MemoryStore) SetRedirect(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	setOrDelete(m.values, KeyRedirect, path)
	return nil
}

// TakeRedirect implements Store.
func (m *MemoryStore) TakeRedirect(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := m.values[KeyRedirect]
	delete(m.values, KeyRedirect)
	return path, nil
}

// Set writes a raw key. Tests use it to plant corrupt state.
func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Values returns a copy of every stored key.
func (m *MemoryStore) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func setOrDelete(values map[string]string, key, value string) {
	if value == "" {
		delete(values, key)
		return
	}
	values[key] = value
}

const loginLockName = "login"

// SessionStore persists identity state inside a Redis-backed session.
// Changes are flushed when the session is committed at the end of the
// request.
type SessionStore struct {
	manager *shared.SessionManager
	sess    *shared.Session
	lockTTL time.Duration
	lockID  string
}

// NewSessionStore wraps sess.
func NewSessionStore(manager *shared.SessionManager, sess *shared.Session, lockTTL time.Duration) *SessionStore {
	if lockTTL <= 0 {
		lockTTL = 15 * time.Second
	}
	return &SessionStore{manager: manager, sess: sess, lockTTL: lockTTL}
}

// Load implements Store.
func (s *SessionStore) Load(context.Context) (Snapshot, error) {
	if s.sess.Recovered() {
		return Snapshot{}, ErrStorageCorrupt
	}
	return Snapshot{
		Token:        s.sess.Get(KeyToken),
		RefreshToken: s.sess.Get(KeyRefreshToken),
		Principal:    s.sess.Get(KeyPrincipal),
	}, nil
}

// Save implements Store. A save that authenticates an anonymous session or
// switches it to another principal rotates the session id.
func (s *SessionStore) Save(_ context.Context, snap Snapshot) error {
	switch {
	case snap.Token == "":
	case s.sess.Get(KeyToken) == "":
		s.sess.Renew()
	case principalID(s.sess.Get(KeyPrincipal)) != principalID(snap.Principal):
		s.sess.Renew()
	}
	writeOrDelete(s.sess, KeyToken, snap.Token)
	writeOrDelete(s.sess, KeyRefreshToken, snap.RefreshToken)
	writeOrDelete(s.sess, KeyPrincipal, snap.Principal)
	return nil
}

// Clear implements Store.
func (s *SessionStore) Clear(context.Context) error {
	s.sess.Delete(KeyToken, KeyRefreshToken, KeyPrincipal)
	return nil
}

// SetRedirect implements Store.
func (s *SessionStore) SetRedirect(_ context.Context, path string) error {
	writeOrDelete(s.sess, KeyRedirect, path)
	return nil
}

// TakeRedirect implements Store.
func (s *SessionStore) TakeRedirect(context.Context) (string, error) {
	path := s.sess.Get(KeyRedirect)
	if path != "" {
		s.sess.Delete(KeyRedirect)
	}
	return path, nil
}

// TryLock implements Locker using a Redis key scoped to the session.
func (s *SessionStore) TryLock(ctx context.Context) (bool, error) {
	id := s.sess.ID
	ok, err := s.manager.TryLock(ctx, id, loginLockName, s.lockTTL)
	if err != nil || !ok {
		return ok, err
	}
	s.lockID = id
	return true, nil
}

// Unlock implements Locker.
func (s *SessionStore) Unlock(ctx context.Context) error {
	if s.lockID == "" {
		return nil
	}
	id := s.lockID
	s.lockID = ""
	return s.manager.Unlock(ctx, id, loginLockName)
}

func writeOrDelete(sess *shared.Session, key, value string) {
	if value == "" {
		sess.Delete(key)
		return
	}
	sess.Set(key, value)
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Store  = (*SessionStore)(nil)
	_ Locker = (*SessionStore)(nil)
)

func principalID(encoded string) string {
	var p struct {
		ID string `json:"id"`
	}
	if json.Unmarshal([]byte(encoded), &p) != nil {
		return ""
	}
	return p.ID
}
