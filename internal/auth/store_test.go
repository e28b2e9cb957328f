package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
)

const testCookie = "synergy_session"

func newSessions(t *testing.T) (*miniredis.Miniredis, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, shared.NewSessionManager(client, testCookie, time.Hour, false)
}

func loadSession(t *testing.T, mgr *shared.SessionManager, cookie *http.Cookie) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	sess, err := mgr.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func commit(t *testing.T, mgr *shared.SessionManager, sess *shared.Session) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, mgr.Commit(context.Background(), rr, sess))
	for _, c := range rr.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatal("session cookie not written")
	return nil
}

func TestSessionStoreSurvivesRequests(t *testing.T) {
	ctx := context.Background()
	_, mgr := newSessions(t)
	grant := grantFor(t, rbac.LevelAdmin, time.Now().Add(time.Hour))

	sess := loadSession(t, mgr, nil)
	anonymousID := sess.ID
	provider := NewProvider(staticBackend(grant), NewSessionStore(mgr, sess, time.Second), WithLogger(quietLogger()))
	provider.Initialize(ctx)
	require.False(t, provider.IsAuthenticated())
	require.NoError(t, provider.SetRedirect(ctx, "/admin/projects"))

	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	cookie := commit(t, mgr, sess)
	assert.NotEqual(t, anonymousID, cookie.Value, "login rotates the session id")

	next := loadSession(t, mgr, cookie)
	restored := NewProvider(staticBackend(grant), NewSessionStore(mgr, next, time.Second), WithLogger(quietLogger()))
	restored.Initialize(ctx)
	assert.True(t, restored.IsAuthenticated())
	assert.True(t, restored.HasRole(rbac.LevelAdmin))

	target, err := restored.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/admin/projects", target)

	restored.Logout(ctx)
	cookie = commit(t, mgr, next)

	final := loadSession(t, mgr, cookie)
	assert.Empty(t, final.Get(KeyToken))
	assert.Empty(t, final.Get(KeyPrincipal))
	assert.Empty(t, final.Get(KeyRedirect))
}

func TestSessionStoreLockRejectsParallelLogin(t *testing.T) {
	ctx := context.Background()
	mr, mgr := newSessions(t)
	grant := grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour))

	sess := loadSession(t, mgr, nil)
	lockKey := shared.SessionLockKey(sess.ID, loginLockName)
	holder := NewSessionStore(mgr, sess, time.Minute)
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(lockKey))

	provider := NewProvider(staticBackend(grant), NewSessionStore(mgr, sess, time.Minute), WithLogger(quietLogger()))
	_, err = provider.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrLoginInProgress)
	assert.False(t, provider.Loading())

	require.NoError(t, holder.Unlock(ctx))
	_, err = provider.Login(ctx, creds)
	require.NoError(t, err)
	assert.False(t, mr.Exists(lockKey), "lock released after login")
}

func TestSessionStoreLockExpires(t *testing.T) {
	ctx := context.Background()
	mr, mgr := newSessions(t)
	sess := loadSession(t, mgr, nil)

	first := NewSessionStore(mgr, sess, time.Second)
	ok, err := first.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	second := NewSessionStore(mgr, sess, time.Second)
	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCorruptSessionRecordIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mr, mgr := newSessions(t)
	grant := grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour))

	sess := loadSession(t, mgr, nil)
	provider := NewProvider(staticBackend(grant), NewSessionStore(mgr, sess, time.Second), WithLogger(quietLogger()))
	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	cookie := commit(t, mgr, sess)

	require.NoError(t, mr.Set("session:"+cookie.Value, "{not json"))

	next := loadSession(t, mgr, cookie)
	assert.True(t, next.Recovered())
	restored := NewProvider(staticBackend(grant), NewSessionStore(mgr, next, time.Second), WithLogger(quietLogger()))
	restored.Initialize(ctx)
	assert.False(t, restored.IsAuthenticated())
	assert.False(t, mr.Exists("session:"+cookie.Value))
}

func TestMemoryStoreClearKeepsRedirect(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Snapshot{Token: "t", RefreshToken: "r", Principal: "{}"}))
	require.NoError(t, store.SetRedirect(ctx, "/tools"))
	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, map[string]string{KeyRedirect: "/tools"}, store.Values())
}

func TestSessionStoreRotatesOnPrincipalSwitch(t *testing.T) {
	ctx := context.Background()
	_, mgr := newSessions(t)
	first := grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour))

	sess := loadSession(t, mgr, nil)
	provider := NewProvider(staticBackend(first), NewSessionStore(mgr, sess, time.Second), WithLogger(quietLogger()))
	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	cookie := commit(t, mgr, sess)

	same := loadSession(t, mgr, cookie)
	require.NoError(t, NewSessionStore(mgr, same, time.Second).Save(ctx, Snapshot{
		Token: "token-2", RefreshToken: "refresh-2", Principal: same.Get(KeyPrincipal),
	}))
	refreshed := commit(t, mgr, same)
	assert.Equal(t, cookie.Value, refreshed.Value, "same principal keeps the session id")

	second := grantFor(t, rbac.LevelSuperAdmin, time.Now().Add(time.Hour))
	second.Principal.ID = "user-2"
	next := loadSession(t, mgr, refreshed)
	switched := NewProvider(staticBackend(second), NewSessionStore(mgr, next, time.Second), WithLogger(quietLogger()))
	switched.Initialize(ctx)
	require.True(t, switched.IsAuthenticated())
	_, err = switched.Login(ctx, creds)
	require.NoError(t, err)
	rotated := commit(t, mgr, next)
	assert.NotEqual(t, refreshed.Value, rotated.Value, "switching principal rotates the session id")
	assert.Empty(t, loadSession(t, mgr, refreshed).Get(KeyToken), "old session record is dropped")
}
