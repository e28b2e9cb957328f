package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/rbac"
)

type fakeBackend struct {
	mu        sync.Mutex
	login     func(ctx context.Context, creds Credentials) (*Grant, error)
	refresh   func(ctx context.Context, token string) (*Grant, error)
	logoutErr error
	logouts   []string
}

func (f *fakeBackend) Login(ctx context.Context, creds Credentials) (*Grant, error) {
	return f.login(ctx, creds)
}

func (f *fakeBackend) Refresh(ctx context.Context, token string) (*Grant, error) {
	if f.refresh == nil {
		return nil, ErrInvalidCredentials
	}
	return f.refresh(ctx, token)
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	return f.logoutErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func grantFor(t *testing.T, level rbac.Level, exp time.Time) *Grant {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "role": int(level), "exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return &Grant{
		Principal:    rbac.Principal{ID: "user-1", Email: "user@example.it", FirstName: "Mario", LastName: "Conti", Level: level, IsActive: true},
		Token:        token,
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
	}
}

func staticBackend(grant *Grant) *fakeBackend {
	return &fakeBackend{login: func(context.Context, Credentials) (*Grant, error) {
		g := *grant
		return &g, nil
	}}
}

var creds = Credentials{Email: "user@example.it", Password: "password"}

func TestLoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	grant := grantFor(t, rbac.LevelUserPlus, time.Now().Add(time.Hour))
	provider := NewProvider(staticBackend(grant), store, WithLogger(quietLogger()))

	principal, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.True(t, provider.IsAuthenticated())
	assert.False(t, provider.IsTokenExpired())
	assert.False(t, provider.Loading())
	assert.Equal(t, rbac.DashboardPath, provider.DashboardRoute())

	values := store.Values()
	assert.Equal(t, grant.Token, values[KeyToken])
	assert.Equal(t, "refresh-1", values[KeyRefreshToken])
	assert.Contains(t, values[KeyPrincipal], `"roleLevel":3`)

	restored := NewProvider(staticBackend(grant), store, WithLogger(quietLogger()))
	restored.Initialize(ctx)
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, principal, restored.Principal())
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set("unrelated", "kept")
	before := store.Values()

	grant := grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour))
	backend := staticBackend(grant)
	provider := NewProvider(backend, store, WithLogger(quietLogger()))

	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	provider.Logout(ctx)

	assert.Equal(t, before, store.Values())
	assert.False(t, provider.IsAuthenticated())
	assert.Nil(t, provider.Principal())
	assert.Equal(t, []string{grant.Token}, backend.logouts)
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	backend := &fakeBackend{login: func(context.Context, Credentials) (*Grant, error) {
		return nil, ErrInvalidCredentials
	}}
	provider := NewProvider(backend, store, WithLogger(quietLogger()))

	_, err := provider.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, provider.IsAuthenticated())
	assert.False(t, provider.Loading())
	assert.Empty(t, store.Values())
}

func TestLoginTransportFailureIsUnavailable(t *testing.T) {
	backend := &fakeBackend{login: func(context.Context, Credentials) (*Grant, error) {
		return nil, errors.New("connection refused")
	}}
	provider := NewProvider(backend, NewMemoryStore(), WithLogger(quietLogger()))

	_, err := provider.Login(context.Background(), creds)
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
}

func TestLoginRejectsIncompleteGrant(t *testing.T) {
	grant := grantFor(t, rbac.Level(9), time.Now().Add(time.Hour))
	provider := NewProvider(staticBackend(grant), NewMemoryStore(), WithLogger(quietLogger()))

	_, err := provider.Login(context.Background(), creds)
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
	assert.False(t, provider.IsAuthenticated())
}

func TestConcurrentLoginIsRejected(t *testing.T) {
	ctx := context.Background()
	grant := grantFor(t, rbac.LevelAdmin, time.Now().Add(time.Hour))
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{login: func(context.Context, Credentials) (*Grant, error) {
		close(entered)
		<-release
		g := *grant
		return &g, nil
	}}
	provider := NewProvider(backend, NewMemoryStore(), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() {
		_, err := provider.Login(ctx, creds)
		done <- err
	}()
	<-entered
	assert.True(t, provider.Loading())

	_, err := provider.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrLoginInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, provider.Loading())
	assert.True(t, provider.HasRole(rbac.LevelAdmin))
}

func TestInitializeClearsCorruptState(t *testing.T) {
	cases := map[string]string{
		"not json":      "{broken",
		"invalid level": `{"id":"u1","roleLevel":7}`,
		"missing id":    `{"roleLevel":2}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore()
			store.Set(KeyToken, "a.b.c")
			store.Set(KeyRefreshToken, "r")
			store.Set(KeyPrincipal, raw)
			store.Set(KeyRedirect, "/tools")

			provider := NewProvider(&fakeBackend{}, store, WithLogger(quietLogger()))
			provider.Initialize(context.Background())

			assert.False(t, provider.IsAuthenticated())
			assert.Equal(t, map[string]string{KeyRedirect: "/tools"}, store.Values())
		})
	}
}

func TestInitializeWithPartialStateStaysAnonymous(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyToken, "a.b.c")
	provider := NewProvider(&fakeBackend{}, store, WithLogger(quietLogger()))
	provider.Initialize(context.Background())

	assert.False(t, provider.IsAuthenticated())
	assert.Equal(t, rbac.LoginRoute, provider.DashboardRoute())
}

func TestExpiredTokenIsReported(t *testing.T) {
	grant := grantFor(t, rbac.LevelUser, time.Now().Add(-time.Minute))
	provider := NewProvider(staticBackend(grant), NewMemoryStore(), WithLogger(quietLogger()))

	_, err := provider.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.True(t, provider.IsAuthenticated())
	assert.True(t, provider.IsTokenExpired())
}

func TestClockControlsExpiry(t *testing.T) {
	exp := time.Unix(2_000_000_000, 0)
	grant := grantFor(t, rbac.LevelUser, exp)
	now := exp.Add(-time.Second)
	provider := NewProvider(staticBackend(grant), NewMemoryStore(),
		WithLogger(quietLogger()), WithClock(func() time.Time { return now }))

	_, err := provider.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.False(t, provider.IsTokenExpired())

	now = exp.Add(time.Second)
	assert.True(t, provider.IsTokenExpired())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	backend := staticBackend(grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour)))
	backend.logoutErr = ErrCollaboratorUnavailable
	provider := NewProvider(backend, store, WithLogger(quietLogger()))

	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)
	provider.Logout(ctx)

	assert.False(t, provider.IsAuthenticated())
	assert.Empty(t, store.Values())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	first := grantFor(t, rbac.LevelUserPlus, time.Now().Add(time.Minute))
	second := grantFor(t, rbac.LevelUserPlus, time.Now().Add(2*time.Hour))
	second.RefreshToken = ""

	backend := staticBackend(first)
	var seen string
	backend.refresh = func(_ context.Context, token string) (*Grant, error) {
		seen = token
		g := *second
		return &g, nil
	}
	store := NewMemoryStore()
	provider := NewProvider(backend, store, WithLogger(quietLogger()))
	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)

	require.NoError(t, provider.Refresh(ctx))
	assert.Equal(t, "refresh-1", seen)
	assert.Equal(t, second.Token, store.Values()[KeyToken])
	assert.Equal(t, "refresh-1", store.Values()[KeyRefreshToken], "refresh token kept when backend omits it")
}

func TestRefreshFailureLogsOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	backend := staticBackend(grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour)))
	provider := NewProvider(backend, store, WithLogger(quietLogger()))
	_, err := provider.Login(ctx, creds)
	require.NoError(t, err)

	err = provider.Refresh(ctx)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, provider.IsAuthenticated())
	assert.Empty(t, store.Values())
}

func TestRefreshWithoutTokenLogsOut(t *testing.T) {
	provider := NewProvider(&fakeBackend{}, NewMemoryStore(), WithLogger(quietLogger()))
	err := provider.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.False(t, provider.IsAuthenticated())
}

func TestHasRoleAndCanAccess(t *testing.T) {
	anonymous := NewProvider(&fakeBackend{}, NewMemoryStore(), WithLogger(quietLogger()))
	for _, level := range rbac.Levels() {
		assert.False(t, anonymous.HasRole(level))
	}
	assert.False(t, anonymous.CanAccess(rbac.ResourceProjects, rbac.ActionRead))

	cases := []struct {
		level    rbac.Level
		resource string
		want     bool
	}{
		{rbac.LevelSuperAdmin, rbac.ResourceSystem, true},
		{rbac.LevelSuperAdmin, "anything", true},
		{rbac.LevelAdmin, rbac.ResourceUsers, true},
		{rbac.LevelAdmin, rbac.ResourceSystem, false},
		{rbac.LevelUserPlus, rbac.ResourceAlgorithms, true},
		{rbac.LevelUserPlus, rbac.ResourceUsers, false},
		{rbac.LevelUser, rbac.ResourceSensors, false},
		{rbac.LevelUser, "unknown", true},
	}
	for _, tc := range cases {
		provider := NewProvider(staticBackend(grantFor(t, tc.level, time.Now().Add(time.Hour))), NewMemoryStore(), WithLogger(quietLogger()))
		_, err := provider.Login(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, tc.want, provider.CanAccess(tc.resource, rbac.ActionRead), "level %d resource %s", tc.level, tc.resource)
		assert.True(t, provider.HasRole(tc.level))
		assert.True(t, provider.HasRole(rbac.LevelUser))
	}
}

func TestRedirectIsConsumedOnce(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider(&fakeBackend{}, NewMemoryStore(), WithLogger(quietLogger()))
	require.NoError(t, provider.SetRedirect(ctx, "/projects/42/building"))

	target, err := provider.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/projects/42/building", target)

	target, err = provider.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Empty(t, target)
}

func TestPrincipalIsACopy(t *testing.T) {
	provider := NewProvider(staticBackend(grantFor(t, rbac.LevelUser, time.Now().Add(time.Hour))), NewMemoryStore(), WithLogger(quietLogger()))
	_, err := provider.Login(context.Background(), creds)
	require.NoError(t, err)

	p := provider.Principal()
	p.Level = rbac.LevelSuperAdmin
	assert.False(t, provider.HasRole(rbac.LevelSuperAdmin))
}
