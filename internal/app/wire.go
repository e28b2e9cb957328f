package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/synergy-shm/synergy/internal/auth"
	"github.com/synergy-shm/synergy/internal/console"
	"github.com/synergy-shm/synergy/internal/guard"
	"github.com/synergy-shm/synergy/internal/menu"
	"github.com/synergy-shm/synergy/internal/observability"
	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
	"github.com/synergy-shm/synergy/internal/users"
	"github.com/synergy-shm/synergy/jobs"
)

// SessionCookie names the browser session cookie.
const SessionCookie = "synergy_session"

// Dependencies are the external resources the HTTP service runs on. Pool is
// only required for the postgres data source; Queue and Inspector are
// optional.
type Dependencies struct {
	Config    *Config
	Logger    *slog.Logger
	Redis     *redis.Client
	Pool      *pgxpool.Pool
	Queue     console.InvitationQueue
	Inspector jobs.QueueInspector
	Metrics   *observability.Metrics
}

// NewHandler assembles repositories, services and handlers into the router.
func NewHandler(deps Dependencies) (http.Handler, error) {
	cfg, logger := deps.Config, deps.Logger
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if deps.Redis == nil {
		return nil, errors.New("app: redis client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		userRepo    users.Repository
		projectRepo projects.Repository
		accounts    auth.AccountRepository
		audit       shared.AuditRecorder = shared.NopAudit{}
	)
	switch cfg.DataSource {
	case DataSourcePostgres:
		if deps.Pool == nil {
			return nil, errors.New("app: postgres data source needs a pool")
		}
		userRepo = users.NewPGRepository(deps.Pool)
		projectRepo = projects.NewPGRepository(deps.Pool)
		accounts = auth.NewPGAccounts(deps.Pool)
		audit = shared.NewAuditLogger(deps.Pool)
	default:
		fixtures := users.Fixtures()
		userRepo = users.NewMemoryRepository(fixtures...)
		projectRepo = projects.NewMemoryRepository(projects.Fixtures()...)
		if cfg.AuthBackend == AuthBackendLocal {
			fixtureAccounts, err := FixtureAccounts(fixtures, cfg.FixturePassword)
			if err != nil {
				return nil, err
			}
			accounts = fixtureAccounts
		}
	}

	backend, err := newBackend(cfg, accounts)
	if err != nil {
		return nil, err
	}

	sessions := shared.NewSessionManager(deps.Redis, SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)

	table, err := guard.NewTable(guard.DefaultRoutes())
	if err != nil {
		return nil, err
	}
	routeGuard := guard.New(table, logger, deps.Metrics)

	service := console.NewService(userRepo, projectRepo, console.Options{
		Queue:   deps.Queue,
		Audit:   audit,
		Lineage: rbac.LineagePolicy{Enforce: cfg.LineageEnforce},
		Logger:  logger,
	})

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,
		AuthFactory: &auth.Factory{
			Backend:  backend,
			Sessions: sessions,
			Policy:   rbac.DefaultPolicy,
			Logger:   logger,
			LockTTL:  cfg.LoginLockTTL,
		},
		AuthHandler:    auth.NewHandler(logger, csrf, audit, deps.Metrics),
		Guard:          routeGuard,
		ConsoleHandler: console.NewHandler(logger, service, auth.PrincipalFromRequest),
		MenuHandler:    menu.NewHandler(auth.PrincipalFromRequest),
		PolicyHandler:  rbac.NewPolicyHandler(rbac.DefaultPolicy),
		JobHandler:     jobs.NewHandler(deps.Inspector, logger),
		Metrics:        deps.Metrics,
	}), nil
}

func newBackend(cfg *Config, accounts auth.AccountRepository) (auth.Backend, error) {
	switch cfg.AuthBackend {
	case AuthBackendHTTP:
		return auth.NewHTTPBackend(cfg.AuthBackendURL, cfg.AuthBackendTimeout), nil
	case AuthBackendLocal:
		if accounts == nil {
			return nil, errors.New("app: local auth backend needs an account source")
		}
		issuer, err := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL, 0)
		if err != nil {
			return nil, err
		}
		return auth.NewLocalBackend(accounts, issuer), nil
	default:
		return nil, fmt.Errorf("app: unknown auth backend %q", cfg.AuthBackend)
	}
}

// FixtureAccounts gives every fixture user the same password.
func FixtureAccounts(list []users.User, password string) (*auth.MemoryAccounts, error) {
	if password == "" {
		return nil, errors.New("app: fixture password must not be empty")
	}
	hash, err := auth.HashPassword(password, 0)
	if err != nil {
		return nil, err
	}
	accounts := auth.NewMemoryAccounts()
	for _, u := range list {
		accounts.Put(auth.Account{Principal: u.Principal(), PasswordHash: hash})
	}
	return accounts, nil
}
