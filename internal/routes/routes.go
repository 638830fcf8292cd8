package routes

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nos-web/budget/internal/auth"
	"github.com/nos-web/budget/internal/budget"
	"github.com/nos-web/budget/internal/config"
	"github.com/nos-web/budget/internal/identity"
	"github.com/nos-web/budget/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes. DB and SQL
// are alternative persistent backends; Cache is optional.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	SQL    *sql.DB
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if !d.Cfg.IsDev() && d.DB == nil && d.SQL == nil {
		return fmt.Errorf("persistent storage is required when APP_ENV=%s", d.Cfg.Env)
	}

	// Middlewares
	// recover sits inside Audit so recovered panics are logged like any other 500.
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(recover.New())

	RegisterHealthRoutes(app, d)

	// Services and handlers
	var (
		identityRepo identity.Repository
		budgetStore  budget.Store
	)
	switch {
	case d.DB != nil:
		identityRepo = identity.NewPostgresRepository(d.DB)
		budgetStore = budget.NewPostgresStore(d.DB)
	case d.SQL != nil:
		identityRepo = identity.NewSQLiteRepository(d.SQL)
		budgetStore = budget.NewSQLiteStore(d.SQL)
	default:
		identityRepo = identity.NewMemoryRepository()
		budgetStore = budget.NewMemoryStore()
	}

	var sessionStore auth.SessionStore
	if d.Cache != nil {
		sessionStore = auth.NewRedisStore(d.Cache)
	} else {
		sessionStore = auth.NewMemoryStore()
	}

	identitySvc := identity.NewService(identityRepo, d.Cfg.BcryptCost)
	authSvc := auth.NewService(d.Cfg, sessionStore)
	budgetSvc := budget.NewService(budgetStore, identitySvc, d.Logger)

	authHandler := auth.NewHandler(identitySvc, authSvc, d.Logger)
	budgetHandler := budget.NewHandler(budgetSvc)

	// Public routes
	RegisterUserRoutes(app, identitySvc, budgetSvc, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit), d.Logger)

	// Protected routes
	RegisterBudgetRoutes(app, budgetHandler,
		middleware.Authenticate(authSvc),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)

	return nil
}
