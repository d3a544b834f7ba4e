package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	validator "github.com/go-playground/validator/v10"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ledgerhq/ledgercore/internal/core/services"
	"github.com/ledgerhq/ledgercore/internal/handlers"
	"github.com/ledgerhq/ledgercore/internal/middleware"
	"github.com/ledgerhq/ledgercore/internal/platform/config"
	pkgdatabase "github.com/ledgerhq/ledgercore/pkg/database"
	"github.com/ledgerhq/ledgercore/internal/repositories/database/pgsql"
)

// @title Ledger Core API
// @version 1.0
// @description Multi-tenant double-entry accounting ledger: periods, journals, posting, reversal, and hash-chain verification.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runDatabaseMigrations(logger, cfg)

	dbPool := setupDatabaseConnection(logger, cfg)
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	logger.Info("Initializing repositories and services...")
	repos := pgsql.NewRepositoryProvider(dbPool, logger)
	serviceContainer := services.NewServiceContainer(repos)
	idempotencyStore := middleware.NewIdempotencyStore(dbPool)
	logger.Info("Dependencies initialized.")

	r := setupGinEngine(logger, cfg)

	logger.Info("Registering custom validators...")
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("decimal_gtz", validateDecimalGreaterThanZero); err != nil {
			logger.Error("Failed to register 'decimal_gtz' validator", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("Could not get validator engine to register custom validators")
	}

	r.Use(apiRateLimit())

	handlers.RegisterRoutes(r, cfg, serviceContainer, idempotencyStore)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupDatabaseConnection initializes the PostgreSQL connection pool.
func setupDatabaseConnection(logger *slog.Logger, cfg *config.Config) *pgxpool.Pool {
	dbPool, err := pkgdatabase.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return dbPool
}

// setupGinEngine initializes and configures the Gin engine.
func setupGinEngine(logger *slog.Logger, cfg *config.Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key"}
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	return r
}

// apiRateLimit is the external "rate limiting" collaborator of spec §1,
// wired only at the outer transport boundary -- core services never
// consult it.
func apiRateLimit() gin.HandlerFunc {
	rate, _ := limiter.NewRateFromFormatted("100-M")
	store := memory.NewStore()
	return middleware.RateLimit(limiter.New(store, rate))
}

// runDatabaseMigrations applies pending schema migrations before the main
// pool is opened.
func runDatabaseMigrations(logger *slog.Logger, cfg *config.Config) {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error on close", slog.String("error", sourceErr.Error()))
		os.Exit(1)
	}
	if dbErr != nil {
		logger.Error("Migration database error on close", slog.String("error", dbErr.Error()))
		os.Exit(1)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
}

// validateDecimalGreaterThanZero implements validator.Func for decimal > 0.
func validateDecimalGreaterThanZero(fl validator.FieldLevel) bool {
	if field, ok := fl.Field().Interface().(decimal.Decimal); ok {
		return field.GreaterThan(decimal.Zero)
	}
	slog.Warn("Validator 'decimal_gtz' used on non-decimal.Decimal type", "fieldType", fl.Field().Type())
	return false
}
