package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/warden/internal/auth"
	"github.com/BradenHooton/warden/internal/background"
	"github.com/BradenHooton/warden/internal/config"
	"github.com/BradenHooton/warden/internal/database"
	"github.com/BradenHooton/warden/internal/handlers"
	middlewareCustom "github.com/BradenHooton/warden/internal/middleware"
	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/repositories"
	"github.com/BradenHooton/warden/internal/routes"
	"github.com/BradenHooton/warden/internal/services"
	"github.com/BradenHooton/warden/internal/storage"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("storage", cfg.Storage.Backend),
	)

	// Initialize storage
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.String("backend", cfg.Storage.Backend), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(store)
	auditRepo := repositories.NewAuditLogRepository(store)

	// Notifications
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize notifier", slog.Any("error", err))
		os.Exit(1)
	}

	// Role save confirmation
	var saver services.RoleSaver = services.NoopSaver{}
	if cfg.Roles.SaveSimulation {
		saver = services.NewSimulatedSaver(cfg.Roles.SaveDelay, cfg.Roles.SaveFailureRate)
		logger.Info("simulated role saves enabled",
			slog.Duration("delay", cfg.Roles.SaveDelay),
			slog.Float64("failure_rate", cfg.Roles.SaveFailureRate),
		)
	}

	// Initialize services
	auditService := services.NewAuditService(auditRepo, cfg.Audit.Cap, cfg.Audit.Scope, logger)
	userService := services.NewUserService(userRepo, auditService, notifier, cfg.Server.PageSize, logger)
	roleService := services.NewRoleService(userRepo, auditService, saver, notifier, cfg.Roles.UndoWindow, logger)
	adminService := services.NewAdminService(userRepo, auditRepo, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userService, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Handlers{
		Health:      handlers.NewHealthHandler(store, cfg.Storage.Backend, logger),
		Users:       handlers.NewUserHandler(userService),
		Roles:       handlers.NewRoleHandler(roleService),
		Audit:       handlers.NewAuditHandler(auditService, userService),
		Permissions: handlers.NewPermissionHandler(),
		Admin:       handlers.NewAdminHandler(adminService),
	}, tokenManager, routes.Limits{
		Read:  middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.RateLimitPerMinute, IPConfig: ipConfig},
		Write: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.WriteRateLimit, IPConfig: ipConfig},
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	cleanupManager := background.NewCleanupManager(roleService, logger, cfg.Roles.UndoWindow)
	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// openStore builds the configured storage backend. The returned func
// releases its connections.
func openStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Storage.Backend {
	case storage.BackendFile:
		store, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file storage", slog.String("dir", cfg.Storage.DataDir))
		return store, func() {}, nil

	case storage.BackendRedis:
		store, err := storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis storage", slog.String("addr", cfg.Storage.RedisAddr))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close redis client", slog.Any("error", err))
			}
		}, nil

	case storage.BackendPostgres:
		db, err := database.Open(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db.KVStore(cfg.Database.KVTable), db.Close, nil

	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func newNotifier(cfg *config.Config, logger *slog.Logger) (services.Notifier, error) {
	if cfg.Notify.Provider != "ses" {
		return services.NoopNotifier{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return services.NewSESNotifier(ctx, cfg.Notify.AWSRegion, cfg.Notify.EmailFrom, logger)
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, users *services.UserService, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Admin"
	}

	_, err = users.CreateUser(ctx, services.CreateUserInput{
		Name:     name,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
