package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bornholm/go-x/slogx"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gurkanbulca/tasktracker/internal/config"
	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/middleware"
	"github.com/gurkanbulca/tasktracker/internal/repository"
	"github.com/gurkanbulca/tasktracker/internal/service"
	"github.com/gurkanbulca/tasktracker/internal/web"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.InfoContext(ctx, "no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "could not load config", slogx.Error(err))
		os.Exit(1)
	}

	if err := cfg.ValidateConfig(); err != nil {
		slog.ErrorContext(ctx, "invalid configuration", slogx.Error(err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		slog.ErrorContext(ctx, "server stopped with error", slogx.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logger.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(slogx.ContextHandler{Handler: handler})
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "could not close database", slogx.Error(err))
		}
	}()

	if cfg.Server.AutoMigrate {
		slog.InfoContext(ctx, "running auto migration")
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	tokenManager := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)

	users := repository.NewUserRepository(db)
	cachedUsers := repository.NewCachedUserStore(users, cfg.UserCache.Size, cfg.UserCache.TTL)
	taskRepo := repository.NewTaskRepository(db)

	authService := service.NewAuthService(
		users,
		repository.NewTokenBlacklist(db),
		tokenManager,
		auth.NewPasswordManager(cfg.PasswordOptions()...),
		service.NewSecurityLogger(logger),
	)
	taskService := service.NewTaskService(taskRepo)

	sessionStore := middleware.NewSessionStore(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.Secure)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	var trustedProxies []string
	if cfg.Server.TrustProxy {
		trustedProxies = []string{"0.0.0.0/0", "::/0"}
	}

	server, err := web.NewServer(
		taskService,
		authService,
		middleware.NewBearerAuthenticator(tokenManager, cachedUsers),
		middleware.NewSessionAuthenticator(sessionStore, cfg.Session.Name, cachedUsers),
		web.WithAuthRateLimit(middleware.RateLimit(
			cfg.Server.TrustProxy,
			cfg.RateLimit.Interval,
			cfg.RateLimit.MaxBurst,
			cfg.RateLimit.CacheSize,
			cfg.RateLimit.CacheTTL,
		)),
		web.WithHealthCheck(db.PingContext),
		web.WithTrustedProxies(trustedProxies...),
	)
	if err != nil {
		return err
	}

	var handler http.Handler = server.Handler()
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)
	handler = sloghttp.NewWithConfig(logger.WithGroup("http"), sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithUserAgent:    true,
		WithRequestID:    true,
	})(handler)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddress,
		Handler: handler,
	}

	grpcServer, grpcListener, err := newHealthServer(cfg)
	if err != nil {
		return err
	}

	go service.NewMaintenance(authService, taskRepo).Run(ctx, cfg.Server.CleanupInterval)

	errs := make(chan error, 2)

	go func() {
		slog.InfoContext(ctx, "grpc health server listening", slog.String("address", cfg.Server.GRPCAddress))
		if err := grpcServer.Serve(grpcListener); err != nil {
			errs <- err
		}
	}()

	go func() {
		slog.InfoContext(ctx, "http server listening", slog.String("address", cfg.Server.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
		slog.ErrorContext(ctx, "server failed", slogx.Error(serveErr))
	}

	slog.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "server shutdown complete")

	return serveErr
}

// newHealthServer exposes the standard gRPC health service for orchestrators.
func newHealthServer(cfg *config.Config) (*grpc.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", cfg.Server.GRPCAddress)
	if err != nil {
		return nil, nil, err
	}

	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Server.EnableReflection {
		reflection.Register(grpcServer)
		slog.Info("grpc reflection enabled (disable in production)")
	}

	return grpcServer, listener, nil
}
