package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/go-users/internal/config"
	"github.com/mateusmacedo/go-users/internal/users"
	usersDomain "github.com/mateusmacedo/go-users/internal/users/domain"
	usersInfra "github.com/mateusmacedo/go-users/internal/users/infrastructure"
	"github.com/mateusmacedo/go-users/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-users/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Config{
		AppName: cfg.AppName,
		Level:   cfg.LogLevel,
	})
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, appLogger); err != nil {
		application.LogError(context.Background(), appLogger, "service stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, appLogger application.AppLogger) error {
	repository, err := newUserRepository(cfg.Database, appLogger)
	if err != nil {
		return err
	}

	eventBus, closeEventBus, err := newEventBus(cfg.Events, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEventBus(); err != nil {
			application.LogError(context.Background(), appLogger, "failed to close event bus", err, nil)
		}
	}()

	handlers := pkgInfra.NewHandlerRegistry(appLogger)
	validators := pkgInfra.NewValidatorRegistry()
	executor := application.NewHandlerExecutor(pkgInfra.NewValidationService(validators, appLogger), appLogger)
	tokens := usersInfra.NewJWTTokenIssuer(usersInfra.TokenConfig{
		SecretKey: cfg.JWT.SecretKey,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Expiry:    cfg.JWT.Expiry,
	})

	usersSlice, err := users.NewUsersSlice(users.Dependencies{
		Handlers:    handlers,
		Validators:  validators,
		Executor:    executor,
		EventBus:    eventBus,
		Repository:  repository,
		Hasher:      usersInfra.NewBcryptHasher(cfg.HashCost),
		Tokens:      tokens,
		IDGenerator: pkgInfra.GenerateUUID,
		Clock:       time.Now,
		Logger:      appLogger,
	})
	if err != nil {
		return err
	}

	dispatcher := pkgInfra.NewDispatcher(handlers, appLogger)
	validators.Seal()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	var protected []func(http.Handler) http.Handler
	if cfg.AuthRequired {
		protected = append(protected, usersInfra.Authenticate(tokens, appLogger))
	}
	usersSlice.RegisterRoutes(router, dispatcher, protected...)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		application.LogInfo(ctx, appLogger, "server starting", map[string]interface{}{"address": cfg.HTTPAddress})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	application.LogInfo(context.Background(), appLogger, "shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	application.LogInfo(context.Background(), appLogger, "server stopped", nil)
	return nil
}

func newUserRepository(cfg config.DatabaseConfig, appLogger application.AppLogger) (usersDomain.UserRepository, error) {
	if cfg.Driver == config.DBDriverMemory {
		return usersInfra.NewInMemoryUserRepository(appLogger), nil
	}
	return usersInfra.NewGormUserRepository(cfg.DSN, appLogger)
}
