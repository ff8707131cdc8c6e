// Package main initializes and starts the AuthPortal HTTP server,
// setting up configuration, logging, storage, services, handlers and
// graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/AuthPortal/internal/certgen"
	"github.com/atinyakov/AuthPortal/internal/config"
	"github.com/atinyakov/AuthPortal/internal/db"
	"github.com/atinyakov/AuthPortal/internal/logger"
	"github.com/atinyakov/AuthPortal/internal/repository"
	"github.com/atinyakov/AuthPortal/internal/server/handler/http"
	"github.com/atinyakov/AuthPortal/internal/server/web"
	"github.com/atinyakov/AuthPortal/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, sessions, closeStores, err := openStores(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}
	defer closeStores()

	// Initialize business-logic services.
	authService := service.NewAuthService(users, sessions, options.SessionTTL)

	renderer, err := http.NewTemplateRenderer(web.Templates)
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	authHandler := &http.AuthHandler{
		AuthService:   authService,
		Renderer:      renderer,
		Log:           zapLogger,
		StudentID:     options.StudentID,
		SecureCookies: options.SecureCookies || options.TLSDir != "",
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.Bool("tls", options.TLSDir != ""),
		zap.String("user_storage", options.UserStorage),
		zap.String("session_storage", options.SessionStorage),
	)
	if err := listen(server, options); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStores builds the user and session repositories selected by options.
// The returned func releases every connection that was opened.
func openStores(
	ctx context.Context,
	options *config.Options,
	log *zap.Logger,
) (service.UserRepository, service.SessionRepository, func(), error) {
	var (
		users    service.UserRepository
		sessions service.SessionRepository
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	memory := repository.NewMemoryStore()

	switch options.UserStorage {
	case config.BackendMemory:
		users = memory
	case config.BackendPostgres:
		postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, func() { _ = postgresDB.Close() })
		users = repository.NewPostgresAuthRepository(postgresDB)

		if options.SessionStorage == config.BackendPostgres {
			sessions = repository.NewPostgresSessionRepository(postgresDB)
			db.StartSessionCleaner(ctx, postgresDB, time.Hour, log)
		}
	}

	switch options.SessionStorage {
	case config.BackendMemory:
		sessions = memory
	case config.BackendRedis:
		client, err := repository.ConnectRedis(ctx, options.RedisAddr, options.RedisPassword)
		if err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		sessions = repository.NewRedisSessionRepository(client)
	}

	return users, sessions, closeAll, nil
}

// listen serves plain HTTP, or HTTPS when a TLS directory is configured.
// Missing certificates are issued for the listen host and localhost.
func listen(server *nethttp.Server, options *config.Options) error {
	if options.TLSDir == "" {
		return server.ListenAndServe()
	}

	hosts := []string{"localhost", "127.0.0.1"}
	if host, _, err := net.SplitHostPort(options.Addr); err == nil && host != "" {
		hosts = append([]string{host}, hosts...)
	}
	certFile, keyFile, err := certgen.EnsureServerPair(options.TLSDir, hosts)
	if err != nil {
		return fmt.Errorf("prepare tls certificates: %w", err)
	}
	return server.ListenAndServeTLS(certFile, keyFile)
}
