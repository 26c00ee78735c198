// Package identity собирает приложение: хранилище профилей, хранилище сессии,
// HTTP API и gRPC health-сервер.
package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	_ "github.com/magabrotheeeer/identity-mock/docs" // swagger
	"github.com/magabrotheeeer/identity-mock/internal/cache"
	"github.com/magabrotheeeer/identity-mock/internal/config"
	"github.com/magabrotheeeer/identity-mock/internal/grpc/server"
	"github.com/magabrotheeeer/identity-mock/internal/http/middlewarectx"
	"github.com/magabrotheeeer/identity-mock/internal/lib/sl"
	services "github.com/magabrotheeeer/identity-mock/internal/services/auth"
	"github.com/magabrotheeeer/identity-mock/internal/session"
	"github.com/magabrotheeeer/identity-mock/internal/storage/memory"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 10 * time.Second
)

type App struct {
	server      *http.Server
	grpcServer  *grpc.Server
	listener    net.Listener
	health      *server.HealthServer
	logger      *slog.Logger
	storage     cache.Storage
	authService *services.AuthService

	shutdownTimeout time.Duration
}

// New создает приложение. Хранилище сессии выбирается по cfg.Backend,
// для redis все ключи сессии получают собственное пространство имён.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.identity.New"

	storage, err := newSessionStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := services.NewAuthService(memory.New(), session.New(storage), cfg.Auth, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middlewarectx.NewMetrics(registry)
	if err != nil {
		closeStorage(storage)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, metrics, registry)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddress)
	if err != nil {
		closeStorage(storage)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	grpcServer := grpc.NewServer()
	health := server.NewHealthServer(storage, logger)
	health.Register(grpcServer)

	return &App{
		server:      srv,
		grpcServer:  grpcServer,
		listener:    lis,
		health:      health,
		logger:      logger,
		storage:     storage,
		authService: authService,

		shutdownTimeout: shutdownTimeout,
	}, nil
}

func newSessionStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Storage, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		namespace := cfg.KeyPrefix + uuid.New().String() + ":"
		logger.Info("using redis session storage",
			slog.String("address", cfg.AddressRedis),
			slog.String("namespace", namespace),
		)
		c, err := cache.InitServer(ctx, cfg.RedisConnection, namespace, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		logger.Info("using in-memory session storage")
		return cache.NewMemory(), nil
	}
}

func closeStorage(storage cache.Storage) {
	if c, ok := storage.(io.Closer); ok {
		_ = c.Close()
	}
}

// Handler возвращает HTTP-обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// GRPCAddr возвращает адрес, на котором слушает health-сервер.
func (a *App) GRPCAddr() string {
	return a.listener.Addr().String()
}

// Run запускает HTTP и gRPC серверы и блокируется до отмены ctx или ошибки.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	go func() {
		a.logger.Info("gRPC health server listening on", slog.String("address", a.GRPCAddr()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	a.health.Refresh(ctx)
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.health.Refresh(ctx)
		case err := <-errCh:
			a.stop()
			return err
		case <-ctx.Done():
			return a.stop()
		}
	}
}

func (a *App) stop() error {
	a.logger.Info("shutting down gracefully")
	a.health.Shutdown()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(timeoutCtx)
	if err != nil {
		a.logger.Error("failed to shutdown HTTP server", sl.Err(err))
	}
	a.stopGRPC(timeoutCtx)
	_ = a.listener.Close()
	closeStorage(a.storage)
	return err
}

// stopGRPC ждёт завершения открытых RPC до истечения ctx, после чего
// закрывает оставшиеся соединения, в том числе потоки Health/Watch.
func (a *App) stopGRPC(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("gRPC graceful stop timed out, forcing stop")
		a.grpcServer.Stop()
		<-done
	}
}
