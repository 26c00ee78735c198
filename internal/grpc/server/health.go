// Package server реализует gRPC-сервер проверки здоровья сервиса.
//
// Статус SERVING выставляется, когда хранилище сессии отвечает на Ping,
// NOT_SERVING при недоступности хранилища и при остановке.
package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/identity-mock/internal/lib/sl"
)

// ServiceName имя сервиса в протоколе grpc.health.v1.
const ServiceName = "identity"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer публикует статус сервиса через стандартный health-протокол.
type HealthServer struct {
	health *health.Server
	pinger Pinger
	log    *slog.Logger
}

// NewHealthServer создает сервер со статусом NOT_SERVING до первой проверки.
func NewHealthServer(pinger Pinger, logger *slog.Logger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		health: h,
		pinger: pinger,
		log:    logger,
	}
}

// Register регистрирует health-сервис на gRPC-сервере.
func (s *HealthServer) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, s.health)
}

// Refresh проверяет хранилище сессии и обновляет статус.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	const op = "grpc.server.Refresh"
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn("session storage unavailable", slog.String("op", op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Shutdown переводит все сервисы в NOT_SERVING и запрещает дальнейшие изменения.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
}
