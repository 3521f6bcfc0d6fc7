// Package health поднимает gRPC-сервис grpc.health.v1 для балансировщиков и
// оркестратора. Статус отражает доступность зависимостей сервиса.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
)

// ServiceName — имя сервиса в ответах grpc.health.v1.
const ServiceName = "coaching.courses.v1.UnlockService"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server — gRPC-сервер, отдающий только health.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	log      *slog.Logger
}

// New создает Server. Пока не выполнена первая проверка, статус NOT_SERVING.
func New(log *slog.Logger, checks map[string]Pinger, interval time.Duration) *Server {
	s := &Server{
		health:   health.NewServer(),
		checks:   checks,
		interval: interval,
		log:      log,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Check опрашивает зависимости один раз и выставляет статус.
func (s *Server) Check(ctx context.Context) bool {
	ok := true
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			s.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			ok = false
		}
	}
	if ok {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return ok
}

// Watch повторяет Check с интервалом до отмены ctx.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, s.interval)
			s.Check(checkCtx)
			cancel()
		}
	}
}

// Serve обслуживает lis до вызова Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop переводит статус в NOT_SERVING и дожидается завершения текущих вызовов.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.log.Debug("grpc call failed", slog.String("method", info.FullMethod), sl.Err(err))
	}
	return resp, err
}
