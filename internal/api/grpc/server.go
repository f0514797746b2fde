package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"webcalc/internal/api/grpc/interceptors"
	checks "webcalc/internal/pkg/health"
)

// Config - настройки gRPC-сервера. Переменные: CALCULATOR_GRPC_ENABLED, CALCULATOR_GRPC_HOST, CALCULATOR_GRPC_PORT, CALCULATOR_GRPC_CHECK_INTERVAL.
type Config struct {
	Enabled       bool          `envconfig:"ENABLED" default:"true"`
	Host          string        `envconfig:"HOST" default:"0.0.0.0"`
	Port          string        `envconfig:"PORT" default:"9090"`
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"5s"`
}

// Addr возвращает "host:port".
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// ServiceName - имя сервиса в grpc.health.v1, статус которого совпадает с readiness.
const ServiceName = "webcalc.Calculator"

// Server - gRPC-сервер со стандартным health-сервисом. Статус обновляется по результатам checker.
type Server struct {
	cfg     Config
	grpc    *grpc.Server
	health  *health.Server
	checker *checks.Checker
	log     *slog.Logger
}

// NewServer создаёт gRPC-сервер и регистрирует grpc.health.v1.Health. Логирующие интерцепторы пишут метод, latency_ms и grpc_code (аналог HTTP middleware).
func NewServer(cfg Config, checker *checks.Checker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Second
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors.LoggingUnaryInterceptor(log)),
		grpc.ChainStreamInterceptor(interceptors.LoggingStreamInterceptor(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{cfg: cfg, grpc: s, health: hs, checker: checker, log: log}
}

// Start слушает cfg.Addr() и блокируется до отмены ctx.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve принимает соединения на lis, периодически обновляет health-статус и после отмены ctx делает graceful stop.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()
	go s.watch(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.health.Shutdown()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.stop(stopCtx)
}

func (s *Server) watch(ctx context.Context) {
	s.updateStatus(ctx)
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateStatus(ctx)
		}
	}
}

// updateStatus выставляет SERVING, если все зависимости доступны, иначе NOT_SERVING.
// Пустой сервис ("") отражает общий статус сервера.
func (s *Server) updateStatus(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.checker != nil {
		if err := s.checker.Ready(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("grpc health: not serving", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// stop останавливает сервер (graceful), по истечении ctx - принудительно.
func (s *Server) stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}
