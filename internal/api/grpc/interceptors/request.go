package interceptors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// healthPrefix - вызовы health-сервиса (пробы оркестратора) логируются на уровне debug.
const healthPrefix = "/grpc.health.v1.Health/"

// LoggingUnaryInterceptor логирует каждый unary RPC: метод, длительность, код/ошибка (аналог HTTP request logger).
func LoggingUnaryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, log, info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// LoggingStreamInterceptor - то же для stream RPC (например, Health/Watch); пишется по завершении стрима.
func LoggingStreamInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), log, info.FullMethod, time.Since(start), err)
		return err
	}
}

func logCall(ctx context.Context, log *slog.Logger, method string, latency time.Duration, err error) {
	attrs := []any{"method", method, "latency_ms", latency.Milliseconds()}
	if err != nil {
		if st, ok := status.FromError(err); ok {
			attrs = append(attrs, "grpc_code", st.Code().String(), "error", st.Message())
		} else {
			attrs = append(attrs, "error", err.Error())
		}
		log.WarnContext(ctx, "grpc request", attrs...)
		return
	}
	attrs = append(attrs, "grpc_code", codes.OK.String())
	level := slog.LevelInfo
	if strings.HasPrefix(method, healthPrefix) {
		level = slog.LevelDebug
	}
	log.Log(ctx, level, "grpc request", attrs...)
}
