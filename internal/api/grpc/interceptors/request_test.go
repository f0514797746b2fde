package interceptors

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestLoggingUnaryInterceptor(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		err     error
		want    []string
		wantLog bool
	}{
		{name: "успех", method: "/webcalc.Calculator/Do", want: []string{"level=INFO", "grpc_code=OK"}, wantLog: true},
		{name: "ошибка со статусом", method: "/webcalc.Calculator/Do", err: status.Error(codes.InvalidArgument, "bad"), want: []string{"level=WARN", "grpc_code=InvalidArgument", "error=bad"}, wantLog: true},
		{name: "проба health на debug", method: "/grpc.health.v1.Health/Check", wantLog: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			icp := LoggingUnaryInterceptor(newLogger(&buf))

			resp, err := icp(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: tt.method},
				func(ctx context.Context, req any) (any, error) { return "resp", tt.err })

			assert.Equal(t, "resp", resp)
			assert.ErrorIs(t, err, tt.err)
			if !tt.wantLog {
				assert.Empty(t, buf.String())
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.Contains(t, buf.String(), "method="+tt.method)
		})
	}
}

type fakeStream struct {
	grpc.ServerStream
}

func (fakeStream) Context() context.Context { return context.Background() }

func TestLoggingStreamInterceptor(t *testing.T) {
	var buf bytes.Buffer
	icp := LoggingStreamInterceptor(newLogger(&buf))

	err := icp(nil, fakeStream{}, &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"},
		func(any, grpc.ServerStream) error { return status.Error(codes.Canceled, "client gone") })

	require.Error(t, err)
	assert.Contains(t, buf.String(), "grpc_code=Canceled")
}
