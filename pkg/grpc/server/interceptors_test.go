package server

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/camps.v1.TrendService/GetTrends"}

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := LoggingInterceptor(zap.New(core))

	ctx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 4242},
	})

	t.Run("successful request", func(t *testing.T) {
		resp, err := interceptor(ctx, "req", testInfo, func(ctx context.Context, req any) (any, error) {
			return "ok", nil
		})
		if err != nil || resp != "ok" {
			t.Fatalf("got (%v, %v), want (ok, nil)", resp, err)
		}
		entries := logs.FilterMessage("gRPC request completed").All()
		if len(entries) != 1 {
			t.Fatalf("expected one completion log, got %d", len(entries))
		}
		if got := entries[0].ContextMap()["client_addr"]; got != "10.0.0.7:4242" {
			t.Errorf("client_addr = %v", got)
		}
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		_, err := interceptor(ctx, "req", testInfo, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "bad category")
		})
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument, got %v", err)
		}
		entries := logs.FilterMessage("gRPC request rejected").All()
		if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
			t.Fatalf("expected one warn entry, got %v", entries)
		}
	})

	t.Run("server errors log at error", func(t *testing.T) {
		_, _ = interceptor(ctx, "req", testInfo, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Internal, "database error")
		})
		entries := logs.FilterMessage("gRPC request failed").All()
		if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
			t.Fatalf("expected one error entry, got %v", entries)
		}
	})
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))

	resp, err := interceptor(context.Background(), "req", testInfo, func(ctx context.Context, req any) (any, error) {
		panic("nil map write")
	})
	if resp != nil {
		t.Errorf("expected nil response, got %v", resp)
	}
	if status.Code(err) != codes.Internal {
		t.Errorf("expected Internal, got %v", err)
	}
}

func TestNew_RejectsInvalidPort(t *testing.T) {
	if _, err := New(WithPort(70000)); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestServerHealth(t *testing.T) {
	server, err := New(
		WithHost("127.0.0.1"),
		WithPort(0),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
	)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	server.RegisterServiceWithHealth("camps.v1.TrendService", func(*grpc.Server) {})
	server.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Logf("server shutdown error: %v", err)
		}
	}()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial server: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthClient := healthpb.NewHealthClient(conn)
	for _, name := range []string{"", "camps.v1.TrendService"} {
		resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		if err != nil {
			t.Fatalf("health check %q failed: %v", name, err)
		}
		if resp.Status != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("service %q: expected SERVING, got %v", name, resp.Status)
		}
	}

	server.SetServiceHealth("camps.v1.TrendService", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "camps.v1.TrendService"})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", resp.Status)
	}
}
