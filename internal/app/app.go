package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/godilite/camps-trends/api/v1"
	"github.com/godilite/camps-trends/internal/config"
	handler "github.com/godilite/camps-trends/internal/grpc"
	"github.com/godilite/camps-trends/internal/service"
	grpcsrv "github.com/godilite/camps-trends/pkg/grpc/server"
	"github.com/godilite/camps-trends/pkg/worker"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	core       *Core
	grpcServer *grpcsrv.Server
	workers    *worker.Group
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	core, err := NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var cacher handler.Cacher
	if core.Cache != nil {
		cacher = core.Cache
	}
	grpcHandlers := handler.NewGRPCHandlers(core.Trends, cacher, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterTrendServiceServer(s, grpcHandlers)
	})

	workers := worker.NewGroup(context.WithoutCancel(ctx), logger)
	workers.Add(service.NewRecalculationWorker(core.Trends, cfg.RecalcInterval/2), cfg.RecalcInterval)

	return &App{
		logger:     logger,
		core:       core,
		grpcServer: grpcServer,
		workers:    workers,
	}, nil
}

// Run starts the server and workers and blocks until ctx ends or a shutdown
// signal is received.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting")
	a.grpcServer.Start()
	a.workers.Start()

	<-ctx.Done()
	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	a.workers.Stop(shutdownTimeout)
	if err := a.core.Trends.Wait(shutdownCtx); err != nil {
		a.logger.Warn("recalculation jobs still running at shutdown", zap.Error(err))
	}
	if err := a.core.Close(); err != nil {
		a.logger.Error("resource shutdown error", zap.Error(err))
	}

	a.logger.Info("shutdown completed")
	_ = a.logger.Sync()
	return nil
}
