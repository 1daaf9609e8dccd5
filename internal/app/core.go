package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/config"
	handler "github.com/godilite/camps-trends/internal/grpc"
	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/service"
	"github.com/godilite/camps-trends/pkg/cache"
	dbbuilder "github.com/godilite/camps-trends/pkg/database"
	"github.com/godilite/camps-trends/pkg/lock"
)

type jobStore interface {
	service.JobStore
	Close() error
}

// Core is the storage and service layer shared by the server and the CLI.
type Core struct {
	DB         *sql.DB
	Cache      *cache.Cache // nil when redis is unreachable
	Trends     *service.TrendService
	Thresholds analytics.Thresholds

	jobs      jobStore
	redLocker *lock.RedLocker
	logger    *zap.Logger
}

// NewCore opens the database, job store and optional redis connection and
// builds the trend service on top of them.
func NewCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Core, error) {
	thresholds, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}

	dbPool, err := dbbuilder.NewContext(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	c := &Core{DB: dbPool, Thresholds: thresholds, logger: logger}

	gormDB, err := repository.OpenGorm(dbPool, cfg.DBDriver, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("trend store init failed: %w", err)
	}
	store := repository.NewTrendStore(gormDB)
	if err := store.EnsureSchema(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("trend store schema: %w", err)
	}

	if cfg.JobsDBPath != "" {
		c.jobs, err = repository.OpenBoltJobStore(cfg.JobsDBPath)
		if err != nil {
			c.Close()
			return nil, err
		}
		logger.Info("Job store initialized", zap.String("path", cfg.JobsDBPath))
	} else {
		c.jobs = repository.NewMemoryJobStore()
	}

	var locker lock.Locker = lock.NewLocalLocker()
	cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
	if err != nil {
		logger.Warn("Cache unavailable, serving reads uncached with a local recalculation lock",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		c.Cache = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

		redLocker, err := lock.NewRedLocker(ctx, []string{"tcp://" + cfg.RedisAddr}, logger)
		if err != nil {
			logger.Warn("Distributed lock unavailable, using local lock", zap.Error(err))
		} else {
			locker = redLocker
			c.redLocker = redLocker
		}
	}

	opts := []service.Option{
		service.WithThresholds(thresholds),
		service.WithWorkers(cfg.RecalcWorkers),
		service.WithUnitTimeout(cfg.RecalcUnitTimeout),
		service.WithLookback(cfg.Lookback()),
		service.WithReadRate(cfg.SourceReadsPerSecond, cfg.RecalcWorkers),
		service.WithLocker(locker, cfg.RecalcLockTTL),
		service.WithJobStore(c.jobs),
	}
	if c.Cache != nil {
		opts = append(opts, service.WithFinishHook(handler.CacheInvalidator(c.Cache, logger)))
	}
	c.Trends = service.NewTrendService(repository.NewRatingRepository(dbPool, cfg.DBDriver), store, logger, opts...)
	return c, nil
}

// Close releases every resource NewCore opened.
func (c *Core) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.redLocker != nil {
		errs = append(errs, c.redLocker.Close())
	}
	if c.jobs != nil {
		errs = append(errs, c.jobs.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
