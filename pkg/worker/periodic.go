package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker is one unit of recurring background work.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// PeriodicWorker runs a Worker once on start and then on every tick.
type PeriodicWorker struct {
	worker   Worker
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewPeriodicWorker(w Worker, interval time.Duration, logger *zap.Logger) *PeriodicWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicWorker{
		worker:   w,
		interval: interval,
		logger:   logger.With(zap.String("worker", w.Name())),
	}
}

func (pw *PeriodicWorker) Start(ctx context.Context) {
	pw.wg.Add(1)
	go pw.run(ctx)
}

// Wait blocks until the worker exits or the timeout elapses.
func (pw *PeriodicWorker) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		pw.logger.Info("worker stopped")
		return true
	case <-time.After(timeout):
		pw.logger.Warn("worker stop timeout")
		return false
	}
}

func (pw *PeriodicWorker) run(ctx context.Context) {
	defer pw.wg.Done()

	pw.logger.Info("worker started", zap.Duration("interval", pw.interval))
	pw.execute(ctx)

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pw.execute(ctx)
		}
	}
}

func (pw *PeriodicWorker) execute(ctx context.Context) {
	start := time.Now()
	if err := pw.worker.Run(ctx); err != nil {
		pw.logger.Error("worker run failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	pw.logger.Debug("worker run completed", zap.Duration("duration", time.Since(start)))
}

// Group starts and stops a set of periodic workers together.
type Group struct {
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
	mu      sync.Mutex
	workers []*PeriodicWorker
}

func NewGroup(ctx context.Context, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel, logger: logger}
}

// Add registers w; a non-positive interval leaves it disabled.
func (g *Group) Add(w Worker, interval time.Duration) {
	if interval <= 0 {
		g.logger.Info("worker disabled", zap.String("worker", w.Name()))
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workers = append(g.workers, NewPeriodicWorker(w, interval, g.logger))
}

func (g *Group) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.workers {
		w.Start(g.ctx)
	}
	g.logger.Info("worker group started", zap.Int("workers", len(g.workers)))
}

func (g *Group) Stop(timeout time.Duration) {
	g.cancel()

	g.mu.Lock()
	workers := append([]*PeriodicWorker(nil), g.workers...)
	g.mu.Unlock()

	for _, w := range workers {
		w.Wait(timeout)
	}
}
