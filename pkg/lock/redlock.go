package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker grants named, expiring mutual exclusion across processes.
type Locker interface {
	// TryAcquire returns false without error when another holder owns name.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// lockManager is the part of redlock.RedLock that RedLocker drives.
type lockManager interface {
	Lock(ctx context.Context, resource string, ttl time.Duration) (time.Duration, error)
	UnLock(ctx context.Context, resource string) error
}

// RedLocker implements Locker with the Redlock algorithm.
type RedLocker struct {
	manager lockManager
	nodes   []*redis.Client
	// reachable reports how many nodes answer a ping.
	reachable func(ctx context.Context) int
	quorum    int
	logger    *zap.Logger
}

// NewRedLocker connects to the given redis addresses ("tcp://host:port").
func NewRedLocker(ctx context.Context, addrs []string, logger *zap.Logger) (*RedLocker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	manager, err := redlock.NewRedLock(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("create redlock manager: %w", err)
	}

	l := &RedLocker{manager: manager, quorum: len(addrs)/2 + 1, logger: logger.Named("redlock")}
	for _, addr := range addrs {
		l.nodes = append(l.nodes, redis.NewClient(&redis.Options{Addr: nodeAddr(addr)}))
	}
	l.reachable = l.pingNodes
	logger.Info("redlock manager initialized", zap.Strings("addresses", addrs))
	return l, nil
}

func nodeAddr(addr string) string {
	addr = strings.TrimPrefix(addr, "tcp://")
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	return addr
}

func (l *RedLocker) pingNodes(ctx context.Context) int {
	up := 0
	for _, node := range l.nodes {
		if err := node.Ping(ctx).Err(); err == nil {
			up++
		}
	}
	return up
}

// TryAcquire returns an error instead of false when too few redis nodes are
// reachable to tell contention from an outage.
func (l *RedLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	expiry, err := l.manager.Lock(ctx, name, ttl)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("acquire %s: %w", name, ctxErr)
		}
		if up := l.reachable(ctx); up < l.quorum {
			return false, fmt.Errorf("acquire %s: %d of %d redis nodes reachable: %w", name, up, l.quorum, err)
		}
		l.logger.Debug("lock held elsewhere", zap.String("lock", name), zap.Error(err))
		return false, nil
	}
	if expiry <= 0 {
		return false, fmt.Errorf("acquire %s: invalid expiry %v", name, expiry)
	}
	l.logger.Debug("lock acquired", zap.String("lock", name), zap.Duration("expiry", expiry))
	return true, nil
}

func (l *RedLocker) Release(ctx context.Context, name string) error {
	if err := l.manager.UnLock(ctx, name); err != nil {
		l.logger.Warn("lock release failed (may have expired)", zap.String("lock", name), zap.Error(err))
	}
	return nil
}

// Close closes the health-check connections.
func (l *RedLocker) Close() error {
	var errs []error
	for _, node := range l.nodes {
		errs = append(errs, node.Close())
	}
	return errors.Join(errs...)
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	held map[string]time.Time
	mu   chan struct{}
	now  func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), mu: make(chan struct{}, 1), now: time.Now}
}

func (l *LocalLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	select {
	case l.mu <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-l.mu }()

	if until, ok := l.held[name]; ok && l.now().Before(until) {
		return false, nil
	}
	l.held[name] = l.now().Add(ttl)
	return true, nil
}

func (l *LocalLocker) Release(_ context.Context, name string) error {
	l.mu <- struct{}{}
	defer func() { <-l.mu }()
	delete(l.held, name)
	return nil
}
