package mocks

import (
	"context"
	"errors"
	"time"
)

// MockCacher is a function-field cache mock for the handler layer.
// Unset functions behave like an empty cache.
type MockCacher struct {
	GetFunc          func(ctx context.Context, key string, dest any) error
	SetFunc          func(ctx context.Context, key string, value any, expiration time.Duration) error
	TTLFunc          func(ctx context.Context, key string) (time.Duration, error)
	DeletePrefixFunc func(ctx context.Context, keyPrefix string) (int64, error)
	CloseFunc        func() error
}

func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return errors.New("cache miss")
}

func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *MockCacher) TTL(ctx context.Context, key string) (time.Duration, error) {
	if m.TTLFunc != nil {
		return m.TTLFunc(ctx, key)
	}
	return -2, nil
}

func (m *MockCacher) DeletePrefix(ctx context.Context, keyPrefix string) (int64, error) {
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, keyPrefix)
	}
	return 0, nil
}

func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
