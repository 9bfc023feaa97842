package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

// KV is the durable key-value surface the device-local cart is persisted in.
// Get reports found=false for a missing key rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open connects the backend selected by cfg.Driver
func Open(ctx context.Context, storageCfg config.StorageConfig, dbCfg config.DatabaseConfig, logger *zap.Logger) (KV, error) {
	switch storageCfg.Driver {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageSQLite:
		return NewSQLite(storageCfg.SQLitePath, logger)
	case config.StorageRedis:
		return NewRedis(ctx, storageCfg, logger)
	case config.StoragePostgres:
		db, err := NewConnection(dbCfg)
		if err != nil {
			return nil, err
		}
		return NewPostgres(ctx, db, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", storageCfg.Driver)
	}
}

var errClosed = errors.New("storage: closed")

// Memory is a mapping-backed KV. It does not survive a restart.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, errClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
