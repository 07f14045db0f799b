// Package store keeps the latest snapshot of every table. Saves are ordered
// by epoch: a snapshot is only accepted when its epoch is strictly greater
// than the stored one.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"wonders/internal/engine"
)

var (
	ErrNotFound      = errors.New("no snapshot for table")
	ErrStaleEpoch    = errors.New("stale snapshot")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Provider hands out immutable copies of table snapshots.
type Provider interface {
	Save(ctx context.Context, tableID string, snap *engine.Snapshot) error
	Latest(ctx context.Context, tableID string) (*engine.Snapshot, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver     string // memory, redis or sqlite
	RedisAddr  string
	RedisDB    int
	SQLitePath string
}

// Open builds the configured provider.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Provider, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(log), nil
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, log)
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func encode(snap *engine.Snapshot) ([]byte, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func stale(have, got uint64) error {
	return fmt.Errorf("%w: have epoch %d, got %d", ErrStaleEpoch, have, got)
}

type memoryEntry struct {
	epoch uint64
	data  []byte
}

// Memory keeps snapshots in process, encoded so callers never share state.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]memoryEntry
	log    *zap.Logger
}

func NewMemory(log *zap.Logger) *Memory {
	return &Memory{tables: make(map[string]memoryEntry), log: log}
}

func (m *Memory) Save(_ context.Context, tableID string, snap *engine.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.tables[tableID]; ok && snap.Epoch <= cur.epoch {
		return stale(cur.epoch, snap.Epoch)
	}
	m.tables[tableID] = memoryEntry{epoch: snap.Epoch, data: data}
	m.log.Debug("snapshot saved", zap.String("table", tableID), zap.Uint64("epoch", snap.Epoch))
	return nil
}

func (m *Memory) Latest(_ context.Context, tableID string) (*engine.Snapshot, error) {
	m.mu.RLock()
	cur, ok := m.tables[tableID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	return decode(cur.data)
}

func (m *Memory) Close() error { return nil }
