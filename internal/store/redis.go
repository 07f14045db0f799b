package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wonders/internal/engine"
)

// snapshotTTL drops tables nobody has touched for a day.
const snapshotTTL = 24 * time.Hour

// Redis keeps one hash per table with the epoch and the encoded snapshot.
type Redis struct {
	rdb *redis.Client
	log *zap.Logger
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, addr string, db int, log *zap.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Info("redis connected", zap.String("addr", addr), zap.Int("db", db))
	return NewRedis(rdb, log), nil
}

func NewRedis(rdb *redis.Client, log *zap.Logger) *Redis {
	return &Redis{rdb: rdb, log: log}
}

func snapshotKey(tableID string) string {
	return fmt.Sprintf("table:%s:snapshot", tableID)
}

// Save writes the snapshot inside a WATCH transaction so two writers cannot
// both pass the epoch check.
func (s *Redis) Save(ctx context.Context, tableID string, snap *engine.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	key := snapshotKey(tableID)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, key, "epoch").Uint64()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("read epoch: %w", err)
		case snap.Epoch <= cur:
			return stale(cur, snap.Epoch)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "epoch", snap.Epoch, "data", string(data))
			pipe.Expire(ctx, key, snapshotTTL)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: concurrent update of table %s", ErrStaleEpoch, tableID)
	}
	if err != nil {
		return err
	}
	s.log.Debug("snapshot saved", zap.String("table", tableID), zap.Uint64("epoch", snap.Epoch))
	return nil
}

func (s *Redis) Latest(ctx context.Context, tableID string) (*engine.Snapshot, error) {
	data, err := s.rdb.HGet(ctx, snapshotKey(tableID), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data)
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}
