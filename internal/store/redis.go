package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each document under <prefix>:<name> with a companion
// version key watched during writes.
type RedisBackend struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisBackend(addr, prefix string) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	b := &RedisBackend{rdb: rdb, prefix: prefix, timeout: 5 * time.Second}
	ctx, cancel := b.ctx()
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return b, nil
}

func (b *RedisBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *RedisBackend) keys(name string) (data, version string) {
	k := b.prefix + ":" + name
	return k, k + ":version"
}

func (b *RedisBackend) Close() error { return b.rdb.Close() }

func (b *RedisBackend) Locate(name string) string {
	k, _ := b.keys(name)
	return "redis:" + b.rdb.Options().Addr + "/" + k
}

func (b *RedisBackend) Read(name string) (Snapshot, error) {
	ctx, cancel := b.ctx()
	defer cancel()
	dk, vk := b.keys(name)
	vals, err := b.rdb.MGet(ctx, dk, vk).Result()
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if s, ok := vals[0].(string); ok {
		snap.Data = []byte(s)
	}
	if s, ok := vals[1].(string); ok {
		if snap.Version, err = strconv.ParseInt(s, 10, 64); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func (b *RedisBackend) Write(name string, data []byte, expect int64) error {
	ctx, cancel := b.ctx()
	defer cancel()
	dk, vk := b.keys(name)
	err := b.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if errors.Is(err, redis.Nil) {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != expect {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dk, data, 0)
			pipe.Set(ctx, vk, expect+1, 0)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}
