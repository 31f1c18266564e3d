package iocache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

const (
	// redisKeyPrefix namespaces every result entry.
	redisKeyPrefix = "transcomplex:result:"

	// redisEntryTTL lets redis expire entries the scorer would treat as stale anyway.
	redisEntryTTL = 7 * 24 * time.Hour

	redisOpTimeout = 5 * time.Second
)

// RedisCacheStore keeps result entries as redis hashes.
type RedisCacheStore struct {
	client *redis.Client
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the redis:// or rediss:// URL in connStr.
func NewRedisCacheStore(connStr string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w. Expected redis://[user:password@]host:port/db", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisCacheStore{client: client}, nil
}

// Get retrieves a value by key. A missing key yields redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	value, ok := fields["value"]
	if !ok {
		return nil, 0, 0, redis.Nil
	}
	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields["ts"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set writes the entry and refreshes its TTL in one transaction.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	k := redisKeyPrefix + key
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, "value", value, "version", version, "ts", timestamp)
		pipe.Expire(ctx, k, redisEntryTTL)
		return nil
	})
	return err
}

// GetStatus scans the namespace for entry count, age range and memory use.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), 10*redisOpTimeout)
	defer cancel()

	var oldest, newest int64
	iter := rs.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		status.TotalEntries++
		if ts, err := rs.client.HGet(ctx, key, "ts").Int64(); err == nil {
			if oldest == 0 || ts < oldest {
				oldest = ts
			}
			newest = max(newest, ts)
		}
		if size, err := rs.client.MemoryUsage(ctx, key).Result(); err == nil {
			status.TableSizeBytes += size
		}
	}
	if err := iter.Err(); err != nil {
		status.Connected = false
		return status, fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if status.TotalEntries > 0 {
		status.OldestEntryTime = time.Unix(oldest, 0)
		status.LastEntryTime = time.Unix(newest, 0)
	}
	return status, nil
}

// Clear deletes every key in the namespace.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*redisOpTimeout)
	defer cancel()

	iter := rs.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := rs.client.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return fmt.Errorf("failed to delete redis keys: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("failed to delete redis keys: %w", err)
	}
	return nil
}

// Close closes the client.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}
