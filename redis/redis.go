// Package redis caches user directory records in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// Redis provides a best-effort cache of user records. Entries expire after
// userTTL; command-surface writes delete entries explicitly so the workflow
// never acts on a stale credential for long.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings it to ensure the connection
// is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

const (
	userPrefix = "users"
	userTTL    = 10 * time.Minute
)

// GetUser returns a cached user record. kudos.ErrUserNotInCache marks a miss.
func (r *Redis) GetUser(ctx context.Context, userID string) (kudos.UserRecord, error) {
	key := fmt.Sprintf("%s:%s", userPrefix, userID)

	var u user
	if err := r.cli.HGetAll(ctx, key).Scan(&u); err != nil {
		return kudos.UserRecord{}, fmt.Errorf("hgetall: %w", err)
	}
	if u.ID == "" {
		return kudos.UserRecord{}, kudos.ErrUserNotInCache
	}

	rec, err := u.Record()
	if err != nil {
		return kudos.UserRecord{}, fmt.Errorf("decode cached user: %w", err)
	}
	return rec, nil
}

// PutUser stores a user record with the cache TTL.
func (r *Redis) PutUser(ctx context.Context, rec kudos.UserRecord) error {
	u, err := fromRecord(rec)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	key := fmt.Sprintf("%s:%s", userPrefix, u.ID)

	_, err = r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key) // Drop stale fields, the notifications blob may disappear.
		pipe.HSet(ctx, key, u)
		pipe.Expire(ctx, key, userTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put user: %w", err)
	}
	return nil
}

// DeleteUser removes a user record from the cache.
func (r *Redis) DeleteUser(ctx context.Context, userID string) error {
	key := fmt.Sprintf("%s:%s", userPrefix, userID)
	if err := r.cli.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete user: %w", err)
	}
	return nil
}
