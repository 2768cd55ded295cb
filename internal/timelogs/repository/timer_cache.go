package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

const (
	runningKeyPrefix   = "timer:running:" // running log per user: timer:running:{user_id}
	eventChannelPrefix = "timer:events:"  // Pub/Sub channel per user: timer:events:{user_id}
	runningTTL         = 24 * time.Hour
)

// RedisTimerCache caches running timers and fans timer events out over Pub/Sub.
type RedisTimerCache struct {
	client *redis.Client
}

func NewRedisTimerCache(client *redis.Client) *RedisTimerCache {
	return &RedisTimerCache{client: client}
}

// GetRunning returns the cached running log. ok is false on a cache miss.
func (c *RedisTimerCache) GetRunning(ctx context.Context, userID string) (*domain.TimeLog, bool, error) {
	data, err := c.client.Get(ctx, runningKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get running timer: %w", err)
	}

	var l domain.TimeLog
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal running timer: %w", err)
	}
	return &l, true, nil
}

func (c *RedisTimerCache) SetRunning(ctx context.Context, l *domain.TimeLog) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal running timer: %w", err)
	}
	if err := c.client.Set(ctx, runningKey(l.UserID), data, runningTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache running timer: %w", err)
	}
	return nil
}

func (c *RedisTimerCache) ClearRunning(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, runningKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear running timer: %w", err)
	}
	return nil
}

// Replace makes the cache hold exactly the given running logs and returns
// the users whose stale entries were dropped.
func (c *RedisTimerCache) Replace(ctx context.Context, running []domain.TimeLog) ([]string, error) {
	keep := make(map[string]struct{}, len(running))
	pipe := c.client.Pipeline()
	for i := range running {
		data, err := json.Marshal(&running[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal running timer: %w", err)
		}
		key := runningKey(running[i].UserID)
		keep[key] = struct{}{}
		pipe.Set(ctx, key, data, runningTTL)
	}

	var removed []string
	iter := c.client.Scan(ctx, 0, runningKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if _, ok := keep[iter.Val()]; !ok {
			pipe.Del(ctx, iter.Val())
			removed = append(removed, userIDFromKey(iter.Val()))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan running timers: %w", err)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to replace running timers: %w", err)
	}
	return removed, nil
}

func (c *RedisTimerCache) Publish(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal timer event: %w", err)
	}
	if err := c.client.Publish(ctx, eventChannel(ev.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish timer event: %w", err)
	}
	return nil
}

// Subscribe streams the user's timer events until ctx is done or the
// returned close function is called.
func (c *RedisTimerCache) Subscribe(ctx context.Context, userID string) (<-chan domain.Event, func() error, error) {
	sub := c.client.Subscribe(ctx, eventChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to timer events: %w", err)
	}

	out := make(chan domain.Event)
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub.Close, nil
}

func (c *RedisTimerCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func runningKey(userID string) string {
	return runningKeyPrefix + userID
}

func eventChannel(userID string) string {
	return eventChannelPrefix + userID
}

// userIDFromKey is the inverse of runningKey.
func userIDFromKey(key string) string {
	return strings.TrimPrefix(key, runningKeyPrefix)
}
