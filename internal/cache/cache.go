// Package cache keeps publicly visible jobs in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"jobportal-backend/internal/model"
)

// JobCache stores public job lookups by id and by slug.
type JobCache interface {
	Get(ctx context.Context, idOrSlug string) (*model.Job, bool, error)
	Set(ctx context.Context, job *model.Job) error
	Invalidate(ctx context.Context, job *model.Job) error
}

// invalidationHold is how long Set refuses to re-cache a job after it was invalidated.
// A reader that loaded the job before the change cannot put the old copy back.
const invalidationHold = 10 * time.Second

// RedisJobCache implements JobCache on Redis with a fixed TTL.
type RedisJobCache struct {
	client *redis.Client
	ttl    time.Duration
	hold   time.Duration
	now    func() time.Time
}

// NewRedisJobCache builds a cache on client.
func NewRedisJobCache(client *redis.Client, ttl time.Duration) *RedisJobCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisJobCache{client: client, ttl: ttl, hold: invalidationHold, now: time.Now}
}

func key(idOrSlug string) string {
	return "job:" + idOrSlug
}

func holdKey(job *model.Job) string {
	return "job-hold:" + job.ID.String()
}

// Get returns the cached job. Entries that stopped being public since they were cached count as misses.
func (c *RedisJobCache) Get(ctx context.Context, idOrSlug string) (*model.Job, bool, error) {
	raw, err := c.client.Get(ctx, key(idOrSlug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var job model.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		_ = c.client.Del(ctx, key(idOrSlug)).Err()
		return nil, false, nil
	}
	if !job.PubliclyVisible(c.now()) {
		return nil, false, nil
	}
	return &job, true, nil
}

// Set caches job under both its id and its slug. The TTL never outlives the job's expiry.
func (c *RedisJobCache) Set(ctx context.Context, job *model.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if job.ExpiresAt != nil {
		if left := job.ExpiresAt.Sub(c.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	// The hold key is watched so an Invalidate landing between the check and the write aborts the write.
	hold := holdKey(job)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		held, err := tx.Exists(ctx, hold).Result()
		if err != nil {
			return err
		}
		if held > 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(job.ID.String()), raw, ttl)
			pipe.Set(ctx, key(job.Slug), raw, ttl)
			return nil
		})
		return err
	}, hold)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops both keys of job and holds off Set for the job briefly.
func (c *RedisJobCache) Invalidate(ctx context.Context, job *model.Job) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, holdKey(job), 1, c.hold)
		pipe.Del(ctx, key(job.ID.String()), key(job.Slug))
		return nil
	})
	return err
}

// NopJobCache is used when Redis is not configured.
type NopJobCache struct{}

// Get always misses.
func (NopJobCache) Get(context.Context, string) (*model.Job, bool, error) { return nil, false, nil }

// Set does nothing.
func (NopJobCache) Set(context.Context, *model.Job) error { return nil }

// Invalidate does nothing.
func (NopJobCache) Invalidate(context.Context, *model.Job) error { return nil }
