package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-resume-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const projectionKeyPrefix = "resume:projection:"

// projectionCache is a read-through cache for resolved share projections.
// Entries are invalidated on every persisted change to the source resume;
// the TTL is only a backstop.
type projectionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProjectionCache(rdb *redis.Client, ttl time.Duration) domain.ProjectionCache {
	return &projectionCache{rdb: rdb, ttl: ttl}
}

func (c *projectionCache) Get(ctx context.Context, token string) (*domain.PublicResume, error) {
	raw, err := c.rdb.Get(ctx, projectionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var view domain.PublicResume
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *projectionCache) Set(ctx context.Context, token string, view *domain.PublicResume) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, projectionKeyPrefix+token, raw, c.ttl).Err()
}

func (c *projectionCache) Invalidate(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, projectionKeyPrefix+token).Err()
}
