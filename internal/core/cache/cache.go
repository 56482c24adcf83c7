// Package cache keeps decoded question sets in Redis in front of the SQL store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solatis/formkeeper/internal/types"
)

// QuestionSetCache stores question sets by id. Get returns nil, nil on a miss.
type QuestionSetCache interface {
	Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error)
	Set(ctx context.Context, set *types.QuestionSet) error
	Delete(ctx context.Context, id types.QuestionSetID) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) QuestionSetCache {
	return &redisCache{client: client, ttl: ttl}
}

// Key is the Redis key holding a question set.
func Key(id types.QuestionSetID) string {
	return fmt.Sprintf("formkeeper:question_set:%s", id)
}

func (c *redisCache) Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var set types.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode cached question set %s: %w", id, err)
	}
	return &set, nil
}

func (c *redisCache) Set(ctx context.Context, set *types.QuestionSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(set.QuestionSetID), data, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, id types.QuestionSetID) error {
	return c.client.Del(ctx, Key(id)).Err()
}

type nopCache struct{}

// Nop returns a cache that never holds anything.
func Nop() QuestionSetCache { return nopCache{} }

func (nopCache) Get(context.Context, types.QuestionSetID) (*types.QuestionSet, error) {
	return nil, nil
}
func (nopCache) Set(context.Context, *types.QuestionSet) error     { return nil }
func (nopCache) Delete(context.Context, types.QuestionSetID) error { return nil }
