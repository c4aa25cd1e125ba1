package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hrms:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttlOrDefault(ttl)}
}

func redisKey(namespace, key string) string {
	return keyPrefix + namespace + ":" + key
}

func (r *Redis) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(namespace, key), raw, r.ttl).Err()
}

// Clear deletes every key of the namespace. SCAN keeps the server responsive
// when the namespace is large.
func (r *Redis) Clear(ctx context.Context, namespace string) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+namespace+":*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}
