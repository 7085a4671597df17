package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillbridge/models"

	"github.com/go-redis/redis/v8"
)

const maxCacheWriteAttempts = 3

// RedisReputationCache stores reputations as JSON under "reputation:<providerID>".
type RedisReputationCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisReputationCache(client *redis.Client, ttl time.Duration) *RedisReputationCache {
	return &RedisReputationCache{Client: client, TTL: ttl}
}

type cachedReputation struct {
	models.Reputation
	Seq int64 `json:"seq"`
}

func reputationKey(providerID string) string {
	return "reputation:" + providerID
}

func (c *RedisReputationCache) Get(ctx context.Context, providerID string) (*models.Reputation, error) {
	raw, err := c.Client.Get(ctx, reputationKey(providerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var entry cachedReputation
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &entry.Reputation, nil
}

// Set writes rep unless the cached entry was computed from more records.
// The read and the write run in one WATCH transaction.
func (c *RedisReputationCache) Set(ctx context.Context, rep models.Reputation, seq int64) error {
	key := reputationKey(rep.ProviderID)
	raw, err := json.Marshal(cachedReputation{Reputation: rep, Seq: seq})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	txf := func(tx *redis.Tx) error {
		held, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var entry cachedReputation
			if json.Unmarshal(held, &entry) == nil && entry.Seq > seq {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.TTL)
			return nil
		})
		return err
	}
	for i := 0; i < maxCacheWriteAttempts; i++ {
		err = c.Client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
