package utils

import (
	"context"
	"time"

	"skillbridge/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	// CacheClient backs the reputation cache.
	CacheClient *redis.Client
	// FeedClient carries engagement change pub/sub.
	FeedClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		GetLogger().Fatal("failed to connect to Redis", zap.String("client", name), zap.Error(err))
	}
	return client
}

// GetCacheClient returns the cache client, connecting on first use.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "cache")
	}
	return CacheClient
}

// GetFeedClient returns the pub/sub client, connecting on first use.
func GetFeedClient() *redis.Client {
	if FeedClient == nil {
		FeedClient = newRedisClient(config.AppConfig.RedisFeedDB, "feed")
	}
	return FeedClient
}
