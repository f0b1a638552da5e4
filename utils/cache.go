// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"parkventure/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (availability responses).
	CacheClient *redis.Client
	// WebhookCacheClient is the dedicated client for webhook event dedupe.
	WebhookCacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitWebhookCache initializes the Redis client used to remember
// already-processed gateway event ids.
func InitWebhookCache() {
	WebhookCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWebhookDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := WebhookCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Webhook Cache): %v", err)
	}
}

// GetWebhookCacheClient returns the webhook dedupe client.
func GetWebhookCacheClient() *redis.Client {
	if WebhookCacheClient == nil {
		InitWebhookCache()
	}
	return WebhookCacheClient
}
