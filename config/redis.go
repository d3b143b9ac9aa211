package config

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOptions builds client options for the settlement lock store.
// Timeouts are short: a lock call that stalls should fail over to in-process
// locking rather than hold a payment request open.
func RedisOptions(s *Settings) *redis.Options {
	return &redis.Options{
		Addr:         s.RedisAddr,
		Password:     s.RedisPassword,
		DB:           s.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   2,
	}
}

// ConnectRedis returns a connected client, or nil when Redis is unreachable
func ConnectRedis(s *Settings) *redis.Client {
	client := redis.NewClient(RedisOptions(s))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: Redis connection failed addr=%s: %v", s.RedisAddr, err)
		log.Println("Settlement locks will fall back to in-process locking")
		client.Close()
		return nil
	}

	log.Printf("Connected to Redis addr=%s db=%d", s.RedisAddr, s.RedisDB)
	return client
}

// RedisHealthy pings the client; a nil client is reported as not in use
func RedisHealthy(ctx context.Context, client *redis.Client) string {
	if client == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return "unreachable"
	}
	return "connected"
}

// CloseRedis closes the client if there is one
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
}
