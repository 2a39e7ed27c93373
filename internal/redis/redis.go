package redis

import (
	"context"
	"sync"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
	mu     sync.Mutex
)

func GetClient() *redisv9.Client {
	mu.Lock()
	defer mu.Unlock()
	once.Do(func() {
		client = redisv9.NewClient(&redisv9.Options{
			Addr: config.GetRedisAddr(),
		})
	})
	return client
}

// Ping reports whether the shared client can reach redis.
func Ping(ctx context.Context) error {
	return GetClient().Ping(ctx).Err()
}

// Close closes the shared client, if one was created.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	client = nil
}
