package rdx

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

var ctx = context.Background()

// Init creates the shared redis connection. Called once from main.
func Init() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return Conn.Ping(ctx).Err()
}

func RdxSet(key, value string) error {
	return Conn.Set(ctx, key, value, 0).Err()
}

func RdxSetWithTTL(key, value string, ttl time.Duration) error {
	return Conn.Set(ctx, key, value, ttl).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(ctx, key).Result()
}

func RdxDel(key string) (int64, error) {
	return Conn.Del(ctx, key).Result()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(ctx, hash, field, value).Err()
}

func RdxHget(hash, field string) (string, error) {
	return Conn.HGet(ctx, hash, field).Result()
}
