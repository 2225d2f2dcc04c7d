package queue

import (
	"context"
	"log"

	"rsih_portal/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RDB stays nil when no Redis address is configured; callers fall back to
// their no-op implementations.
var RDB *redis.Client

func ConnectRedis() {
	if !config.AppConfig.RedisEnabled() {
		log.Println("INFO: REDIS_ADDR not set, running without catalog cache, login limiter and mail retry queue")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Println("Redis connection closed.")
	}
}
