// Package utils: Redis connection helper, one place for env reading and the
// optional DB selection.
package utils

import (
	"os"
	"strconv"

	"zoning-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis: open a client from explicit address and password.
// Kept for tests and manual injection; empty address means no client.
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv: open a client from environment variables, honoring
// REDIS_DB. No REDIS_HOST means caching is off and nil is returned; every
// caller treats a nil client as "no cache".
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := host + ":" + port
	pass := os.Getenv("REDIS_PASS")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, _ := strconv.Atoi(v); n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}
