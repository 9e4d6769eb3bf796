// 包 utils：外部存储连接工具，统一环境变量读取
package utils

import (
	"os"
	"strconv"

	"climate-risk/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB；REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := host + ":" + port
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
