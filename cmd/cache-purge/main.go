package main

import (
	"context"
	"os"

	"climate-risk/internal/cache"
	"climate-risk/internal/logger"
	"climate-risk/internal/migrate"
	"climate-risk/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：清理 PostgreSQL 地址缓存中的过期行
// 背景：读取路径只删除被访问到的过期条目，长期不访问的行由本工具定期清理（可配合 cron）。
// 约束：有效期取 CACHE_MAX_AGE，默认 30 天。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	ctx := context.Background()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	n, err := cache.NewPGStore(db).PurgeOlderThan(ctx, utils.EnvDuration("CACHE_MAX_AGE", cache.DefaultMaxAge))
	if err != nil {
		l.Error("cache_purge_error", "err", err)
		os.Exit(1)
	}
	l.Info("cache_purge_ok", "rows", n)
}
