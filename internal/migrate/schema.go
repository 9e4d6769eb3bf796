package migrate

import (
	"context"
	"database/sql"

	"climate-risk/internal/logger"
)

// 背景：首次运行自动创建地址缓存表与时间索引
// 约束：使用 IF NOT EXISTS 保持幂等；仅在 CACHE_BACKEND=postgres 时调用
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _climate_risk_cache (
            key TEXT PRIMARY KEY,
            data JSONB NOT NULL,
            ts BIGINT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_climate_risk_cache_ts ON _climate_risk_cache(ts)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
