package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"climate-risk/internal/logger"
)

// 文档注释：PostgreSQL 后端
// 背景：需要跨进程、跨重启共享缓存且未部署 Redis 时使用；表结构由 migrate.EnsureSchema 创建。
// 约束：data 以 JSONB 存储；过期行读取时由 Cache 删除，批量清理见 PurgeOlderThan。
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (p *PGStore) Name() string { return "postgres" }

func (p *PGStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var raw []byte
	var e Entry
	err := p.db.QueryRowContext(ctx, "SELECT data, ts FROM _climate_risk_cache WHERE key=$1", key).Scan(&raw, &e.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if err := json.Unmarshal(raw, &e.Data); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (p *PGStore) Set(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		"INSERT INTO _climate_risk_cache(key, data, ts) VALUES($1, $2, $3) ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, ts=EXCLUDED.ts",
		key, b, e.Timestamp)
	return err
}

func (p *PGStore) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM _climate_risk_cache WHERE key=$1", key)
	return err
}

// PurgeOlderThan 删除按 maxAge 已过期的行，返回删除行数
func (p *PGStore) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	return p.PurgeBefore(ctx, Cutoff(time.Now(), maxAge))
}

// PurgeBefore 删除 ts <= cutoff 的行；与 Cache.Get 使用同一判定
func (p *PGStore) PurgeBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := p.db.ExecContext(ctx, "DELETE FROM _climate_risk_cache WHERE ts <= $1", cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.L().Info("cache_purge_done", "rows", n, "cutoff_ms", cutoff)
	return n, nil
}
