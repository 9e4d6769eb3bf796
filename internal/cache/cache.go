// 包 cache：按地址缓存多灾种结果，固定 30 天有效期；后端可选内存/Redis/PostgreSQL
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"
	"climate-risk/internal/risk"

	"github.com/cespare/xxhash/v2"
)

const (
	KeyPrefix     = "climate_risk_"
	DefaultMaxAge = 30 * 24 * time.Hour
)

// Entry：缓存条目，timestamp 为写入时刻（epoch 毫秒）
type Entry struct {
	Data      risk.Bundle `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Backend：键值存储后端；未命中返回 ok=false 且 err=nil
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// Key 由地址文本生成缓存键：规范化（去首尾空白、小写、合并空白）后取 xxhash64
func Key(address string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	return KeyPrefix + strconv.FormatUint(xxhash.Sum64String(norm), 10)
}

// Cutoff 过期分界（epoch 毫秒）：写入时间不晚于该值的条目已过期
func Cutoff(now time.Time, maxAge time.Duration) int64 {
	return now.UnixMilli() - maxAge.Milliseconds()
}

// Expired 读取与批量清理共用的过期判定
func Expired(ts, cutoff int64) bool { return ts <= cutoff }

// 文档注释：地址缓存
// 背景：同一房源地址在有效期内重复浏览时直接复用结果，避免重复访问外部气候接口。
// 约束：过期条目在读取时删除并视为未命中；后端错误仅记录日志并按未命中处理，不向调用方抛出。
type Cache struct {
	b      Backend
	maxAge time.Duration
	now    func() time.Time
}

func New(b Backend, maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{b: b, maxAge: maxAge, now: time.Now}
}

func (c *Cache) Get(ctx context.Context, address string) (*risk.Bundle, bool) {
	key := Key(address)
	e, ok, err := c.b.Get(ctx, key)
	if err != nil {
		logger.L().Error("cache_get_error", "backend", c.b.Name(), "err", err)
		metrics.CacheMissesTotal.WithLabelValues(c.b.Name()).Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheMissesTotal.WithLabelValues(c.b.Name()).Inc()
		return nil, false
	}
	if Expired(e.Timestamp, Cutoff(c.now(), c.maxAge)) {
		logger.L().Debug("cache_stale", "key", key, "timestamp", e.Timestamp)
		if err := c.b.Delete(ctx, key); err != nil {
			logger.L().Error("cache_delete_error", "backend", c.b.Name(), "err", err)
		}
		metrics.CacheMissesTotal.WithLabelValues(c.b.Name()).Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues(c.b.Name()).Inc()
	return &e.Data, true
}

func (c *Cache) Set(ctx context.Context, address string, b risk.Bundle) {
	key := Key(address)
	if err := c.b.Set(ctx, key, Entry{Data: b, Timestamp: c.now().UnixMilli()}); err != nil {
		logger.L().Error("cache_set_error", "backend", c.b.Name(), "err", err)
	}
}

func (c *Cache) Remove(ctx context.Context, address string) {
	if err := c.b.Delete(ctx, Key(address)); err != nil {
		logger.L().Error("cache_delete_error", "backend", c.b.Name(), "err", err)
	}
}
