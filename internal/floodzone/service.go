package floodzone

import (
	"context"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"
	"climate-risk/internal/risk"

	"github.com/paulmach/orb"
)

// DatasetSource：数据集来源，生产环境为 *Loader，测试可替换
type DatasetSource interface {
	Load(ctx context.Context) (*Dataset, error)
}

// 文档注释：洪水风险查询服务（分类器边界）
// 背景：编排“确保数据集常驻 → 逐要素判定 → 择优分级”；作为 risk.Assessor 接入多灾种聚合。
// 约束：任何加载/判定错误都在此转换为 available=false 的结果，调用方不会收到原始错误。
type Service struct {
	src DatasetSource
}

func NewService(src DatasetSource) *Service { return &Service{src: src} }

func (s *Service) Name() string { return "flood" }

// Lookup 返回最高严重度命中；ok=false 表示未命中任何要素
func (s *Service) Lookup(ctx context.Context, lat, lon float64) (Match, bool, error) {
	ds, err := s.src.Load(ctx)
	if err != nil {
		return Match{}, false, err
	}
	pt := orb.Point{lon, lat}
	matches := FindMatches(pt, ds)
	logger.L().Debug("flood_lookup", "lat", lat, "lon", lon, "matches", len(matches))
	m, ok := SelectHighest(matches)
	return m, ok, nil
}

// Assess 实现 risk.Assessor
func (s *Service) Assess(ctx context.Context, loc risk.Location) risk.Verdict {
	lat, lon, ok := loc.Coords()
	if !ok {
		metrics.FloodLookupsTotal.WithLabelValues("no_location").Inc()
		logger.L().Debug("flood_lookup_skip", "reason", "no_coordinates")
		return risk.NoLocation("Coordinates not found. Cannot determine flood zone.")
	}
	m, found, err := s.Lookup(ctx, lat, lon)
	if err != nil {
		metrics.FloodLookupsTotal.WithLabelValues("error").Inc()
		logger.L().Error("flood_lookup_error", "lat", lat, "lon", lon, "err", err)
		v := risk.Failed("Unable to load flood zone data: ", err)
		v.Details += ". Check that FLOOD_ZONES_URL is reachable."
		return v
	}
	if !found {
		metrics.FloodLookupsTotal.WithLabelValues("not_mapped").Inc()
		return NotMapped()
	}
	metrics.FloodLookupsTotal.WithLabelValues("match").Inc()
	logger.L().Debug("flood_zone_found", "zone", m.Zone, "risk_level", string(m.Tag))
	return Classify(m.Zone, m.Tag)
}
