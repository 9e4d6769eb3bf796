package floodzone

import (
	"fmt"
	"strings"

	"climate-risk/internal/logger"
	"climate-risk/internal/risk"

	"github.com/paulmach/orb"
)

// FindMatches 线性扫描全部要素，按数据集顺序返回命中（不排序）
func FindMatches(pt orb.Point, ds *Dataset) []Match {
	if ds == nil {
		return nil
	}
	var out []Match
	for i := range ds.Features {
		f := &ds.Features[i]
		if GeometryContains(pt, f.Geometry) {
			out = append(out, Match{Zone: f.Zone, Tag: f.Tag, Properties: f.Properties})
		}
	}
	return out
}

// SelectHighest 按风险标签严重度取最高命中；并列时保留最先出现者
func SelectHighest(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Tag.Rank() > best.Tag.Rank() {
			best = m
		}
	}
	return best, true
}

// ZoneLevel 按 FEMA 区代码前缀推导等级：V*→4，A*→3，X 或含 0.2→2，其余→1
func ZoneLevel(zone string) int {
	switch {
	case strings.HasPrefix(zone, "V"):
		return 4
	case strings.HasPrefix(zone, "A"):
		return 3
	case zone == "X" || strings.Contains(zone, "0.2"):
		return 2
	default:
		return 1
	}
}

// 文档注释：洪水区命中结果分级
// 背景：等级与描述均由区代码前缀决定（FEMA 口径）；数据集自带的 risk_level 只用于多重命中时择优。
// 约束：两个来源不一致时不做裁决，仅记录告警并在 rawData 中同时保留 riskLevel 与 tagLevel。
func Classify(zone string, tag RiskTag) risk.Verdict {
	level := ZoneLevel(zone)
	var details string
	switch level {
	case 4:
		details = fmt.Sprintf("Property is in FEMA Flood Zone %s, a high-risk coastal area with wave action (1%% annual chance of flooding). Flood insurance is required for federally backed mortgages. Elevated construction required.", zone)
	case 3:
		details = fmt.Sprintf("Property is in FEMA Flood Zone %s, a Special Flood Hazard Area with 1%% annual chance of flooding. Flood insurance is required for federally backed mortgages.", zone)
	case 2:
		details = fmt.Sprintf("Property is in FEMA Flood Zone %s, a moderate-risk area (0.2%% annual chance of flooding). Flood insurance is recommended but not typically required.", zone)
	default:
		details = fmt.Sprintf("Property is in FEMA Flood Zone %s.", zone)
	}
	if tag.Rank() != level {
		logger.L().Warn("flood_severity_mismatch", "zone", zone, "risk_level", string(tag), "zone_level", level, "tag_level", tag.Rank())
	}
	return risk.Verdict{
		Available:     true,
		Level:         level,
		Description:   risk.LevelDescription(level),
		Details:       details,
		IsInFloodZone: risk.BoolPtr(level > 0),
		RawData: map[string]any{
			"floodZone": zone,
			"riskLevel": string(tag),
			"tagLevel":  tag.Rank(),
		},
	}
}

// NotMapped 未命中任何洪水区：有效且确定的结果，而非数据缺失
func NotMapped() risk.Verdict {
	return risk.Verdict{
		Available:     true,
		Level:         0,
		Description:   risk.DescMinimal,
		Details:       "Property is not in a mapped FEMA flood zone. Note: Flood risk can exist outside mapped zones.",
		IsInFloodZone: risk.BoolPtr(false),
	}
}
