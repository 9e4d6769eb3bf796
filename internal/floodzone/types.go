package floodzone

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 文档注释：洪水区数据集的最小数据结构
// 背景：FEMA 洪水区 GeoJSON 一次加载、进程内常驻；每个要素保留区代码、风险标签与几何，供逐要素判定。
// 约束：几何仅 Polygon/MultiPolygon 参与判定；其他类型或缺失几何保留为 nil/原值，判定时视为未命中。
type Feature struct {
	Zone       string
	Tag        RiskTag
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// 加载结果快照：加载后只读，可在并发查询间共享
type Dataset struct {
	Features []Feature
	LoadedAt time.Time
}

// RiskTag：数据集 risk_level 属性（固定枚举）
type RiskTag string

const (
	TagMinimal  RiskTag = "minimal"
	TagLow      RiskTag = "low"
	TagModerate RiskTag = "moderate"
	TagHigh     RiskTag = "high"
	TagVeryHigh RiskTag = "very_high"
)

// Rank：严重度全序 minimal < low < moderate < high < very_high；未知标签按 minimal 处理
func (t RiskTag) Rank() int {
	switch t {
	case TagVeryHigh:
		return 4
	case TagHigh:
		return 3
	case TagModerate:
		return 2
	case TagLow:
		return 1
	default:
		return 0
	}
}

// Match：点落在要素外环内且不在任何洞内时产生的命中
type Match struct {
	Zone       string
	Tag        RiskTag
	Properties geojson.Properties
}
