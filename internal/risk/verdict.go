// 包 risk：气候风险判定结果模型与各灾种的阈值分级
package risk

import (
	"context"
	"errors"
	"math"
)

// 描述取值：对外展示的固定等级文本
const (
	DescMinimal       = "Minimal"
	DescLow           = "Low"
	DescModerate      = "Moderate"
	DescHigh          = "High"
	DescSevere        = "Severe"
	DescNotApplicable = "Not applicable"
	DescDataPending   = "Data pending"
	DescError         = "Error fetching data"
	DescNoLocation    = "Location data unavailable"
)

var ErrNoCoordinates = errors.New("coordinates not available")

// 文档注释：单一灾种的判定结果（对外）
// 背景：供展示层渲染徽章与详情；Level 0-4 与 Description 一一对应，Available=false 表示数据缺失或出错。
// 约束：字段名沿用前端约定的 camelCase；IsInFloodZone 仅洪水结果携带；RawData 为来源原始字段。
type Verdict struct {
	Available     bool           `json:"available"`
	Level         int            `json:"level"`
	Description   string         `json:"description"`
	Details       string         `json:"details,omitempty"`
	IsInFloodZone *bool          `json:"isInFloodZone,omitempty"`
	RawData       map[string]any `json:"rawData,omitempty"`
}

// Location：查询入参；坐标可缺失，缺失时各灾种直接返回不可用结果
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// Coords 返回有效坐标；任一缺失或非有限数值时 ok=false
func (l Location) Coords() (lat, lon float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	lat, lon = *l.Latitude, *l.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return 0, 0, false
	}
	return lat, lon, true
}

// At 便捷构造带坐标的 Location
func At(lat, lon float64) Location { return Location{Latitude: &lat, Longitude: &lon} }

// Bundle：一次查询的四类灾种结果
type Bundle struct {
	Wildfire     *Verdict `json:"wildfire"`
	Flood        *Verdict `json:"flood"`
	SeaLevelRise *Verdict `json:"seaLevelRise"`
	Heat         *Verdict `json:"heat"`
}

// Assessor：单一灾种判定源；实现需自行把错误降级为 Verdict，不向调用方抛出
type Assessor interface {
	Name() string
	Assess(ctx context.Context, loc Location) Verdict
}

// NoLocation 坐标缺失时的统一结果
func NoLocation(details string) Verdict {
	return Verdict{Available: false, Level: 0, Description: DescNoLocation, Details: details}
}

// Failed 将错误转换为不可用结果，错误信息嵌入 details
func Failed(prefix string, err error) Verdict {
	return Verdict{Available: false, Level: 0, Description: DescError, Details: prefix + err.Error()}
}

// LevelDescription 数值等级到描述文本
func LevelDescription(level int) string {
	switch {
	case level <= 0:
		return DescMinimal
	case level == 1:
		return DescLow
	case level == 2:
		return DescModerate
	case level == 3:
		return DescHigh
	default:
		return DescSevere
	}
}

// BoolPtr 构造 IsInFloodZone
func BoolPtr(b bool) *bool { return &b }
