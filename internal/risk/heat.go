package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"climate-risk/internal/caladapt"
	"climate-risk/internal/logger"
)

var (
	ErrNoTemperatureData = errors.New("no temperature data returned from Cal-Adapt")
	ErrNoTemperatureStat = errors.New("unable to calculate temperature statistics")
)

// SeriesSource：世纪中期气温序列来源（生产为 *caladapt.Client）
type SeriesSource interface {
	MidCenturySeries(ctx context.Context, lat, lon float64) (*caladapt.SeriesResponse, error)
}

// HeatAssessor：极端高温风险，基于 Cal-Adapt 2050-2060 年均最高气温
type HeatAssessor struct {
	src SeriesSource
}

func NewHeatAssessor(src SeriesSource) *HeatAssessor { return &HeatAssessor{src: src} }

func (h *HeatAssessor) Name() string { return "heat" }

func (h *HeatAssessor) Assess(ctx context.Context, loc Location) Verdict {
	lat, lon, ok := loc.Coords()
	if !ok {
		return NoLocation("")
	}
	series, err := h.src.MidCenturySeries(ctx, lat, lon)
	if err == nil {
		var avgK float64
		avgK, err = AverageYearlyMax(series)
		if err == nil {
			return ClassifyHeat(KelvinToFahrenheit(avgK))
		}
	}
	logger.L().Error("heat_assess_error", "lat", lat, "lon", lon, "err", err)
	return Failed("Unable to retrieve extreme heat data: ", err)
}

// AverageYearlyMax 对每年的最高值（行内下标 2）求均值；缺失或为 0 的年份跳过
func AverageYearlyMax(s *caladapt.SeriesResponse) (float64, error) {
	if s == nil || len(s.Data) == 0 {
		return 0, ErrNoTemperatureData
	}
	var total float64
	var n int
	for _, row := range s.Data {
		if len(row) > 2 && row[2] != 0 {
			total += row[2]
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoTemperatureStat
	}
	return total / float64(n), nil
}

func KelvinToFahrenheit(k float64) float64 { return (k-273.15)*9/5 + 32 }

// 四舍五入（.5 向上），与展示层取整一致
func roundHalfUp(f float64) int { return int(math.Floor(f + 0.5)) }

// 文档注释：按预估年均最高气温（°F）分级
// 约束：<95 Minimal，<100 Low，<105 Moderate，<110 High，其余 Severe；区间左闭右开。
func ClassifyHeat(avgMaxTempF float64) Verdict {
	t := roundHalfUp(avgMaxTempF)
	var level int
	var note string
	switch {
	case avgMaxTempF < 95:
		level, note = 0, "Moderate summer heat expected."
	case avgMaxTempF < 100:
		level, note = 1, "Hot summers expected, adequate cooling recommended."
	case avgMaxTempF < 105:
		level, note = 2, "Very hot summers expected. Reliable air conditioning essential."
	case avgMaxTempF < 110:
		level, note = 3, "Extreme heat expected regularly. Significant cooling infrastructure needed."
	default:
		level, note = 4, "Dangerous heat levels expected. May impact habitability during summer months."
	}
	return Verdict{
		Available:   true,
		Level:       level,
		Description: LevelDescription(level),
		Details:     fmt.Sprintf("Projected average maximum temperature of %d°F by mid-century (2050-2060). %s", t, note),
		RawData:     map[string]any{"avgMaxTempF": t},
	}
}
