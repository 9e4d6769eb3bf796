package risk

import (
	"context"
	"fmt"

	"climate-risk/internal/calfire"
	"climate-risk/internal/logger"
)

// ZoneSource：火灾危险分区来源（生产为 *calfire.Client）
type ZoneSource interface {
	QueryPoint(ctx context.Context, lat, lon float64) ([]calfire.Feature, error)
}

type WildfireAssessor struct {
	src ZoneSource
}

func NewWildfireAssessor(src ZoneSource) *WildfireAssessor { return &WildfireAssessor{src: src} }

func (w *WildfireAssessor) Name() string { return "wildfire" }

// Assess 取首个命中分区分级；未命中任何分区视为 Minimal
func (w *WildfireAssessor) Assess(ctx context.Context, loc Location) Verdict {
	lat, lon, ok := loc.Coords()
	if !ok {
		return NoLocation("")
	}
	features, err := w.src.QueryPoint(ctx, lat, lon)
	if err != nil {
		logger.L().Error("wildfire_assess_error", "lat", lat, "lon", lon, "err", err)
		return Failed("Unable to retrieve wildfire data: ", err)
	}
	if len(features) == 0 {
		return Verdict{
			Available:   true,
			Level:       0,
			Description: DescMinimal,
			Details:     "Property is not located in a designated fire hazard severity zone.",
		}
	}
	a := features[0].Attributes
	logger.L().Debug("wildfire_hazard_class", "class", a.HazClass, "code", a.HazCode)
	return ClassifyWildfire(a.HazClass, a.HazCode)
}

// 文档注释：FHSZ 分级
// 约束：名称优先于编码判断；空名称或 Non-Wildland/Non-Urban 直接视为 Minimal；未识别名称降级为 Low。
func ClassifyWildfire(hazClass string, hazCode int) Verdict {
	var level int
	var details string
	switch {
	case hazClass == "" || hazClass == "Non-Wildland/Non-Urban":
		level, details = 0, "Property is in a non-wildland/non-urban area with minimal wildfire risk."
	case hazClass == "Moderate" || hazCode == 1:
		level, details = 2, "Property is in a Moderate Fire Hazard Severity Zone. Some wildfire risk exists based on fuel loading, slope, and fire weather conditions."
	case hazClass == "High" || hazCode == 2:
		level, details = 3, "Property is in a High Fire Hazard Severity Zone. Significant wildfire risk based on fuel loading, slope, and fire weather patterns. Defensible space and ignition-resistant construction recommended."
	case hazClass == "Very High" || hazCode == 3:
		level, details = 4, "Property is in a Very High Fire Hazard Severity Zone. Extreme wildfire risk. Defensible space, ignition-resistant construction, and evacuation planning are critical."
	default:
		level, details = 1, fmt.Sprintf("Property is in fire hazard zone: %s. Some wildfire risk may exist.", hazClass)
	}
	return Verdict{
		Available:   true,
		Level:       level,
		Description: LevelDescription(level),
		Details:     details,
		RawData:     map[string]any{"hazardClass": hazClass, "hazardCode": hazCode},
	}
}
