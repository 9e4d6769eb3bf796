package risk

import "context"

const coastalThreshold = 0.15 // 约 10 英里（度）

// 加州海岸近似包围盒：minLat, maxLat, minLon, maxLon（maxLon 未含阈值）
var coastalBoxes = [][4]float64{
	{37.5, 42, -124.5, -123.5}, // 北加州
	{37, 38.5, -123, -122},     // 湾区
	{34.5, 37, -122.5, -120},   // 中部海岸
	{32.5, 34.5, -120, -117},   // 南加州
}

// IsNearCaliforniaCoast 粗略判断是否位于加州海岸约 10 英里内；纯函数，闭区间
func IsNearCaliforniaCoast(lat, lon float64) bool {
	for _, b := range coastalBoxes {
		if lat >= b[0] && lat <= b[1] && lon >= b[2] && lon <= b[3]+coastalThreshold {
			return true
		}
	}
	return false
}

// SeaLevelAssessor：海平面上升风险；海岸带数据尚未接入，近海岸返回 Data pending
type SeaLevelAssessor struct{}

func (SeaLevelAssessor) Name() string { return "sea_level_rise" }

func (SeaLevelAssessor) Assess(_ context.Context, loc Location) Verdict {
	lat, lon, ok := loc.Coords()
	if !ok {
		return NoLocation("")
	}
	if !IsNearCaliforniaCoast(lat, lon) {
		return Verdict{Available: true, Level: 0, Description: DescNotApplicable, Details: "Property is not in coastal zone."}
	}
	return Verdict{
		Available:   false,
		Level:       0,
		Description: DescDataPending,
		Details:     "Sea level rise vulnerability data for coastal properties will be available in a future update.",
	}
}
