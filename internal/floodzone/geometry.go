package floodzone

import "github.com/paulmach/orb"

// 文档注释：点入多边形判定（Even-Odd）
// 背景：对每个洪水区要素执行精确命中判定；支持洞与多面结构。
// 约束：点为 orb.Point{经度, 纬度}（WGS84）；严格不等式且不加容差，边界点结果确定；纯函数，不做 I/O。

// RingContains 射线法判定点是否在环内（奇偶规则，非环绕数）
func RingContains(pt orb.Point, ring orb.Ring) bool {
	x, y := pt[0], pt[1]
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PolygonContains 外环命中且不在洞内视为命中
func PolygonContains(pt orb.Point, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	if !RingContains(pt, poly[0]) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContains(pt, hole) {
			return false
		}
	}
	return true
}

// GeometryContains 按几何类型分派；缺失或不支持的几何一律视为未命中
// 多面：顺序检查各子多边形，外环命中但落在洞内的子多边形被排除，继续检查下一个。
func GeometryContains(pt orb.Point, g orb.Geometry) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return PolygonContains(pt, geom)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if PolygonContains(pt, poly) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
