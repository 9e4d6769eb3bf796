package floodzone

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func square(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}
}

func TestRingContains(t *testing.T) {
	ring := square(0, 0, 10, 10)
	assert.True(t, RingContains(orb.Point{5, 5}, ring))
	assert.True(t, RingContains(orb.Point{0.001, 9.999}, ring))
	assert.False(t, RingContains(orb.Point{-1, 5}, ring))
	assert.False(t, RingContains(orb.Point{11, 5}, ring))
	assert.False(t, RingContains(orb.Point{5, 10.5}, ring))
	assert.False(t, RingContains(orb.Point{5, 5}, nil))
}

func TestRingContainsBoundaryIsDeterministic(t *testing.T) {
	ring := square(0, 0, 10, 10)
	// 半开规则：下边与左边计入，上边与右边不计入
	assert.True(t, RingContains(orb.Point{5, 0}, ring))
	assert.True(t, RingContains(orb.Point{0, 5}, ring))
	assert.False(t, RingContains(orb.Point{5, 10}, ring))
	assert.False(t, RingContains(orb.Point{10, 5}, ring))
}

func TestRingContainsUnclosedRing(t *testing.T) {
	// 首尾不重复时按环绕闭合处理
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.True(t, RingContains(orb.Point{5, 5}, ring))
	assert.False(t, RingContains(orb.Point{15, 5}, ring))
}

func TestRingContainsConcave(t *testing.T) {
	// U 形：缺口处不命中
	ring := orb.Ring{{0, 0}, {9, 0}, {9, 9}, {6, 9}, {6, 3}, {3, 3}, {3, 9}, {0, 9}, {0, 0}}
	assert.True(t, RingContains(orb.Point{1, 5}, ring))
	assert.True(t, RingContains(orb.Point{7, 5}, ring))
	assert.True(t, RingContains(orb.Point{4.5, 1}, ring))
	assert.False(t, RingContains(orb.Point{4.5, 6}, ring))
}

func TestPolygonWithHole(t *testing.T) {
	poly := orb.Polygon{square(0, 0, 10, 10), square(4, 4, 6, 6)}
	assert.False(t, PolygonContains(orb.Point{5, 5}, poly), "inside hole")
	assert.True(t, PolygonContains(orb.Point{2, 2}, poly))
	assert.True(t, GeometryContains(orb.Point{8, 5}, poly))
	assert.False(t, GeometryContains(orb.Point{5, 5}, poly))
	assert.False(t, PolygonContains(orb.Point{5, 5}, orb.Polygon{}))
}

func TestMultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{
		{square(0, 0, 10, 10), square(4, 4, 6, 6)},
		{square(20, 20, 30, 30)},
	}
	assert.True(t, GeometryContains(orb.Point{25, 25}, mp))
	assert.True(t, GeometryContains(orb.Point{1, 1}, mp))
	assert.False(t, GeometryContains(orb.Point{15, 15}, mp))
	assert.False(t, GeometryContains(orb.Point{5, 5}, mp), "hole of first polygon")
}

func TestMultiPolygonHoleFallsThroughToNextPolygon(t *testing.T) {
	// 第一个子多边形的洞里嵌着第二个子多边形（岛中岛）
	mp := orb.MultiPolygon{
		{square(0, 0, 10, 10), square(2, 2, 8, 8)},
		{square(4, 4, 6, 6)},
	}
	assert.True(t, GeometryContains(orb.Point{5, 5}, mp))
	assert.False(t, GeometryContains(orb.Point{3, 3}, mp))
}

func TestGeometryContainsUnsupported(t *testing.T) {
	pt := orb.Point{1, 1}
	assert.False(t, GeometryContains(pt, nil))
	assert.False(t, GeometryContains(pt, orb.Point{1, 1}))
	assert.False(t, GeometryContains(pt, orb.LineString{{0, 0}, {2, 2}}))
	assert.False(t, GeometryContains(pt, orb.Polygon(nil)))
	assert.False(t, GeometryContains(pt, orb.MultiPolygon{}))
	assert.False(t, GeometryContains(pt, orb.Collection{orb.Polygon{square(0, 0, 2, 2)}}))
}

// 随机凸多边形：顶点均匀分布在圆上（相邻角间隔 < π，圆心严格在内部）
func randomConvex(r *rand.Rand) (orb.Ring, orb.Point, float64) {
	n := 3 + r.Intn(12)
	c := orb.Point{r.Float64()*360 - 180, r.Float64()*160 - 80}
	radius := 0.01 + r.Float64()*5
	step := 2 * math.Pi / float64(n)
	ring := make(orb.Ring, 0, n+1)
	start := r.Float64() * 2 * math.Pi
	for i := 0; i < n; i++ {
		a := start + float64(i)*step + r.Float64()*step*0.5
		ring = append(ring, orb.Point{c[0] + radius*math.Cos(a), c[1] + radius*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return ring, c, radius
}

func TestConvexPolygonProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		ring, c, radius := randomConvex(r)
		poly := orb.Polygon{ring}
		n := len(ring) - 1
		for s := 0; s < 20; s++ {
			// 三角形 (c, v_k, v_k+1) 内部点
			k := r.Intn(n)
			a := 0.01 + r.Float64()*0.45
			b := 0.01 + r.Float64()*0.45
			in := orb.Point{
				c[0] + a*(ring[k][0]-c[0]) + b*(ring[k+1][0]-c[0]),
				c[1] + a*(ring[k][1]-c[1]) + b*(ring[k+1][1]-c[1]),
			}
			if !assert.True(t, GeometryContains(in, poly), "iter %d interior %v", iter, in) {
				return
			}
			// 外接圆外的点
			ang := r.Float64() * 2 * math.Pi
			d := radius * (1.1 + r.Float64()*3)
			out := orb.Point{c[0] + d*math.Cos(ang), c[1] + d*math.Sin(ang)}
			if !assert.False(t, GeometryContains(out, poly), "iter %d exterior %v", iter, out) {
				return
			}
		}
	}
}
