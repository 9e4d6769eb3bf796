package floodzone

import (
	"context"
	"errors"
	"testing"

	"climate-risk/internal/risk"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectHighest(t *testing.T) {
	low := Match{Zone: "B", Tag: TagLow}
	vh := Match{Zone: "VE", Tag: TagVeryHigh}
	mod := Match{Zone: "X", Tag: TagModerate}
	orders := [][]Match{
		{low, vh, mod}, {low, mod, vh}, {vh, low, mod},
		{vh, mod, low}, {mod, low, vh}, {mod, vh, low},
	}
	for _, o := range orders {
		m, ok := SelectHighest(o)
		require.True(t, ok)
		assert.Equal(t, "VE", m.Zone)
	}

	_, ok := SelectHighest(nil)
	assert.False(t, ok)

	// 并列取最先出现
	m, _ := SelectHighest([]Match{{Zone: "AE", Tag: TagHigh}, {Zone: "AO", Tag: TagHigh}})
	assert.Equal(t, "AE", m.Zone)

	// 未知标签按 minimal
	m, _ = SelectHighest([]Match{{Zone: "Q", Tag: "extreme"}, {Zone: "B", Tag: TagLow}})
	assert.Equal(t, "B", m.Zone)
	m, _ = SelectHighest([]Match{{Zone: "Q", Tag: "extreme"}, {Zone: "C", Tag: TagMinimal}})
	assert.Equal(t, "Q", m.Zone)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		zone  string
		tag   RiskTag
		level int
		desc  string
	}{
		{"VE", TagVeryHigh, 4, risk.DescSevere},
		{"V", TagHigh, 4, risk.DescSevere},
		{"AE", TagHigh, 3, risk.DescHigh},
		{"AO", TagLow, 3, risk.DescHigh},
		{"X", TagModerate, 2, risk.DescModerate},
		{"0.2 PCT ANNUAL CHANCE FLOOD HAZARD", TagModerate, 2, risk.DescModerate},
		{"B", TagLow, 1, risk.DescLow},
		{"D", TagMinimal, 1, risk.DescLow},
		{"", "", 1, risk.DescLow},
	}
	for _, c := range cases {
		v := Classify(c.zone, c.tag)
		assert.True(t, v.Available, c.zone)
		assert.Equal(t, c.level, v.Level, c.zone)
		assert.Equal(t, c.desc, v.Description, c.zone)
		require.NotNil(t, v.IsInFloodZone)
		assert.True(t, *v.IsInFloodZone)
		assert.Contains(t, v.Details, "FEMA Flood Zone "+c.zone)
		assert.Equal(t, c.zone, v.RawData["floodZone"])
		assert.Equal(t, string(c.tag), v.RawData["riskLevel"])
		assert.Equal(t, c.tag.Rank(), v.RawData["tagLevel"])
	}
}

func TestNotMapped(t *testing.T) {
	v := NotMapped()
	assert.True(t, v.Available)
	assert.Equal(t, 0, v.Level)
	assert.Equal(t, risk.DescMinimal, v.Description)
	require.NotNil(t, v.IsInFloodZone)
	assert.False(t, *v.IsInFloodZone)
}

func TestFindMatchesKeepsDatasetOrder(t *testing.T) {
	ds := &Dataset{Features: []Feature{
		{Zone: "X", Tag: TagModerate, Geometry: orb.Polygon{square(0, 0, 10, 10)}},
		{Zone: "D", Geometry: nil},
		{Zone: "AE", Tag: TagHigh, Geometry: orb.MultiPolygon{{square(20, 20, 30, 30)}, {square(2, 2, 8, 8)}}},
		{Zone: "VE", Tag: TagVeryHigh, Geometry: orb.Polygon{square(50, 50, 60, 60)}},
	}}
	ms := FindMatches(orb.Point{5, 5}, ds)
	require.Len(t, ms, 2)
	assert.Equal(t, "X", ms[0].Zone)
	assert.Equal(t, "AE", ms[1].Zone)

	assert.Empty(t, FindMatches(orb.Point{40, 40}, ds))
	assert.Nil(t, FindMatches(orb.Point{5, 5}, nil))
}

type stubSource struct {
	ds  *Dataset
	err error
}

func (s stubSource) Load(context.Context) (*Dataset, error) { return s.ds, s.err }

func TestServiceAssess(t *testing.T) {
	ds := &Dataset{Features: []Feature{
		{Zone: "X", Tag: TagModerate, Geometry: orb.Polygon{square(-123, 37, -122, 38)}},
		{Zone: "AE", Tag: TagHigh, Geometry: orb.Polygon{square(-122.6, 37.4, -122.2, 37.9)}},
	}}
	svc := NewService(stubSource{ds: ds})
	ctx := context.Background()
	assert.Equal(t, "flood", svc.Name())

	t.Run("highest tag wins and zone drives level", func(t *testing.T) {
		v := svc.Assess(ctx, risk.At(37.77, -122.42))
		assert.True(t, v.Available)
		assert.Equal(t, 3, v.Level)
		assert.Equal(t, risk.DescHigh, v.Description)
		assert.Equal(t, "AE", v.RawData["floodZone"])
	})

	t.Run("single match", func(t *testing.T) {
		v := svc.Assess(ctx, risk.At(37.1, -122.9))
		assert.Equal(t, 2, v.Level)
		assert.Equal(t, "X", v.RawData["floodZone"])
	})

	t.Run("no match", func(t *testing.T) {
		v := svc.Assess(ctx, risk.At(0, 0))
		assert.True(t, v.Available)
		assert.Equal(t, 0, v.Level)
		assert.Equal(t, risk.DescMinimal, v.Description)
		require.NotNil(t, v.IsInFloodZone)
		assert.False(t, *v.IsInFloodZone)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		v := svc.Assess(ctx, risk.Location{Address: "1 Main St"})
		assert.False(t, v.Available)
		assert.Equal(t, risk.DescNoLocation, v.Description)
	})

	t.Run("lookup", func(t *testing.T) {
		m, ok, err := svc.Lookup(ctx, 37.77, -122.42)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, TagHigh, m.Tag)
	})
}

func TestServiceAssessLoadError(t *testing.T) {
	svc := NewService(stubSource{err: &DatasetUnavailableError{StatusCode: 503, Reason: "Service Unavailable"}})
	v := svc.Assess(context.Background(), risk.At(37.77, -122.42))
	assert.False(t, v.Available)
	assert.Equal(t, 0, v.Level)
	assert.Equal(t, risk.DescError, v.Description)
	assert.Equal(t, "Unable to load flood zone data: failed to load flood data: 503 Service Unavailable. Check that FLOOD_ZONES_URL is reachable.", v.Details)

	_, _, err := NewService(stubSource{err: errors.New("boom")}).Lookup(context.Background(), 1, 1)
	assert.EqualError(t, err, "boom")
}
