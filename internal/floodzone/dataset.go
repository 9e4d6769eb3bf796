package floodzone

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrMissingFeatures = errors.New("geojson: missing features array")

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Geometry   json.RawMessage    `json:"geometry"`
	Properties geojson.Properties `json:"properties"`
}

// 文档注释：解析 FeatureCollection 文档为数据集
// 背景：几何按要素单独解析，单个要素的几何缺失或损坏不影响整份数据集。
// 约束：区代码取 FLD_ZONE（兼容 zone）；风险标签取 risk_level 并统一小写；features 缺失视为错误。
func DecodeDataset(r io.Reader) (*Dataset, error) {
	var raw rawCollection
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode flood geojson: %w", err)
	}
	if raw.Features == nil {
		return nil, ErrMissingFeatures
	}
	ds := &Dataset{Features: make([]Feature, 0, len(raw.Features)), LoadedAt: time.Now()}
	for _, rf := range raw.Features {
		props := rf.Properties
		if props == nil {
			props = geojson.Properties{}
		}
		zone := propString(props, "FLD_ZONE")
		if zone == "" {
			zone = propString(props, "zone")
		}
		ds.Features = append(ds.Features, Feature{
			Zone:       strings.TrimSpace(zone),
			Tag:        RiskTag(strings.ToLower(strings.TrimSpace(propString(props, "risk_level")))),
			Geometry:   decodeGeometry(rf.Geometry),
			Properties: props,
		})
	}
	return ds, nil
}

// 非字符串属性按缺失处理（Properties.MustString 遇到非字符串会 panic）
func propString(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

// 缺失、null、无法解析的几何返回 nil，判定期视为未命中
func decodeGeometry(raw json.RawMessage) orb.Geometry {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	g, err := geojson.UnmarshalGeometry(b)
	if err != nil || g == nil {
		return nil
	}
	return g.Geometry()
}
