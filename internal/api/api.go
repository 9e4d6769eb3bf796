// 包 api：集中注册 HTTP API 路由，主入口挂载到 API_BASE 前缀
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"climate-risk/internal/cache"
	"climate-risk/internal/floodzone"
	"climate-risk/internal/metrics"
	"climate-risk/internal/risk"
)

// Deps：路由依赖；Cache 与 Loader 可为空
type Deps struct {
	Fetcher *risk.Fetcher
	Flood   risk.Assessor
	Cache   *cache.Cache
	Loader  *floodzone.Loader
}

// 解析 lat/lon/address；无法解析的坐标视为缺失，由各灾种返回不可用结果
func parseLocation(r *http.Request) risk.Location {
	q := r.URL.Query()
	var loc risk.Location
	if f, err := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64); err == nil {
		loc.Latitude = &f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(q.Get("lon")), 64); err == nil {
		loc.Longitude = &f
	}
	loc.Address = strings.TrimSpace(q.Get("address"))
	return loc
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

// BuildRoutes 返回独立 ServeMux：/risk、/flood、/stats
func BuildRoutes(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/risk", func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues("risk").Inc()
		ctx := r.Context()
		loc := parseLocation(r)
		if loc.Address != "" && d.Cache != nil {
			if b, ok := d.Cache.Get(ctx, loc.Address); ok {
				writeJSON(w, b)
				return
			}
		}
		b := d.Fetcher.FetchAll(ctx, loc)
		if loc.Address != "" && d.Cache != nil && cacheable(loc, b) {
			d.Cache.Set(ctx, loc.Address, b)
		}
		writeJSON(w, b)
	})
	mux.HandleFunc("/flood", func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues("flood").Inc()
		writeJSON(w, d.Flood.Assess(r.Context(), parseLocation(r)))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues("stats").Inc()
		m := map[string]any{"flood_dataset_loaded": false, "features": 0}
		if d.Loader != nil {
			if ds := d.Loader.Loaded(); ds != nil {
				m["flood_dataset_loaded"] = true
				m["features"] = len(ds.Features)
				m["loaded_at"] = ds.LoadedAt
			}
		}
		writeJSON(w, m)
	})
	return mux
}

// 无有效坐标，或含错误/缺坐标结果的 Bundle 不入缓存
func cacheable(loc risk.Location, b risk.Bundle) bool {
	if _, _, ok := loc.Coords(); !ok {
		return false
	}
	for _, v := range []*risk.Verdict{b.Wildfire, b.Flood, b.SeaLevelRise, b.Heat} {
		if v != nil && (v.Description == risk.DescError || v.Description == risk.DescNoLocation) {
			return false
		}
	}
	return true
}
