// 包 calfire：CAL FIRE 火灾危险严重度分区（FHSZ）ArcGIS 点相交查询
package calfire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"

	"golang.org/x/time/rate"
)

const DefaultURL = "https://services.gis.ca.gov/arcgis/rest/services/Environment/Fire_Severity_Zones/MapServer/0/query"

var ErrStatus = errors.New("cal fire api returned non-success status")

// Attributes：仅解析分级需要的字段
type Attributes struct {
	HazClass string `json:"HAZ_CLASS"`
	HazCode  int    `json:"HAZ_CODE"`
	SRA      string `json:"SRA"`
}

type Feature struct {
	Attributes Attributes `json:"attributes"`
}

// ArcGIS 出错时仍返回 200，错误体放在 error 字段
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type QueryResponse struct {
	Features []Feature `json:"features"`
	Error    *apiError `json:"error,omitempty"`
}

type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// New 创建客户端；client 为空时使用 10s 超时；rps<=0 时取 5
func New(endpoint string, client *http.Client, rps float64) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{endpoint: endpoint, http: client, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// 文档注释：查询坐标所在的火灾危险分区
// 背景：esriGeometryPoint + esriSpatialRelIntersects，不返回几何，仅取 HAZ_CLASS/HAZ_CODE/SRA。
// 返回：命中要素列表（可能为空）；ArcGIS 错误体与非 2xx 均返回错误。
func (c *Client) QueryPoint(ctx context.Context, lat, lon float64) ([]Feature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("geometry", fmt.Sprintf("%v,%v", lon, lat))
	q.Set("geometryType", "esriGeometryPoint")
	q.Set("inSR", "4326")
	q.Set("spatialRel", "esriSpatialRelIntersects")
	q.Set("outFields", "HAZ_CLASS,HAZ_CODE,SRA")
	q.Set("returnGeometry", "false")
	q.Set("f", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("calfire", "error").Inc()
		logger.L().Error("calfire_http_error", "err", err)
		return nil, err
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues("calfire").Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues("calfire", "status").Inc()
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	var r QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("calfire", "decode").Inc()
		return nil, fmt.Errorf("decode cal fire response: %w", err)
	}
	if r.Error != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("calfire", "status").Inc()
		return nil, fmt.Errorf("%w: arcgis %d %s", ErrStatus, r.Error.Code, r.Error.Message)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("calfire", "ok").Inc()
	logger.L().Debug("calfire_resp", "features", len(r.Features), "duration_ms", time.Since(t0).Milliseconds())
	return r.Features, nil
}
