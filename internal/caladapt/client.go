// 包 caladapt：Cal-Adapt 气候预估序列查询（日最高气温 tasmax）
package caladapt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.cal-adapt.org/api"
	// HadGEM2-ES + RCP 8.5（高排放情景）
	DefaultSlug = "tasmax_day_HadGEM2-ES_rcp85"
	periodStart = "2050-01-01"
	periodEnd   = "2060-12-31"
)

var ErrStatus = errors.New("cal-adapt api returned non-success status")

// 文档注释：事件序列响应
// 背景：按年聚合（freq=YS）时每行为 [min, mean, max, std, count]，单位开尔文。
// 约束：缺失值解码为 0 或空行，由调用方跳过。
type SeriesResponse struct {
	Index   []string    `json:"index"`
	Data    [][]float64 `json:"data"`
	Columns []string    `json:"columns"`
}

// Client：带限速的 Cal-Adapt 客户端，可在多个请求间共享
type Client struct {
	baseURL string
	slug    string
	http    *http.Client
	limiter *rate.Limiter
}

// New 创建客户端；client 为空时使用 10s 超时；rps<=0 时取 5
func New(baseURL string, client *http.Client, rps float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		slug:    DefaultSlug,
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SeriesURL 构造世纪中期（2050-2060）逐年统计查询地址
func (c *Client) SeriesURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("g", fmt.Sprintf("POINT(%v %v)", lon, lat))
	q.Set("stat", "mean")
	q.Set("freq", "YS")
	q.Set("start", periodStart)
	q.Set("end", periodEnd)
	return c.baseURL + "/series/" + c.slug + "/events/?" + q.Encode()
}

// 文档注释：查询某点世纪中期的逐年气温统计
// 参数：ctx 控制限速等待与请求取消；lat/lon 为 WGS84。
// 返回：解析后的序列；非 2xx 返回包装 ErrStatus 的错误。
func (c *Client) MidCenturySeries(ctx context.Context, lat, lon float64) (*SeriesResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.SeriesURL(lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	logger.L().Debug("caladapt_req", "lat", lat, "lon", lon)
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("caladapt", "error").Inc()
		logger.L().Error("caladapt_http_error", "err", err)
		return nil, err
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues("caladapt").Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues("caladapt", "status").Inc()
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	var r SeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("caladapt", "decode").Inc()
		logger.L().Error("caladapt_decode_error", "err", err)
		return nil, fmt.Errorf("decode cal-adapt series: %w", err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("caladapt", "ok").Inc()
	logger.L().Debug("caladapt_resp", "rows", len(r.Data), "duration_ms", time.Since(t0).Milliseconds())
	return &r, nil
}
