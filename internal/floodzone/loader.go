package floodzone

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultDatasetURL     = "https://nmatouka.github.io/climate-risk-plugin/flood-zone-data/flood_zones_simplified.geojson"
	DefaultDatasetTimeout = 60 * time.Second
)

// DatasetUnavailableError：拉取洪水区数据集失败（网络错误或非 2xx 状态）；下次调用可重试
type DatasetUnavailableError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *DatasetUnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to load flood data: %d %s", e.StatusCode, e.Reason)
	}
	if e.Err != nil {
		return "failed to load flood data: " + e.Err.Error()
	}
	return "failed to load flood data: " + e.Reason
}

func (e *DatasetUnavailableError) Unwrap() error { return e.Err }

// LoaderOptions：数据集地址、超时与可选的共享 HTTP 客户端
type LoaderOptions struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// 文档注释：洪水区数据集加载器（懒加载 + 并发合并）
// 背景：GeoJSON 体积较大，进程生命周期内只需成功拉取一次；并发请求合并到同一次在途拉取。
// 约束：成功结果常驻于加载器实例（无 TTL）；失败不缓存，下次调用重新拉取；
// 拉取不随首个调用方取消而中断，但受 Timeout 约束；各调用方可通过自身 ctx 放弃等待。
type Loader struct {
	url     string
	timeout time.Duration
	client  *http.Client
	group   singleflight.Group
	data    atomic.Pointer[Dataset]
}

func NewLoader(opts LoaderOptions) *Loader {
	l := &Loader{url: opts.URL, timeout: opts.Timeout, client: opts.Client}
	if l.url == "" {
		l.url = DefaultDatasetURL
	}
	if l.timeout <= 0 {
		l.timeout = DefaultDatasetTimeout
	}
	if l.client == nil {
		l.client = &http.Client{}
	}
	return l
}

// Load 返回常驻数据集；首次调用（或上次失败后）触发一次网络拉取
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if ds := l.data.Load(); ds != nil {
		logger.L().Debug("flood_dataset_cached", "features", len(ds.Features))
		return ds, nil
	}
	ch := l.group.DoChan("dataset", func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Error("flood_dataset_load_panic", "panic", r)
				v, err = nil, &DatasetUnavailableError{Reason: fmt.Sprintf("panic: %v", r)}
			}
		}()
		if ds := l.data.Load(); ds != nil {
			return ds, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		ds, err := l.fetch(fctx)
		if err != nil {
			return nil, err
		}
		l.data.Store(ds)
		return ds, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Dataset), nil
	}
}

// Loaded 返回已常驻的数据集，未加载时为 nil；不触发拉取
func (l *Loader) Loaded() *Dataset { return l.data.Load() }

func (l *Loader) fetch(ctx context.Context) (*Dataset, error) {
	t0 := time.Now()
	log := logger.L()
	log.Info("flood_dataset_load_begin", "url", l.url)
	ds, err := l.fetchOnce(ctx)
	dur := time.Since(t0)
	metrics.DatasetLoadDurationMs.Observe(float64(dur.Milliseconds()))
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		log.Error("flood_dataset_load_error", "err", err, "duration_ms", dur.Milliseconds())
		return nil, err
	}
	metrics.DatasetLoadsTotal.WithLabelValues("ok").Inc()
	metrics.DatasetFeatures.Set(float64(len(ds.Features)))
	log.Info("flood_dataset_load_ok", "features", len(ds.Features), "duration_ms", dur.Milliseconds())
	return ds, nil
}

func (l *Loader) fetchOnce(ctx context.Context) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &DatasetUnavailableError{Reason: "bad request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &DatasetUnavailableError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &DatasetUnavailableError{StatusCode: resp.StatusCode, Reason: statusReason(resp)}
	}
	ds, err := DecodeDataset(resp.Body)
	if err != nil {
		return nil, &DatasetUnavailableError{Reason: "invalid geojson", Err: err}
	}
	return ds, nil
}

// resp.Status 形如 "503 Service Unavailable"，取状态码后的原因短语
func statusReason(resp *http.Response) string {
	if s := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}
