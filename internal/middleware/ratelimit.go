package middleware

import (
	"net/http"
	"os"
	"strconv"

	"climate-risk/internal/logger"

	"golang.org/x/time/rate"
)

// 文档注释：入口中间件（CORS + 全局限流）
// 背景：浏览器扩展从房源页面直接调用本服务，需放行跨域 GET；峰值时限速保护上游气候接口。
// 约束：RATE_LIMIT_ENABLED=true 时启用，RATE_LIMIT_QPS 默认 50、突发同值；超限直接返回 429，不排队。
func Wrap(next http.Handler) http.Handler {
	h := cors(next)
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return h
	}
	qps := 50
	if n, e := strconv.Atoi(os.Getenv("RATE_LIMIT_QPS")); e == nil && n > 0 {
		qps = n
	}
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return RateLimit(rate.NewLimiter(rate.Limit(qps), qps), h)
}

// RateLimit 令牌不足时返回 429
func RateLimit(lim *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func cors(next http.Handler) http.Handler {
	origin := os.Getenv("CORS_ALLOW_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("access-control-allow-origin", origin)
		w.Header().Set("access-control-allow-methods", "GET, OPTIONS")
		w.Header().Set("access-control-allow-headers", "accept, content-type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
