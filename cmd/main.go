// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"climate-risk/internal/api"
	"climate-risk/internal/cache"
	"climate-risk/internal/caladapt"
	"climate-risk/internal/calfire"
	"climate-risk/internal/floodzone"
	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"
	"climate-risk/internal/middleware"
	"climate-risk/internal/migrate"
	"climate-risk/internal/risk"
	"climate-risk/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := utils.EnvString("API_BASE", "/api")
	upstreamTimeout := utils.EnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	upstreamRPS := utils.EnvFloat("UPSTREAM_RPS", 5)
	l.Debug("config_api_base", "base", apiBase)

	// 洪水区数据集：懒加载，PRELOAD_FLOOD_DATASET=true 时启动即预热
	loader := floodzone.NewLoader(floodzone.LoaderOptions{
		URL:     os.Getenv("FLOOD_ZONES_URL"),
		Timeout: utils.EnvDuration("FLOOD_DATASET_TIMEOUT", floodzone.DefaultDatasetTimeout),
	})
	if os.Getenv("PRELOAD_FLOOD_DATASET") == "true" {
		go func() {
			if _, err := loader.Load(ctx); err != nil {
				l.Error("flood_dataset_preload_error", "err", err)
			}
		}()
	}
	flood := floodzone.NewService(loader)

	upstream := &http.Client{Timeout: upstreamTimeout}
	fetcher := &risk.Fetcher{
		Wildfire:     risk.NewWildfireAssessor(calfire.New(os.Getenv("CALFIRE_FHSZ_URL"), upstream, upstreamRPS)),
		Flood:        flood,
		SeaLevelRise: risk.SeaLevelAssessor{},
		Heat:         risk.NewHeatAssessor(caladapt.New(os.Getenv("CAL_ADAPT_BASE_URL"), upstream, upstreamRPS)),
	}

	c, closeCache := openCache(ctx)
	defer closeCache()

	apiMux := api.BuildRoutes(api.Deps{Fetcher: fetcher, Flood: flood, Cache: c, Loader: loader})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	addr := utils.EnvString("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	var err error
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := utils.EnvString("TLS_CERT_PATH", filepath.Join("data", "tls", "server.crt"))
		keyPath := utils.EnvString("TLS_KEY_PATH", filepath.Join("data", "tls", "server.key"))
		if e := utils.EnsureSelfSignedCert(certPath, keyPath, "climate-risk.local"); e != nil {
			l.Error("tls_cert_error", "err", e)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_ok")
}

// 文档注释：按 CACHE_BACKEND 选择地址缓存后端
// 背景：memory（默认）/redis/postgres/none；外部后端不可用时回退到内存，不阻断启动。
func openCache(ctx context.Context) (*cache.Cache, func()) {
	l := logger.L()
	maxAge := utils.EnvDuration("CACHE_MAX_AGE", cache.DefaultMaxAge)
	noop := func() {}
	switch utils.EnvString("CACHE_BACKEND", "memory") {
	case "none":
		l.Info("cache_disabled")
		return nil, noop
	case "redis":
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = rc.Close()
			break
		}
		l.Info("redis_ping_ok")
		return cache.New(cache.NewRedisStore(rc, maxAge), maxAge), func() { _ = rc.Close() }
	case "postgres":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			break
		}
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			_ = db.Close()
			break
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			_ = db.Close()
			break
		}
		l.Info("db_open_ok")
		return cache.New(cache.NewPGStore(db), maxAge), func() { _ = db.Close() }
	}
	l.Info("cache_backend", "name", "memory")
	return cache.New(cache.NewMemoryStore(4096), maxAge), noop
}
