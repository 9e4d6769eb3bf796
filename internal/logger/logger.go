// 包 logger：进程级 slog 日志器；级别与格式由环境变量控制
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// 文档注释：初始化默认日志器
// 背景：LOG_LEVEL=debug|info|warn|error，LOG_FORMAT=json|text，LOG_SOURCE=true 附带调用位置。
// 约束：输出固定到标准错误；重复调用会替换默认日志器并同步到 slog.Default。
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter 与 Setup 相同，但输出到 w（测试用）
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL")), AddSource: os.Getenv("LOG_SOURCE") == "true"}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h).With("service", "climate-risk")
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L 获取默认日志器；未初始化时按环境变量初始化
func L() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return Setup()
	}
	return l
}
