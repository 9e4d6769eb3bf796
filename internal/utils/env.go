package utils

import (
	"os"
	"strconv"
	"time"
)

// EnvDuration 读取 time.ParseDuration 格式，纯数字按秒处理；无效或非正值返回 def
func EnvDuration(k string, def time.Duration) time.Duration {
	s := os.Getenv(k)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// EnvFloat 读取正浮点数；无效或非正值返回 def
func EnvFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f > 0 {
		return f
	}
	return def
}

// EnvString 读取字符串，空值返回 def
func EnvString(k, def string) string { return envOr(k, def) }
