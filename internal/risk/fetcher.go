package risk

import (
	"context"
	"fmt"
	"time"

	"climate-risk/internal/logger"
	"climate-risk/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// 文档注释：多灾种并发聚合
// 背景：四类灾种相互独立，并发查询后汇总为 Bundle；单一灾种失败或缺失不影响其他结果。
// 约束：未配置的灾种在 Bundle 中为 nil；判定源发生 panic 时该项为 nil，panic 转为 errgroup 错误并在汇总时记录。
type Fetcher struct {
	Wildfire     Assessor
	Flood        Assessor
	SeaLevelRise Assessor
	Heat         Assessor
}

func (f *Fetcher) FetchAll(ctx context.Context, loc Location) Bundle {
	var b Bundle
	var g errgroup.Group
	run := func(a Assessor, dst **Verdict) {
		if a == nil {
			return
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s assessor panic: %v", a.Name(), r)
				}
			}()
			t0 := time.Now()
			v := a.Assess(ctx, loc)
			metrics.AssessDurationMs.WithLabelValues(a.Name()).Observe(float64(time.Since(t0).Milliseconds()))
			*dst = &v
			return nil
		})
	}
	run(f.Wildfire, &b.Wildfire)
	run(f.Flood, &b.Flood)
	run(f.SeaLevelRise, &b.SeaLevelRise)
	run(f.Heat, &b.Heat)
	if err := g.Wait(); err != nil {
		logger.L().Error("assess_panic", "err", err)
	}
	return b
}
