package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/gridbase/gridbase/app/core"
	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/pkg/register"
	"github.com/gridbase/gridbase/pkg/safe"
)

const DEFAULT_STOCK_SWEEP_SPEC = "0 * * * *"

func init() {
	register.RegisterFunc(ProcessKey{}, func(p *Process) {
		spec := p.Core().Cfg().Stock.SweepCron
		if spec == "" {
			spec = DEFAULT_STOCK_SWEEP_SPEC
		}
		if _, err := p.Cron().AddFunc(spec, func() {
			safe.Run(func() {
				RunStockSweep(p.Core())
			})
		}); err != nil {
			slog.Error("Failed to register stock sweep job", slog.String("spec", spec), slog.Any("error", err))
		}
	})
}

// RunStockSweep 全库库存巡检，告警只打日志，通知渠道由
// 日志采集侧接管
func RunStockSweep(core *core.Core) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := v1.SweepStockLevels(ctx, core, 0)
	if err != nil {
		slog.Error("Stock sweep failed", slog.Any("error", err))
		return
	}

	for _, alert := range result.Alerts {
		slog.Warn("Stock alert",
			slog.String("table_id", alert.TableID),
			slog.String("table_name", alert.TableName),
			slog.String("item_id", alert.ItemID),
			slog.Float64("quantity", alert.CurrentQuantity),
			slog.String("level", string(alert.Level)))
	}

	slog.Info("Stock sweep finished",
		slog.Int("checked", result.TotalChecked),
		slog.Int("low", result.LowStockCount),
		slog.Int("out", result.OutOfStockCount),
		slog.Int("negative", result.NegativeStockCount))
}
