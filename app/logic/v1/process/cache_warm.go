package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/gridbase/gridbase/pkg/register"
	"github.com/gridbase/gridbase/pkg/safe"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
)

// 预热周期略短于公开表缓存 TTL，避免读方穿透
const PUBLIC_CACHE_WARM_SPEC = "@every 4m"

func init() {
	register.RegisterFunc(ProcessKey{}, func(p *Process) {
		if _, err := p.Cron().AddFunc(PUBLIC_CACHE_WARM_SPEC, func() {
			safe.Run(func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
				defer cancel()
				if err := v1.WarmPublicTablesCache(ctx, p.Core()); err != nil {
					slog.Error("Failed to warm public tables cache", slog.Any("error", err))
				}
			})
		}); err != nil {
			slog.Error("Failed to register cache warm job", slog.Any("error", err))
		}
	})
}
