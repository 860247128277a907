package process

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/pkg/register"
)

// Process 后台定时任务的宿主，持有唯一的 cron 调度器
type Process struct {
	cron *cron.Cron
	core *core.Core
}

var p *Process

type ProcessKey struct{}

func NewProcess(core *core.Core) *Process {
	p = &Process{
		cron: cron.New(),
		core: core,
	}

	for _, h := range register.ResolveFuncHandlers[*Process](ProcessKey{}) {
		h(p)
	}

	return p
}

func (p *Process) Cron() *cron.Cron {
	return p.cron
}

func (p *Process) Core() *core.Core {
	return p.core
}

func (p *Process) Start() {
	p.cron.Start()
	slog.Info("Background process started")
}

func (p *Process) Stop() {
	if p.cron != nil {
		ctx := p.cron.Stop()
		<-ctx.Done()
	}
	slog.Info("Background process stopped")
}
