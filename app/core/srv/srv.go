package srv

import (
	"golang.org/x/time/rate"
)

type Srv struct {
	rbac    *RBACSrv
	limiter *rate.Limiter
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{
		rbac: SetupRBACSrv(), // 角色鉴权
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (s *Srv) RBAC() *RBACSrv {
	return s.rbac
}

// ApplyRateLimiter 全局写路径限流，rps 为每秒令牌数，burst 为突发上限
func ApplyRateLimiter(rps float64, burst int) ApplyFunc {
	return func(s *Srv) {
		if rps <= 0 {
			rps = 50
		}
		if burst <= 0 {
			burst = 100
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func (s *Srv) RateLimiter() *rate.Limiter {
	return s.limiter
}
