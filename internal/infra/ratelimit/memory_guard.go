package ratelimit

import (
	"context"
	"sync"
	"time"

	configs "go_mock_hub/internal/infra/config"
)

type fixedWindow struct {
	key   int64
	count int64
}

// memoryGuard 进程内固定窗口守卫，语义与 redisGuard 一致。
// 用于测试和未配置 Redis 的单实例部署。
type memoryGuard struct {
	mu      sync.Mutex
	perMin  map[string]*fixedWindow // endpointID -> 分钟窗口
	daily   fixedWindow             // 账户天窗口（天键转 int64 存放）
	dayKey  string
	limits  configs.TierLimits
	now     func() time.Time
}

var _ Guard = (*memoryGuard)(nil)

func NewMemoryGuard(limits configs.TierLimits) Guard {
	return &memoryGuard{
		perMin: make(map[string]*fixedWindow),
		limits: limits,
		now:    time.Now,
	}
}

// NewMemoryGuardWithClock 测试用，可注入时钟
func NewMemoryGuardWithClock(limits configs.TierLimits, now func() time.Time) Guard {
	return &memoryGuard{
		perMin: make(map[string]*fixedWindow),
		limits: limits,
		now:    now,
	}
}

func (g *memoryGuard) Admit(_ context.Context, endpointID string, perMinute int) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	if perMinute <= 0 {
		perMinute = g.limits.DefaultRateLimit
	}
	minKey, minRemain := minuteWindow(now)
	w, ok := g.perMin[endpointID]
	if !ok || w.key != minKey {
		w = &fixedWindow{key: minKey}
		g.perMin[endpointID] = w
	}
	w.count++
	if w.count > int64(perMinute) {
		return Decision{Allowed: false, Scope: ScopeEndpoint, RetryAfter: minRemain}, nil
	}

	dayKey, dayRemain := dayWindow(now)
	if g.dayKey != dayKey {
		g.dayKey = dayKey
		g.daily = fixedWindow{}
	}
	g.daily.count++
	if g.daily.count > g.limits.RequestsPerDay {
		return Decision{Allowed: false, Scope: ScopeAccount, RetryAfter: dayRemain}, nil
	}

	return Decision{Allowed: true}, nil
}
