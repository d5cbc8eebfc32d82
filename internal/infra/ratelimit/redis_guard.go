package ratelimit

import (
	"context"
	"fmt"
	"time"

	configs "go_mock_hub/internal/infra/config"

	"github.com/go-redis/redis/v8"
)

const (
	endpointWindowPrefix = "mock_rl:ep:"   // 端点分钟窗口
	accountWindowPrefix  = "mock_rl:acct:" // 账户天窗口
)

// redisGuard 基于 Redis 固定窗口计数的守卫实现。
// 窗口键带过期，INCR 原子计数，多实例部署下共享预算。
type redisGuard struct {
	client *redis.Client
	limits configs.TierLimits
	now    func() time.Time
}

var _ Guard = (*redisGuard)(nil)

func NewRedisGuard(client *redis.Client, limits configs.TierLimits) Guard {
	return &redisGuard{
		client: client,
		limits: limits,
		now:    time.Now,
	}
}

func (g *redisGuard) Admit(ctx context.Context, endpointID string, perMinute int) (Decision, error) {
	now := g.now()

	// 1. 端点级分钟窗口
	if perMinute <= 0 {
		perMinute = g.limits.DefaultRateLimit
	}
	minKey, minRemain := minuteWindow(now)
	epKey := fmt.Sprintf("%s%s:%d", endpointWindowPrefix, endpointID, minKey)
	count, err := g.client.Incr(ctx, epKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to incr endpoint window: %w", err)
	}
	if count == 1 {
		// 新窗口，设置过期兜底清理
		g.client.Expire(ctx, epKey, 2*time.Minute)
	}
	if count > int64(perMinute) {
		return Decision{Allowed: false, Scope: ScopeEndpoint, RetryAfter: minRemain}, nil
	}

	// 2. 账户级天窗口。端点窗口拒绝的请求不会走到这里，不重复计数
	dayKey, dayRemain := dayWindow(now)
	acctKey := accountWindowPrefix + dayKey
	dayCount, err := g.client.Incr(ctx, acctKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to incr account window: %w", err)
	}
	if dayCount == 1 {
		g.client.Expire(ctx, acctKey, 25*time.Hour)
	}
	if dayCount > g.limits.RequestsPerDay {
		return Decision{Allowed: false, Scope: ScopeAccount, RetryAfter: dayRemain}, nil
	}

	return Decision{Allowed: true}, nil
}
