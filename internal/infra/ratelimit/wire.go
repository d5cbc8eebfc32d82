package ratelimit

import (
	"github.com/google/wire"
)

// GuardSet 默认使用 Redis 守卫（多实例共享预算）
var GuardSet = wire.NewSet(
	NewRedisGuard,
)
