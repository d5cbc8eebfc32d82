package ratelimit

import (
	"context"
	"time"
)

// Scope 标识哪一层预算拒绝了请求
type Scope string

const (
	ScopeEndpoint Scope = "endpoint" // 端点级，次/分钟
	ScopeAccount  Scope = "account"  // 账户级，次/天（套餐 RequestsPerDay）
)

// Decision 准入判定结果
type Decision struct {
	Allowed    bool
	Scope      Scope
	RetryAfter time.Duration // 拒绝时给出的重试提示
}

// Guard 端点请求预算守卫。两层预算都生效，取更紧的一层。
// 被拒绝的请求不会重复计入配额。
type Guard interface {
	Admit(ctx context.Context, endpointID string, perMinute int) (Decision, error)
}

// 固定窗口计算，两个实现共用
func minuteWindow(now time.Time) (key int64, remain time.Duration) {
	key = now.Unix() / 60
	remain = time.Duration(60-now.Unix()%60) * time.Second
	return
}

func dayWindow(now time.Time) (key string, remain time.Duration) {
	utc := now.UTC()
	key = utc.Format("20060102")
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	remain = midnight.Sub(utc)
	return
}
