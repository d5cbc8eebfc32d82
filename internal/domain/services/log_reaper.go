package services

import (
	"context"
	"time"

	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/repo"
	"go_mock_hub/utils"
)

// LogReaper 按套餐保留期周期清理过期请求日志
type LogReaper struct {
	repo     repo.EndpointRepositoryIface
	limits   configs.TierLimits
	interval time.Duration
	now      func() time.Time
}

func NewLogReaper(r repo.EndpointRepositoryIface, limits configs.TierLimits, interval time.Duration) *LogReaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LogReaper{
		repo:     r,
		limits:   limits,
		interval: interval,
		now:      time.Now,
	}
}

// Run 阻塞运行直到 ctx 取消，启动时先清一轮
func (r *LogReaper) Run(ctx context.Context) {
	r.ReapOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// ReapOnce 执行一轮清理
func (r *LogReaper) ReapOnce(ctx context.Context) {
	logger := utils.GetLogger()
	retention := time.Duration(r.limits.LogRetentionDays) * 24 * time.Hour
	if retention <= 0 {
		return
	}
	cutoff := r.now().Add(-retention)

	purged, err := r.repo.PurgeLogsBefore(ctx, cutoff)
	if err != nil {
		logger.Errorf("purge request logs before %s err: %v", cutoff.Format(time.RFC3339), err)
		return
	}
	if purged > 0 {
		logger.Infof("purged %d request logs older than %s", purged, cutoff.Format(time.RFC3339))
	}
}
