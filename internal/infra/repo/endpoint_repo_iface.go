package repo

import (
	"context"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
)

// EndpointRepositoryIface 接口 - 定义数据仓库操作。
// DB 为事实来源，Redis 为缓存层；写路径同步落库、异步维护缓存。
type EndpointRepositoryIface interface {
	CreateEndpoint(ctx context.Context, endpoint *model.Endpoint) error
	UpdateEndpoint(ctx context.Context, endpoint *model.Endpoint) error
	DeleteEndpoint(ctx context.Context, endpointID string) error
	GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error)
	// ResolveEndpointByPath 按请求路径定位端点：先精确匹配，再对含参数段的
	// 端点路径做模式匹配。找不到返回 (nil, nil)。
	ResolveEndpointByPath(ctx context.Context, path string) (*model.Endpoint, error)
	ListEndpoints(ctx context.Context) ([]*model.Endpoint, error)
	CountEndpoints(ctx context.Context) (int64, error)

	ListRules(ctx context.Context, endpointID string) ([]*model.MockRule, error)
	GetRule(ctx context.Context, ruleID string) (*model.MockRule, error)
	SaveRule(ctx context.Context, rule *model.MockRule) error
	DeleteRule(ctx context.Context, endpointID, ruleID string) error

	// AppendLog 尽力而为的异步持久化，失败只记日志，绝不反馈到请求链路
	AppendLog(ctx context.Context, log *model.RequestLog) error
	ListHistory(ctx context.Context, endpointID string, limit int) ([]*model.RequestLog, error)
	PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
