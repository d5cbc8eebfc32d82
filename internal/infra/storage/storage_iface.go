package storage

import (
	"context"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
)

type MySQLEndpointStorageIface interface {
	// endpoint
	SaveEndpointToDB(ctx context.Context, endpoint *model.Endpoint) error
	UpdateEndpointInDB(ctx context.Context, endpoint *model.Endpoint) error
	GetEndpointFromDB(ctx context.Context, endpointID string) (*model.Endpoint, error)
	GetEndpointByPathFromDB(ctx context.Context, path string) (*model.Endpoint, error)
	DeleteEndpointFromDB(ctx context.Context, endpointID string) error
	ListEndpointsFromDB(ctx context.Context) ([]*model.Endpoint, error)
	CountEndpointsInDB(ctx context.Context) (int64, error)

	// rule
	SaveRuleToDB(ctx context.Context, rule *model.MockRule) error
	DeleteRuleFromDB(ctx context.Context, endpointID, ruleID string) error
	GetRuleFromDB(ctx context.Context, ruleID string) (*model.MockRule, error)
	// ListRulesByEndpoint 按创建顺序返回，保证同优先级的平局顺序即插入顺序
	ListRulesByEndpoint(ctx context.Context, endpointID string) ([]*model.MockRule, error)

	// request log
	AppendLogToDB(ctx context.Context, log *model.RequestLog) error
	ListLogsFromDB(ctx context.Context, endpointID string, limit int) ([]*model.RequestLog, error)
	DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RedisEndpointCacheIface 定义 Redis 缓存操作接口
type RedisEndpointCacheIface interface {
	GetEndpointByPath(ctx context.Context, path string) (*model.Endpoint, error)
	SetEndpointToCache(ctx context.Context, endpoint *model.Endpoint) error
	DeleteEndpointFromCache(ctx context.Context, endpoint *model.Endpoint) error

	GetRulesFromCache(ctx context.Context, endpointID string) ([]*model.MockRule, error)
	SetRulesToCache(ctx context.Context, endpointID string, rules []*model.MockRule) error
	DeleteRulesFromCache(ctx context.Context, endpointID string) error
}
