package actor

import (
	"context"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
)

// Store actor 所需的持久化能力，构造时注入。
// 生产实现是 repo 层；测试用内存实现替换。
type Store interface {
	GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error)
	ListRules(ctx context.Context, endpointID string) ([]*model.MockRule, error)
	SaveRule(ctx context.Context, rule *model.MockRule) error
	DeleteRule(ctx context.Context, endpointID, ruleID string) error
	AppendLog(ctx context.Context, log *model.RequestLog) error
	ListHistory(ctx context.Context, endpointID string, limit int) ([]*model.RequestLog, error)
}

// Publisher 广播能力，实时推送捕获的请求
type Publisher interface {
	Publish(endpointID string, log *model.RequestLogWire)
}
