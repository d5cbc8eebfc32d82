package iface

import (
	"context"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
)

// EndpointServiceIface 端点与规则的管理服务接口。
// 写操作先过校验与套餐限额，落库后同步到对应端点的 actor。
type EndpointServiceIface interface {
	CreateEndpoint(ctx context.Context, endpoint *model.Endpoint) (*model.Endpoint, error)
	UpdateEndpoint(ctx context.Context, endpoint *model.Endpoint) (*model.Endpoint, error)
	DeleteEndpoint(ctx context.Context, endpointID string) error
	GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error)
	ListEndpoints(ctx context.Context) ([]*model.Endpoint, error)

	CreateRule(ctx context.Context, endpointID string, rule *model.MockRule) (*model.MockRule, error)
	UpdateRule(ctx context.Context, endpointID string, rule *model.MockRule) (*model.MockRule, error)
	DeleteRule(ctx context.Context, endpointID, ruleID string) error
	ListRules(ctx context.Context, endpointID string) ([]*model.MockRule, error)

	// ListHistory 最近 N 条捕获的请求，线上形态，新的在前
	ListHistory(ctx context.Context, endpointID string, limit int) ([]*model.RequestLogWire, error)
}
