package services

import (
	"context"
	"errors"
	"fmt"

	"go_mock_hub/internal/domain/actor"
	"go_mock_hub/internal/domain/iface"
	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/repo"
	"go_mock_hub/utils"

	"github.com/google/uuid"
)

var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrRuleNotFound     = errors.New("rule not found")
)

// EndpointManageService 端点与规则管理的领域服务。
// 写路径：校验 → 限额 → 落库 → 同步 actor，保证在途请求看到的配置与库一致。
type EndpointManageService struct {
	repo     repo.EndpointRepositoryIface
	registry *actor.Registry
	limits   configs.TierLimits
}

var _ iface.EndpointServiceIface = (*EndpointManageService)(nil)

func NewEndpointManageService(r repo.EndpointRepositoryIface, registry *actor.Registry, limits configs.TierLimits) iface.EndpointServiceIface {
	return &EndpointManageService{
		repo:     r,
		registry: registry,
		limits:   limits,
	}
}

// CreateEndpoint 创建端点。套餐的端点数上限在这里把关，路径冲突由存储层唯一索引拒绝
func (s *EndpointManageService) CreateEndpoint(ctx context.Context, endpoint *model.Endpoint) (*model.Endpoint, error) {
	applyEndpointDefaults(endpoint, s.limits)
	if err := ValidateEndpoint(endpoint, s.limits); err != nil {
		return nil, err
	}

	count, err := s.repo.CountEndpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count endpoints: %w", err)
	}
	if count >= int64(s.limits.MaxEndpoints) {
		return nil, ValidationErrors{{
			Code:   CodeEndpointLimitReached,
			Field:  "path",
			Limit:  s.limits.MaxEndpoints,
			Actual: int(count),
		}}
	}

	if endpoint.ID == "" {
		endpoint.ID = uuid.NewString()
	}
	if err := s.repo.CreateEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	utils.GetLogger().Infof("endpoint created: %s %s", endpoint.ID, endpoint.Path)
	return endpoint, nil
}

// UpdateEndpoint 更新端点配置并刷新在途 actor 的快照
func (s *EndpointManageService) UpdateEndpoint(ctx context.Context, endpoint *model.Endpoint) (*model.Endpoint, error) {
	existing, err := s.repo.GetEndpoint(ctx, endpoint.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrEndpointNotFound
	}

	applyEndpointDefaults(endpoint, s.limits)
	if err := ValidateEndpoint(endpoint, s.limits); err != nil {
		return nil, err
	}
	endpoint.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	if a, err := s.registry.Get(ctx, endpoint.ID); err == nil && a != nil {
		if err := a.RefreshEndpoint(ctx); err != nil {
			utils.GetLogger().Warnf("failed to refresh actor for endpoint %s: %v", endpoint.ID, err)
		}
	}
	return endpoint, nil
}

// DeleteEndpoint 删除端点及其规则和日志，并移除 actor
func (s *EndpointManageService) DeleteEndpoint(ctx context.Context, endpointID string) error {
	existing, err := s.repo.GetEndpoint(ctx, endpointID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEndpointNotFound
	}
	if err := s.repo.DeleteEndpoint(ctx, endpointID); err != nil {
		return err
	}
	s.registry.Evict(endpointID)
	utils.GetLogger().Infof("endpoint deleted: %s %s", endpointID, existing.Path)
	return nil
}

func (s *EndpointManageService) GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	endpoint, err := s.repo.GetEndpoint(ctx, endpointID)
	if err != nil {
		return nil, err
	}
	if endpoint == nil {
		return nil, ErrEndpointNotFound
	}
	return endpoint, nil
}

func (s *EndpointManageService) ListEndpoints(ctx context.Context) ([]*model.Endpoint, error) {
	return s.repo.ListEndpoints(ctx)
}

// CreateRule 新增规则，经由 actor 落库，保证规则集变更对匹配原子可见
func (s *EndpointManageService) CreateRule(ctx context.Context, endpointID string, rule *model.MockRule) (*model.MockRule, error) {
	if err := ValidateRule(rule, s.limits); err != nil {
		return nil, err
	}
	a, err := s.actorOf(ctx, endpointID)
	if err != nil {
		return nil, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := a.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule 更新规则
func (s *EndpointManageService) UpdateRule(ctx context.Context, endpointID string, rule *model.MockRule) (*model.MockRule, error) {
	if err := ValidateRule(rule, s.limits); err != nil {
		return nil, err
	}
	a, err := s.actorOf(ctx, endpointID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetRule(ctx, rule.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.EndpointID != endpointID {
		return nil, ErrRuleNotFound
	}
	rule.CreatedAt = existing.CreatedAt
	if err := a.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule 删除规则
func (s *EndpointManageService) DeleteRule(ctx context.Context, endpointID, ruleID string) error {
	a, err := s.actorOf(ctx, endpointID)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if existing == nil || existing.EndpointID != endpointID {
		return ErrRuleNotFound
	}
	return a.DeleteRule(ctx, ruleID)
}

func (s *EndpointManageService) ListRules(ctx context.Context, endpointID string) ([]*model.MockRule, error) {
	if _, err := s.actorOf(ctx, endpointID); err != nil {
		return nil, err
	}
	return s.repo.ListRules(ctx, endpointID)
}

// ListHistory 最近 N 条捕获的请求，转为线上形态
func (s *EndpointManageService) ListHistory(ctx context.Context, endpointID string, limit int) ([]*model.RequestLogWire, error) {
	a, err := s.actorOf(ctx, endpointID)
	if err != nil {
		return nil, err
	}
	logs, err := a.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*model.RequestLogWire, len(logs))
	for i, l := range logs {
		out[i] = l.ToWire()
	}
	return out, nil
}

func (s *EndpointManageService) actorOf(ctx context.Context, endpointID string) (*actor.EndpointActor, error) {
	a, err := s.registry.Get(ctx, endpointID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrEndpointNotFound
	}
	return a, nil
}

func applyEndpointDefaults(endpoint *model.Endpoint, limits configs.TierLimits) {
	if endpoint.ContentType == "" {
		endpoint.ContentType = "application/json"
	}
	if endpoint.StatusCode == 0 {
		endpoint.StatusCode = 200
	}
	if endpoint.RateLimit <= 0 {
		endpoint.RateLimit = limits.DefaultRateLimit
	}
}
