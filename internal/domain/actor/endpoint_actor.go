package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/ratelimit"
	"go_mock_hub/utils"

	"github.com/google/uuid"
)

// RateLimitedError 预算耗尽，携带重试提示。不会导致 actor 崩溃。
type RateLimitedError struct {
	Scope      ratelimit.Scope
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s), retry after %s", e.Scope, e.RetryAfter)
}

// EndpointActor 单个端点的有状态单元，独占持有该端点的配置、规则集和日志序列。
// 规则变更与匹配在同一把锁上线性化；延迟等待发生在锁外，
// 同一端点允许多个延迟中的请求并发在途（延迟是请求级行为，不是状态变更）。
//
// 状态机：Active（正常）→ Suspended（天级配额耗尽，一律 429）→ Active（窗口重置）。
type EndpointActor struct {
	endpointID string

	mu             sync.RWMutex
	endpoint       *model.Endpoint
	rules          []*model.MockRule
	suspendedUntil time.Time

	store  Store
	guard  ratelimit.Guard
	hub    Publisher
	limits configs.TierLimits
}

// newEndpointActor 从存储加载端点与规则集。端点不存在返回 (nil, nil)。
func newEndpointActor(ctx context.Context, endpointID string, store Store, guard ratelimit.Guard, hub Publisher, limits configs.TierLimits) (*EndpointActor, error) {
	endpoint, err := store.GetEndpoint(ctx, endpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoint %s: %w", endpointID, err)
	}
	if endpoint == nil {
		return nil, nil
	}

	rules, err := store.ListRules(ctx, endpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules of endpoint %s: %w", endpointID, err)
	}

	return &EndpointActor{
		endpointID: endpointID,
		endpoint:   endpoint,
		rules:      rules,
		store:      store,
		guard:      guard,
		hub:        hub,
		limits:     limits,
	}, nil
}

// EndpointID 该 actor 绑定的端点
func (a *EndpointActor) EndpointID() string {
	return a.endpointID
}

// Endpoint 当前端点配置快照
func (a *EndpointActor) Endpoint() model.Endpoint {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.endpoint
}

// HandleRequest 处理一次 mock 请求：
// 限流 → 规则匹配 → 组装应答（插值）→ 延迟等待 → 追加日志 → 广播。
// 应答同步返回；日志持久化尽力而为，广播对已处理的请求必达（投递本身非阻塞）。
func (a *EndpointActor) HandleRequest(ctx context.Context, req model.RequestContext) (model.ResponseSpec, error) {
	log := utils.GetLogger()

	// 1. 挂起状态短路，天级窗口重置后自动恢复
	now := time.Now()
	a.mu.RLock()
	suspended := now.Before(a.suspendedUntil)
	remain := a.suspendedUntil.Sub(now)
	endpoint := *a.endpoint
	a.mu.RUnlock()
	if suspended {
		return model.ResponseSpec{}, &RateLimitedError{Scope: ratelimit.ScopeAccount, RetryAfter: remain}
	}

	// 2. 限流准入。被拒绝的请求不进入匹配，也不写正式请求日志
	decision, err := a.guard.Admit(ctx, a.endpointID, endpoint.RateLimit)
	if err != nil {
		// 守卫故障放行，mock 服务可用性优先
		log.Warnf("rate guard error for endpoint %s, admitting: %v", a.endpointID, err)
	} else if !decision.Allowed {
		if decision.Scope == ratelimit.ScopeAccount {
			a.mu.Lock()
			a.suspendedUntil = time.Now().Add(decision.RetryAfter)
			a.mu.Unlock()
		}
		log.Debugf("endpoint %s rejected by %s budget", a.endpointID, decision.Scope)
		return model.ResponseSpec{}, &RateLimitedError{Scope: decision.Scope, RetryAfter: decision.RetryAfter}
	}

	// 3. 锁内取规则快照，锁外做匹配和延迟
	a.mu.RLock()
	rules := a.rules
	a.mu.RUnlock()

	fallbackParams := endpoint.MatchOwnPath(req.Path).Params

	var (
		resp    model.ResponseSpec
		params  = fallbackParams
		matched *model.MockRule
	)
	if m, ok := model.MatchRule(rules, req, fallbackParams); ok {
		matched = m.Rule
		params = m.PathParams
		resp = m.Rule.Response(endpoint.ContentType)
	} else {
		// 无规则命中，回落端点默认应答（同样会被记录和广播）
		resp = endpoint.DefaultResponse()
	}
	resp.Body = model.RenderBody(resp.Body, params)

	// 4. 延迟等待。超限延迟在规则创建时就被拒绝，这里不做静默截断
	if resp.DelayMs > 0 {
		timer := time.NewTimer(time.Duration(resp.DelayMs) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.ResponseSpec{}, ctx.Err()
		case <-timer.C:
		}
	}

	// 5. 记录并广播
	entry := a.buildLogEntry(req, matched, params)
	if err := a.store.AppendLog(ctx, entry); err != nil {
		// 应答已经算出来，日志写失败不反馈给请求方
		log.Errorf("failed to append request log for endpoint %s: %v", a.endpointID, err)
	}
	a.hub.Publish(a.endpointID, entry.ToWire())

	return resp, nil
}

func (a *EndpointActor) buildLogEntry(req model.RequestContext, matched *model.MockRule, params model.Params) *model.RequestLog {
	entry := &model.RequestLog{
		ID:         uuid.NewString(),
		EndpointID: a.endpointID,
		Method:     req.Method,
		Path:       req.Path,
		Headers:    req.Headers,
		Timestamp:  time.Now().UTC(),
	}
	if req.Body != "" {
		body := req.Body
		entry.Body = &body
	}
	if matched != nil {
		id, name := matched.ID, matched.Name
		entry.MatchedRuleID = &id
		if name != "" {
			entry.MatchedRuleName = &name
		}
	}
	if len(params) > 0 {
		entry.PathParams = params
	}
	return entry
}

// CreateRule 新增规则。落库后整体重载并原子换入内存规则集，
// 与在途 HandleRequest 线性化——读者看到的规则集要么全旧要么全新。
func (a *EndpointActor) CreateRule(ctx context.Context, rule *model.MockRule) error {
	rule.EndpointID = a.endpointID
	if err := a.store.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return a.reloadRules(ctx)
}

// UpdateRule 更新规则
func (a *EndpointActor) UpdateRule(ctx context.Context, rule *model.MockRule) error {
	rule.EndpointID = a.endpointID
	if err := a.store.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return a.reloadRules(ctx)
}

// DeleteRule 删除规则
func (a *EndpointActor) DeleteRule(ctx context.Context, ruleID string) error {
	if err := a.store.DeleteRule(ctx, a.endpointID, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return a.reloadRules(ctx)
}

// RefreshEndpoint 端点配置变更后刷新快照
func (a *EndpointActor) RefreshEndpoint(ctx context.Context) error {
	endpoint, err := a.store.GetEndpoint(ctx, a.endpointID)
	if err != nil {
		return err
	}
	if endpoint == nil {
		return fmt.Errorf("endpoint %s no longer exists", a.endpointID)
	}
	a.mu.Lock()
	a.endpoint = endpoint
	a.mu.Unlock()
	return nil
}

// ListHistory 最近 N 条请求日志，新的在前
func (a *EndpointActor) ListHistory(ctx context.Context, limit int) ([]*model.RequestLog, error) {
	return a.store.ListHistory(ctx, a.endpointID, limit)
}

// Rules 当前规则集快照（测试与管理接口用）
func (a *EndpointActor) Rules() []*model.MockRule {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*model.MockRule, len(a.rules))
	copy(out, a.rules)
	return out
}

func (a *EndpointActor) reloadRules(ctx context.Context) error {
	rules, err := a.store.ListRules(ctx, a.endpointID)
	if err != nil {
		return fmt.Errorf("failed to reload rules: %w", err)
	}
	a.mu.Lock()
	a.rules = rules
	a.mu.Unlock()
	return nil
}
