package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go_mock_hub/internal/domain/actor"
	"go_mock_hub/internal/domain/iface"
	model "go_mock_hub/internal/domain/model/mock_endpoint"
	"go_mock_hub/internal/infra/broadcast"
	"go_mock_hub/internal/infra/ratelimit"
	"go_mock_hub/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo EndpointRepositoryIface 的内存实现
type fakeRepo struct {
	mu        sync.Mutex
	endpoints map[string]*model.Endpoint
	rules     map[string][]*model.MockRule
	logs      map[string][]*model.RequestLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		endpoints: make(map[string]*model.Endpoint),
		rules:     make(map[string][]*model.MockRule),
		logs:      make(map[string][]*model.RequestLog),
	}
}

func (r *fakeRepo) CreateEndpoint(_ context.Context, endpoint *model.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.endpoints {
		if e.Path == endpoint.Path {
			return storage.ErrDuplicatePath
		}
	}
	cp := *endpoint
	r.endpoints[endpoint.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateEndpoint(_ context.Context, endpoint *model.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *endpoint
	r.endpoints[endpoint.ID] = &cp
	return nil
}

func (r *fakeRepo) DeleteEndpoint(_ context.Context, endpointID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, endpointID)
	delete(r.rules, endpointID)
	delete(r.logs, endpointID)
	return nil
}

func (r *fakeRepo) GetEndpoint(_ context.Context, endpointID string) (*model.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[endpointID], nil
}

func (r *fakeRepo) ResolveEndpointByPath(_ context.Context, path string) (*model.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.endpoints {
		if e.Path == path {
			return e, nil
		}
	}
	for _, e := range r.endpoints {
		if e.MatchOwnPath(path).Matched {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListEndpoints(_ context.Context) ([]*model.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Endpoint, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) CountEndpoints(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.endpoints)), nil
}

func (r *fakeRepo) ListRules(_ context.Context, endpointID string) ([]*model.MockRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.MockRule, len(r.rules[endpointID]))
	copy(out, r.rules[endpointID])
	return out, nil
}

func (r *fakeRepo) GetRule(_ context.Context, ruleID string) (*model.MockRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.rules {
		for _, rule := range list {
			if rule.ID == ruleID {
				return rule, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeRepo) SaveRule(_ context.Context, rule *model.MockRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.rules[rule.EndpointID]
	for i, existing := range list {
		if existing.ID == rule.ID {
			list[i] = rule
			return nil
		}
	}
	r.rules[rule.EndpointID] = append(list, rule)
	return nil
}

func (r *fakeRepo) DeleteRule(_ context.Context, endpointID, ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.rules[endpointID]
	for i, rule := range list {
		if rule.ID == ruleID {
			r.rules[endpointID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) AppendLog(_ context.Context, log *model.RequestLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.EndpointID] = append(r.logs[log.EndpointID], log)
	return nil
}

func (r *fakeRepo) ListHistory(_ context.Context, endpointID string, limit int) ([]*model.RequestLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.logs[endpointID]
	out := make([]*model.RequestLog, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (r *fakeRepo) PurgeLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, list := range r.logs {
		kept := list[:0]
		for _, l := range list {
			if l.Timestamp.Before(cutoff) {
				purged++
			} else {
				kept = append(kept, l)
			}
		}
		r.logs[id] = kept
	}
	return purged, nil
}

func newService(t *testing.T) (iface.EndpointServiceIface, *fakeRepo) {
	t.Helper()
	limits := testLimits()
	repo := newFakeRepo()
	hub := broadcast.NewHubWithBuffer(16)
	guard := ratelimit.NewMemoryGuard(limits)
	registry := actor.NewRegistry(repo, guard, hub, limits)
	return NewEndpointManageService(repo, registry, limits), repo
}

func TestService_CreateEndpoint_DefaultsApplied(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders/:id"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "application/json", created.ContentType)
	assert.Equal(t, 200, created.StatusCode)
	assert.Equal(t, testLimits().DefaultRateLimit, created.RateLimit)
}

func TestService_CreateEndpoint_DuplicatePath(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders"})
	require.NoError(t, err)
	_, err = svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders"})
	assert.ErrorIs(t, err, storage.ErrDuplicatePath)
}

func TestService_CreateEndpoint_TierLimit(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, p := range []string{"/a", "/b", "/c"} {
		_, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: p})
		require.NoError(t, err)
	}

	_, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/d"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, CodeEndpointLimitReached, verrs[0].Code)
	assert.Equal(t, 3, verrs[0].Limit)
}

func TestService_CreateEndpoint_InvalidRejectedWithAllViolations(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.CreateEndpoint(ctx, &model.Endpoint{
		Path:    "no-slash",
		DelayMs: 100000,
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	// 校验失败不落库
	count, _ := repo.CountEndpoints(ctx)
	assert.Zero(t, count)
}

func TestService_UpdateEndpoint_NotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdateEndpoint(context.Background(), &model.Endpoint{ID: "nope", Path: "/x"})
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestService_DeleteEndpoint_CascadesAndEvicts(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders"})
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, created.ID, &model.MockRule{ResponseStatus: 200, IsActive: true})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEndpoint(ctx, created.ID))

	_, err = svc.GetEndpoint(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEndpointNotFound)
	rules, _ := repo.ListRules(ctx, created.ID)
	assert.Empty(t, rules)
}

func TestService_RuleLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders"})
	require.NoError(t, err)

	rule, err := svc.CreateRule(ctx, created.ID, &model.MockRule{
		Name:           "teapot",
		ResponseStatus: 418,
		IsActive:       true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rule.ID)

	rules, err := svc.ListRules(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rule.ResponseStatus = 503
	_, err = svc.UpdateRule(ctx, created.ID, rule)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(ctx, created.ID, rule.ID))
	rules, err = svc.ListRules(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestService_RuleOps_UnknownEndpoint(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, "nope", &model.MockRule{ResponseStatus: 200})
	assert.ErrorIs(t, err, ErrEndpointNotFound)

	err = svc.DeleteRule(ctx, "nope", "r1")
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestService_UpdateRule_WrongEndpoint(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ep1, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/a"})
	require.NoError(t, err)
	ep2, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/b"})
	require.NoError(t, err)

	rule, err := svc.CreateRule(ctx, ep1.ID, &model.MockRule{ResponseStatus: 200, IsActive: true})
	require.NoError(t, err)

	// 规则属于 ep1，经 ep2 更新或删除都按不存在处理
	_, err = svc.UpdateRule(ctx, ep2.ID, rule)
	assert.ErrorIs(t, err, ErrRuleNotFound)
	err = svc.DeleteRule(ctx, ep2.ID, rule.ID)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestService_ListHistoryWireShape(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.CreateEndpoint(ctx, &model.Endpoint{Path: "/orders"})
	require.NoError(t, err)

	body := `{"q":1}`
	require.NoError(t, repo.AppendLog(ctx, &model.RequestLog{
		ID:         "log-1",
		EndpointID: created.ID,
		Method:     "POST",
		Path:       "/orders",
		Headers:    model.HeaderMap{"x-a": "1"},
		Body:       &body,
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}))

	wire, err := svc.ListHistory(ctx, created.ID, 10)
	require.NoError(t, err)
	require.Len(t, wire, 1)
	assert.Equal(t, "log-1", wire[0].ID)
	assert.Equal(t, `{"x-a":"1"}`, wire[0].Headers)
	assert.Equal(t, "2026-03-01T12:00:00Z", wire[0].Timestamp)
}
