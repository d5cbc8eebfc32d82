package http_mock_app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"go_mock_hub/internal/domain/actor"
	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/broadcast"
	"go_mock_hub/internal/infra/ratelimit"
	"go_mock_hub/internal/infra/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo 只实现 mock 请求链路用到的方法，其余走嵌入接口（调用即 panic）
type stubRepo struct {
	repo.EndpointRepositoryIface

	mu        sync.Mutex
	endpoints []*model.Endpoint
	rules     map[string][]*model.MockRule
	logs      map[string][]*model.RequestLog
}

func newStubRepo(endpoints ...*model.Endpoint) *stubRepo {
	return &stubRepo{
		endpoints: endpoints,
		rules:     make(map[string][]*model.MockRule),
		logs:      make(map[string][]*model.RequestLog),
	}
}

func (s *stubRepo) GetEndpoint(_ context.Context, endpointID string) (*model.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.endpoints {
		if e.ID == endpointID {
			return e, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ResolveEndpointByPath(_ context.Context, path string) (*model.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.endpoints {
		if e.Path == path {
			return e, nil
		}
	}
	for _, e := range s.endpoints {
		if e.MatchOwnPath(path).Matched {
			return e, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListRules(_ context.Context, endpointID string) ([]*model.MockRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules[endpointID], nil
}

func (s *stubRepo) SaveRule(_ context.Context, rule *model.MockRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.EndpointID] = append(s.rules[rule.EndpointID], rule)
	return nil
}

func (s *stubRepo) AppendLog(_ context.Context, log *model.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.EndpointID] = append(s.logs[log.EndpointID], log)
	return nil
}

func (s *stubRepo) ListHistory(_ context.Context, endpointID string, limit int) ([]*model.RequestLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.logs[endpointID]
	out := make([]*model.RequestLog, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func edgeLimits() configs.TierLimits {
	return configs.TierLimits{
		MaxEndpoints:     100,
		MaxResponseSize:  1024,
		MaxDelayMs:       3000,
		RequestsPerDay:   100000,
		DefaultRateLimit: 10000,
	}
}

func serverConfig() configs.ServerConfig {
	return configs.ServerConfig{
		WSPath:           "/ws",
		WSMessagesPerSec: 100,
		WSMessageBurst:   100,
		HistoryLimit:     50,
	}
}

func newTestServer(t *testing.T, store *stubRepo, limits configs.TierLimits) (*httptest.Server, *broadcast.Hub) {
	t.Helper()
	return newTestServerWith(t, store, limits, serverConfig())
}

func newTestServerWithWSConfig(t *testing.T, store *stubRepo, cfg configs.ServerConfig) (*httptest.Server, *broadcast.Hub) {
	t.Helper()
	return newTestServerWith(t, store, edgeLimits(), cfg)
}

func newTestServerWith(t *testing.T, store *stubRepo, limits configs.TierLimits, cfg configs.ServerConfig) (*httptest.Server, *broadcast.Hub) {
	t.Helper()
	hub := broadcast.NewHubWithBuffer(16)
	registry := actor.NewRegistry(store, ratelimit.NewMemoryGuard(limits), hub, limits)
	ws := NewWSHandler(registry, hub, cfg)
	handler := NewMockHandler(store, registry)
	srv := httptest.NewServer(handler.Router("/ws", ws))
	t.Cleanup(srv.Close)
	return srv, hub
}

func usersEndpoint() *model.Endpoint {
	return &model.Endpoint{
		ID:           "ep-1",
		Path:         "/users/:id",
		ContentType:  "application/json",
		ResponseBody: `{"id": "{{id}}"}`,
		StatusCode:   200,
		RateLimit:    10000,
	}
}

func TestMockHandler_ServesEndpointDefault(t *testing.T) {
	store := newStubRepo(usersEndpoint())
	srv, _ := newTestServer(t, store, edgeLimits())

	resp, err := http.Get(srv.URL + "/users/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"id": "42"}`, string(body))
}

func TestMockHandler_RuleResponseHeadersAndStatus(t *testing.T) {
	store := newStubRepo(usersEndpoint())
	store.rules["ep-1"] = []*model.MockRule{{
		ID:             "r1",
		EndpointID:     "ep-1",
		Priority:       5,
		ResponseStatus: 418,
		ResponseHeaders: model.HeaderMap{
			"Content-Type": "text/plain",
			"X-Mock-Rule":  "teapot",
		},
		ResponseBody: "short and stout",
		IsActive:     true,
	}}
	srv, _ := newTestServer(t, store, edgeLimits())

	resp, err := http.Get(srv.URL + "/users/1")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 418, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "teapot", resp.Header.Get("X-Mock-Rule"))
	assert.Equal(t, "short and stout", string(body))
}

func TestMockHandler_UnknownPath404(t *testing.T) {
	store := newStubRepo(usersEndpoint())
	srv, _ := newTestServer(t, store, edgeLimits())

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestMockHandler_RateLimited429WithRetryAfter(t *testing.T) {
	ep := usersEndpoint()
	ep.RateLimit = 2
	store := newStubRepo(ep)
	srv, _ := newTestServer(t, store, edgeLimits())

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/users/1")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, 200, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/users/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 0)
	assert.LessOrEqual(t, retryAfter, 60)
}

func TestMockHandler_RequestLogged(t *testing.T) {
	store := newStubRepo(usersEndpoint())
	srv, _ := newTestServer(t, store, edgeLimits())

	resp, err := http.Get(srv.URL + "/users/42")
	require.NoError(t, err)
	resp.Body.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.logs["ep-1"], 1)
	assert.Equal(t, "/users/42", store.logs["ep-1"][0].Path)
}
