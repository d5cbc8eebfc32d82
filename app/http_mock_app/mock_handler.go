package http_mock_app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go_mock_hub/internal/domain/actor"
	"go_mock_hub/internal/infra/ratelimit"
	"go_mock_hub/internal/infra/repo"
	"go_mock_hub/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MockHandler mock 流量入口。任意路径的请求按端点路径定位后交给对应 actor
type MockHandler struct {
	repo     repo.EndpointRepositoryIface
	registry *actor.Registry
}

func NewMockHandler(r repo.EndpointRepositoryIface, registry *actor.Registry) *MockHandler {
	return &MockHandler{repo: r, registry: registry}
}

// Router 组装 mock 流量的路由：实时通道挂固定路径，其余全部进 mock 分发
func (h *MockHandler) Router(wsPath string, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(wsPath, ws.Serve)
	r.HandleFunc("/*", h.ServeMock)
	return r
}

// ServeMock 处理一次 mock 请求
func (h *MockHandler) ServeMock(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger()
	req := BuildRequestContext(r)

	endpoint, err := h.repo.ResolveEndpointByPath(r.Context(), req.Path)
	if err != nil {
		logger.Errorf("resolve endpoint for %s err: %v", req.Path, err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if endpoint == nil {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no mock endpoint for path %s", req.Path),
		})
		return
	}

	a, err := h.registry.Get(r.Context(), endpoint.ID)
	if err != nil {
		logger.Errorf("load actor for endpoint %s err: %v", endpoint.ID, err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if a == nil {
		// 刚被删除，缓存里残留的路径映射
		writeJSONStatus(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no mock endpoint for path %s", req.Path),
		})
		return
	}

	resp, err := a.HandleRequest(r.Context(), req)
	if err != nil {
		var rle *actor.RateLimitedError
		switch {
		case errors.As(err, &rle):
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rle.RetryAfter.Seconds()))
			payload := map[string]string{"error": "rate limit exceeded"}
			if rle.Scope == ratelimit.ScopeAccount {
				payload["error"] = "daily request quota exceeded"
			}
			writeJSONStatus(w, http.StatusTooManyRequests, payload)
		case errors.Is(err, r.Context().Err()):
			// 客户端在延迟期间断开，无人接收应答
		default:
			logger.Errorf("handle mock request for endpoint %s err: %v", endpoint.ID, err)
			writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(resp.Body))
}

func writeJSONStatus(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
