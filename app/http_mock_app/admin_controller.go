package http_mock_app

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"

	"go_mock_hub/internal/domain/iface"
	"go_mock_hub/internal/domain/services"
	"go_mock_hub/internal/infra/storage"
	"go_mock_hub/utils"

	"github.com/go-chassis/go-chassis/v2/pkg/metrics"
	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

// AdminController 端点与规则管理的 REST 入口
type AdminController struct {
	EndpointService iface.EndpointServiceIface
	HistoryLimit    int
}

func NewAdminController(endpointService iface.EndpointServiceIface) *AdminController {
	return &AdminController{
		EndpointService: endpointService,
		HistoryLimit:    50,
	}
}

type errorResponse struct {
	Error  string                      `json:"error"`
	Errors []services.ValidationError  `json:"errors,omitempty"`
}

// writeError 业务错误到 HTTP 状态码的统一映射
func writeError(b *rf.Context, err error) {
	var verrs services.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		b.WriteHeader(http.StatusUnprocessableEntity)
		b.WriteJSON(errorResponse{Error: verrs.Error(), Errors: verrs}, "application/json")
	case errors.Is(err, storage.ErrDuplicatePath):
		b.WriteHeader(http.StatusConflict)
		b.WriteJSON(errorResponse{Error: "endpoint path already exists"}, "application/json")
	case errors.Is(err, services.ErrEndpointNotFound), errors.Is(err, services.ErrRuleNotFound):
		b.WriteHeader(http.StatusNotFound)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
	default:
		b.WriteHeader(http.StatusInternalServerError)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
	}
}

func (c *AdminController) guard(b *rf.Context, name string) func() {
	metrics.CounterAdd("request_counter", 1, map[string]string{
		"method":   b.ReadRequest().Method,
		"endpoint": b.ReadRequest().URL.Path,
	})
	return func() {
		if err := recover(); err != nil {
			utils.GetLogger().WithFields(map[string]interface{}{
				"panic":   err,
				"stack":   string(debug.Stack()),
				"handler": name,
			}).Error("handle request panic")
			b.WriteHeader(http.StatusInternalServerError)
			b.WriteJSON(errorResponse{Error: "Internal server error"}, "application/json")
		}
	}
}

func (c *AdminController) CreateEndpoint(b *rf.Context) {
	logger := utils.GetLogger()
	defer c.guard(b, "CreateEndpoint")()

	var req CreateEndpointRequest
	if err := b.ReadEntity(&req); err != nil {
		logger.Errorf("read request body err: %v", err)
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}
	if err := req.Validate(); err != nil {
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}

	created, err := c.EndpointService.CreateEndpoint(b.Ctx, req.ConvertToEndpoint())
	if err != nil {
		logger.Errorf("create endpoint err: %v", err)
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusCreated)
	b.WriteJSON(created, "application/json")
}

func (c *AdminController) ListEndpoints(b *rf.Context) {
	defer c.guard(b, "ListEndpoints")()

	endpoints, err := c.EndpointService.ListEndpoints(b.Ctx)
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(endpoints, "application/json")
}

func (c *AdminController) GetEndpoint(b *rf.Context) {
	defer c.guard(b, "GetEndpoint")()

	endpoint, err := c.EndpointService.GetEndpoint(b.Ctx, b.ReadPathParameter("endpointId"))
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(endpoint, "application/json")
}

func (c *AdminController) UpdateEndpoint(b *rf.Context) {
	logger := utils.GetLogger()
	defer c.guard(b, "UpdateEndpoint")()

	var req UpdateEndpointRequest
	if err := b.ReadEntity(&req); err != nil {
		logger.Errorf("read request body err: %v", err)
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}
	if err := req.Validate(); err != nil {
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}

	updated, err := c.EndpointService.UpdateEndpoint(b.Ctx, req.ConvertToEndpoint(b.ReadPathParameter("endpointId")))
	if err != nil {
		logger.Errorf("update endpoint err: %v", err)
		writeError(b, err)
		return
	}
	b.WriteJSON(updated, "application/json")
}

func (c *AdminController) DeleteEndpoint(b *rf.Context) {
	defer c.guard(b, "DeleteEndpoint")()

	if err := c.EndpointService.DeleteEndpoint(b.Ctx, b.ReadPathParameter("endpointId")); err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(struct {
		Message string `json:"message"`
	}{Message: "success"}, "application/json")
}

func (c *AdminController) CreateRule(b *rf.Context) {
	logger := utils.GetLogger()
	defer c.guard(b, "CreateRule")()

	var req RuleRequest
	if err := b.ReadEntity(&req); err != nil {
		logger.Errorf("read request body err: %v", err)
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}
	if err := req.Validate(); err != nil {
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}

	endpointID := b.ReadPathParameter("endpointId")
	created, err := c.EndpointService.CreateRule(b.Ctx, endpointID, req.ConvertToMockRule(endpointID, ""))
	if err != nil {
		logger.Errorf("create rule err: %v", err)
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusCreated)
	b.WriteJSON(created, "application/json")
}

func (c *AdminController) ListRules(b *rf.Context) {
	defer c.guard(b, "ListRules")()

	rules, err := c.EndpointService.ListRules(b.Ctx, b.ReadPathParameter("endpointId"))
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(rules, "application/json")
}

func (c *AdminController) UpdateRule(b *rf.Context) {
	logger := utils.GetLogger()
	defer c.guard(b, "UpdateRule")()

	var req RuleRequest
	if err := b.ReadEntity(&req); err != nil {
		logger.Errorf("read request body err: %v", err)
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}
	if err := req.Validate(); err != nil {
		b.WriteHeader(http.StatusBadRequest)
		b.WriteJSON(errorResponse{Error: err.Error()}, "application/json")
		return
	}

	endpointID := b.ReadPathParameter("endpointId")
	ruleID := b.ReadPathParameter("ruleId")
	updated, err := c.EndpointService.UpdateRule(b.Ctx, endpointID, req.ConvertToMockRule(endpointID, ruleID))
	if err != nil {
		logger.Errorf("update rule err: %v", err)
		writeError(b, err)
		return
	}
	b.WriteJSON(updated, "application/json")
}

func (c *AdminController) DeleteRule(b *rf.Context) {
	defer c.guard(b, "DeleteRule")()

	endpointID := b.ReadPathParameter("endpointId")
	ruleID := b.ReadPathParameter("ruleId")
	if err := c.EndpointService.DeleteRule(b.Ctx, endpointID, ruleID); err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(struct {
		Message string `json:"message"`
	}{Message: "success"}, "application/json")
}

func (c *AdminController) ListHistory(b *rf.Context) {
	defer c.guard(b, "ListHistory")()

	limit := c.HistoryLimit
	if raw := b.ReadQueryParameter("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	logs, err := c.EndpointService.ListHistory(b.Ctx, b.ReadPathParameter("endpointId"), limit)
	if err != nil {
		writeError(b, err)
		return
	}
	b.WriteJSON(struct {
		Data interface{} `json:"data"`
	}{Data: logs}, "application/json")
}

func (c *AdminController) URLPatterns() []rf.Route {
	return []rf.Route{
		{Method: "POST", Path: "/admin/endpoints", ResourceFunc: c.CreateEndpoint,
			Returns: []*rf.Returns{{Code: 201}}},
		{Method: "GET", Path: "/admin/endpoints", ResourceFunc: c.ListEndpoints,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "GET", Path: "/admin/endpoints/{endpointId}", ResourceFunc: c.GetEndpoint,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "PUT", Path: "/admin/endpoints/{endpointId}", ResourceFunc: c.UpdateEndpoint,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "DELETE", Path: "/admin/endpoints/{endpointId}", ResourceFunc: c.DeleteEndpoint,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "POST", Path: "/admin/endpoints/{endpointId}/rules", ResourceFunc: c.CreateRule,
			Returns: []*rf.Returns{{Code: 201}}},
		{Method: "GET", Path: "/admin/endpoints/{endpointId}/rules", ResourceFunc: c.ListRules,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "PUT", Path: "/admin/endpoints/{endpointId}/rules/{ruleId}", ResourceFunc: c.UpdateRule,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "DELETE", Path: "/admin/endpoints/{endpointId}/rules/{ruleId}", ResourceFunc: c.DeleteRule,
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "GET", Path: "/admin/endpoints/{endpointId}/history", ResourceFunc: c.ListHistory,
			Returns: []*rf.Returns{{Code: 200}}},
	}
}
