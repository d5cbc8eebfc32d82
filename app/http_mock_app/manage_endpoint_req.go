package http_mock_app

import (
	"fmt"

	model "go_mock_hub/internal/domain/model/mock_endpoint"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type CreateEndpointRequest struct {
	Path         string `json:"path" validate:"required,startswith=/"`
	ContentType  string `json:"contentType" validate:"omitempty,max=100"`
	ResponseBody string `json:"responseBody"`
	StatusCode   int    `json:"statusCode" validate:"omitempty,min=100,max=599"`
	DelayMs      int    `json:"delayMs" validate:"min=0"`
	RateLimit    int    `json:"rateLimit" validate:"min=0"`
}

// Validate performs validation on CreateEndpointRequest
func (req *CreateEndpointRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ConvertToEndpoint converts CreateEndpointRequest DTO to Endpoint model
func (req *CreateEndpointRequest) ConvertToEndpoint() *model.Endpoint {
	return &model.Endpoint{
		Path:         req.Path,
		ContentType:  req.ContentType,
		ResponseBody: req.ResponseBody,
		StatusCode:   req.StatusCode,
		DelayMs:      req.DelayMs,
		RateLimit:    req.RateLimit,
	}
}

type UpdateEndpointRequest struct {
	Path         string `json:"path" validate:"required,startswith=/"`
	ContentType  string `json:"contentType" validate:"omitempty,max=100"`
	ResponseBody string `json:"responseBody"`
	StatusCode   int    `json:"statusCode" validate:"omitempty,min=100,max=599"`
	DelayMs      int    `json:"delayMs" validate:"min=0"`
	RateLimit    int    `json:"rateLimit" validate:"min=0"`
}

func (req *UpdateEndpointRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func (req *UpdateEndpointRequest) ConvertToEndpoint(endpointID string) *model.Endpoint {
	return &model.Endpoint{
		ID:           endpointID,
		Path:         req.Path,
		ContentType:  req.ContentType,
		ResponseBody: req.ResponseBody,
		StatusCode:   req.StatusCode,
		DelayMs:      req.DelayMs,
		RateLimit:    req.RateLimit,
	}
}

type RuleRequest struct {
	Name            string            `json:"name" validate:"omitempty,max=100"`
	Priority        int               `json:"priority" validate:"min=0"`
	MatchMethod     *string           `json:"matchMethod" validate:"omitempty,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	MatchPath       *string           `json:"matchPath" validate:"omitempty,startswith=/"`
	MatchHeaders    map[string]string `json:"matchHeaders"`
	ResponseStatus  int               `json:"responseStatus" validate:"omitempty,min=100,max=599"`
	ResponseHeaders map[string]string `json:"responseHeaders"`
	ResponseBody    string            `json:"responseBody"`
	ResponseDelayMs int               `json:"responseDelayMs" validate:"min=0"`
	IsActive        *bool             `json:"isActive"`
}

func (req *RuleRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ConvertToMockRule converts RuleRequest DTO to MockRule model
func (req *RuleRequest) ConvertToMockRule(endpointID, ruleID string) *model.MockRule {
	status := req.ResponseStatus
	if status == 0 {
		status = 200
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &model.MockRule{
		ID:              ruleID,
		EndpointID:      endpointID,
		Name:            req.Name,
		Priority:        req.Priority,
		MatchMethod:     req.MatchMethod,
		MatchPath:       req.MatchPath,
		MatchHeaders:    req.MatchHeaders,
		ResponseStatus:  status,
		ResponseHeaders: req.ResponseHeaders,
		ResponseBody:    req.ResponseBody,
		ResponseDelayMs: req.ResponseDelayMs,
		IsActive:        isActive,
	}
}
