package services

import (
	"fmt"
	"strings"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
)

// 校验错误码
const (
	CodePathRequired         = "PATH_REQUIRED"
	CodePathInvalid          = "PATH_INVALID"
	CodeResponseBodyTooLarge = "RESPONSE_BODY_TOO_LARGE"
	CodeStatusCodeInvalid    = "STATUS_CODE_INVALID"
	CodeDelayInvalid         = "DELAY_INVALID"
	CodeDelayTooLong         = "DELAY_TOO_LONG"
	CodeEndpointLimitReached = "ENDPOINT_LIMIT_REACHED"
)

// ValidationError 单条校验违规，Limit/Actual 给调用方精确的修正依据
type ValidationError struct {
	Code   string `json:"code"`
	Field  string `json:"field"`
	Limit  int    `json:"limit,omitempty"`
	Actual int    `json:"actual,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Limit > 0 || e.Actual > 0 {
		return fmt.Sprintf("%s: %s (limit %d, actual %d)", e.Code, e.Field, e.Limit, e.Actual)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Field)
}

// ValidationErrors 一次校验收集到的全部违规，不在首个错误处中断
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// validatePath 路径必须以 / 开头，段非空，参数段的名字非空
func validatePath(field, path string) *ValidationError {
	if !strings.HasPrefix(path, "/") {
		return &ValidationError{Code: CodePathInvalid, Field: field}
	}
	if strings.ContainsAny(path, " \t\r\n") {
		return &ValidationError{Code: CodePathInvalid, Field: field}
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		// 根路径 "/" 允许
		if path == "/" {
			return nil
		}
		return &ValidationError{Code: CodePathInvalid, Field: field}
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || seg == ":" {
			return &ValidationError{Code: CodePathInvalid, Field: field}
		}
	}
	return nil
}

func validateResponseFields(errs ValidationErrors, limits configs.TierLimits, body string, status, delayMs int, bodyField, statusField, delayField string) ValidationErrors {
	// 字节数而不是字符数，多字节字符按实际占用算
	if len(body) > limits.MaxResponseSize {
		errs = append(errs, ValidationError{
			Code:   CodeResponseBodyTooLarge,
			Field:  bodyField,
			Limit:  limits.MaxResponseSize,
			Actual: len(body),
		})
	}
	if status < 100 || status > 599 {
		errs = append(errs, ValidationError{Code: CodeStatusCodeInvalid, Field: statusField, Actual: status})
	}
	if delayMs < 0 {
		errs = append(errs, ValidationError{Code: CodeDelayInvalid, Field: delayField, Actual: delayMs})
	} else if delayMs > limits.MaxDelayMs {
		errs = append(errs, ValidationError{
			Code:   CodeDelayTooLong,
			Field:  delayField,
			Limit:  limits.MaxDelayMs,
			Actual: delayMs,
		})
	}
	return errs
}

// ValidateEndpoint 收集端点配置的全部违规，nil 表示通过
func ValidateEndpoint(e *model.Endpoint, limits configs.TierLimits) error {
	var errs ValidationErrors

	if e.Path == "" {
		errs = append(errs, ValidationError{Code: CodePathRequired, Field: "path"})
	} else if ve := validatePath("path", e.Path); ve != nil {
		errs = append(errs, *ve)
	}

	errs = validateResponseFields(errs, limits, e.ResponseBody, e.StatusCode, e.DelayMs,
		"responseBody", "statusCode", "delayMs")

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateRule 收集规则配置的全部违规，nil 表示通过
func ValidateRule(r *model.MockRule, limits configs.TierLimits) error {
	var errs ValidationErrors

	if r.MatchPath != nil {
		if ve := validatePath("matchPath", *r.MatchPath); ve != nil {
			errs = append(errs, *ve)
		}
	}

	errs = validateResponseFields(errs, limits, r.ResponseBody, r.ResponseStatus, r.ResponseDelayMs,
		"responseBody", "responseStatus", "responseDelayMs")

	if len(errs) > 0 {
		return errs
	}
	return nil
}
