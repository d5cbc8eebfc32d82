package model

import (
	"encoding/json"
	"time"
)

// RequestLog 捕获的请求记录。只追加，落库后不可变，按套餐保留期由 reaper 清理。
type RequestLog struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EndpointID      string    `gorm:"type:varchar(36);index:idx_log_endpoint" json:"endpointId"`
	Method          string    `gorm:"type:varchar(20)" json:"method"`
	Path            string    `gorm:"type:varchar(255)" json:"path"`
	Headers         HeaderMap `gorm:"type:json" json:"headers"`
	Body            *string   `gorm:"type:text" json:"body"`
	Timestamp       time.Time `gorm:"index:idx_log_timestamp" json:"timestamp"`
	MatchedRuleID   *string   `gorm:"type:varchar(36)" json:"matchedRuleId"`
	MatchedRuleName *string   `gorm:"type:varchar(100)" json:"matchedRuleName"`
	PathParams      Params    `gorm:"type:json" json:"pathParams"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}

// RequestLogWire 实时通道与历史查询的线上形态。
// headers/path_params 传 JSON 字符串，时间戳为 ISO8601。
type RequestLogWire struct {
	ID              string  `json:"id"`
	EndpointID      string  `json:"endpoint_id"`
	Method          string  `json:"method"`
	Path            string  `json:"path"`
	Headers         string  `json:"headers"`
	Body            *string `json:"body"`
	Timestamp       string  `json:"timestamp"`
	MatchedRuleID   *string `json:"matched_rule_id"`
	MatchedRuleName *string `json:"matched_rule_name"`
	PathParams      *string `json:"path_params"`
}

// ToWire 转为线上形态
func (l *RequestLog) ToWire() *RequestLogWire {
	headers := "{}"
	if l.Headers != nil {
		if b, err := json.Marshal(l.Headers); err == nil {
			headers = string(b)
		}
	}

	var pathParams *string
	if l.PathParams != nil {
		if b, err := l.PathParams.MarshalJSON(); err == nil {
			s := string(b)
			pathParams = &s
		}
	}

	return &RequestLogWire{
		ID:              l.ID,
		EndpointID:      l.EndpointID,
		Method:          l.Method,
		Path:            l.Path,
		Headers:         headers,
		Body:            l.Body,
		Timestamp:       l.Timestamp.UTC().Format(time.RFC3339Nano),
		MatchedRuleID:   l.MatchedRuleID,
		MatchedRuleName: l.MatchedRuleName,
		PathParams:      pathParams,
	}
}
