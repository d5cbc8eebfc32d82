package model

import (
	"time"
)

// MockRule 规则聚合根。挂在一个 Endpoint 下，按 Priority 降序参与匹配。
// MatchMethod/MatchPath 为 nil 表示任意匹配。
type MockRule struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EndpointID      string    `gorm:"type:varchar(36);index:idx_rule_endpoint" json:"endpointId"`
	Priority        int       `gorm:"default:0" json:"priority"`
	Name            string    `gorm:"type:varchar(100)" json:"name"`
	MatchMethod     *string   `gorm:"type:varchar(20)" json:"matchMethod"`
	MatchPath       *string   `gorm:"type:varchar(255)" json:"matchPath"`
	MatchHeaders    HeaderMap `gorm:"type:json" json:"matchHeaders"`
	ResponseStatus  int       `gorm:"default:200" json:"responseStatus"`
	ResponseHeaders HeaderMap `gorm:"type:json" json:"responseHeaders"`
	ResponseBody    string    `gorm:"type:text" json:"responseBody"`
	ResponseDelayMs int       `gorm:"default:0" json:"responseDelayMs"`
	IsActive        bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (MockRule) TableName() string {
	return "mock_rules"
}

// Response 规则命中后的应答（contentType 从响应头取，缺省回落端点配置）
func (r *MockRule) Response(fallbackContentType string) ResponseSpec {
	contentType := fallbackContentType
	if ct, ok := r.ResponseHeaders["Content-Type"]; ok {
		contentType = ct
	}
	return ResponseSpec{
		StatusCode:  r.ResponseStatus,
		ContentType: contentType,
		Headers:     r.ResponseHeaders,
		Body:        r.ResponseBody,
		DelayMs:     r.ResponseDelayMs,
	}
}
