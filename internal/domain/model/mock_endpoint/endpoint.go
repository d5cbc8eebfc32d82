package model

import (
	"time"
)

// Endpoint mock 端点聚合根（核心领域对象）。
// Path 在全局唯一，重复创建由存储层的唯一索引拒绝。
type Endpoint struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Path         string    `gorm:"type:varchar(255);uniqueIndex:idx_endpoint_path" json:"path" validate:"required"`
	ContentType  string    `gorm:"type:varchar(100);default:application/json" json:"contentType"`
	ResponseBody string    `gorm:"type:text" json:"responseBody"`
	StatusCode   int       `gorm:"default:200" json:"statusCode"`
	DelayMs      int       `gorm:"default:0" json:"delayMs"`
	RateLimit    int       `json:"rateLimit"` // 次/分钟，创建时取套餐默认值
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Endpoint) TableName() string {
	return "endpoints"
}

// DefaultResponse 未命中任何规则时的兜底应答
func (e *Endpoint) DefaultResponse() ResponseSpec {
	return ResponseSpec{
		StatusCode:  e.StatusCode,
		ContentType: e.ContentType,
		Body:        e.ResponseBody,
		DelayMs:     e.DelayMs,
	}
}

// MatchOwnPath 用端点自身的路径模式匹配请求路径，提取端点级参数。
// 规则的 matchPath 为空时继承这里提取的参数。
func (e *Endpoint) MatchOwnPath(reqPath string) PathMatch {
	return MatchPath(e.Path, reqPath)
}
