package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// HeaderMap 请求头/响应头键值对，JSON 列存储。nil 表示未配置（匹配任意）。
type HeaderMap map[string]string

// 实现 GORM 的 Scanner/Valuer 接口
func (m *HeaderMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return errors.New("header map: unsupported column type")
		}
	}
	return json.Unmarshal(b, m)
}

func (m HeaderMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// RequestContext 一次待匹配请求的快照（纯值，不持有 http.Request）
type RequestContext struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
}

// ResponseSpec 匹配后组装出的应答
type ResponseSpec struct {
	StatusCode  int
	ContentType string
	Headers     HeaderMap
	Body        string
	DelayMs     int
}
