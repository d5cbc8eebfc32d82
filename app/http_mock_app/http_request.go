package http_mock_app

import (
	"io"
	"net/http"
	"strings"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
)

// BuildRequestContext 把 HTTP 请求折叠为匹配引擎的输入形态
func BuildRequestContext(r *http.Request) model.RequestContext {
	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		headers[key] = values[0] // 多值头只取第一个
	}

	body := ""
	if r.Body != nil {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		body = buf.String()
	}

	return model.RequestContext{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: headers,
		Body:    body,
	}
}
