package model

import "strings"

// RenderBody 将 body 中的 {{name}} 占位符替换为参数值。
// 纯子串替换（非正则），每个参数只应用一次，按 params 的插入顺序执行，
// 不做二次扫描——某个参数值展开后恰好形成新占位符也不会再被替换。
func RenderBody(body string, params Params) string {
	if len(params) == 0 || body == "" {
		return body
	}
	for _, kv := range params {
		body = strings.ReplaceAll(body, "{{"+kv.Name+"}}", kv.Value)
	}
	return body
}
