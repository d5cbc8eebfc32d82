package model

import "strings"

// MatchHeaders 校验 required 的每个键值都出现在 actual 中。
// 键不区分大小写，值按字节精确比较。required 为空视为命中。
func MatchHeaders(required, actual map[string]string) bool {
	if len(required) == 0 {
		return true
	}

	// 构造小写键副本
	lowered := make(map[string]string, len(actual))
	for k, v := range actual {
		lowered[strings.ToLower(k)] = v
	}

	for k, want := range required {
		got, ok := lowered[strings.ToLower(k)]
		if !ok || got != want {
			return false
		}
	}
	return true
}
