package model

import "strings"

// PathMatch 一次路径匹配的结果
type PathMatch struct {
	Matched bool
	Params  Params
}

// MatchPath 将请求路径与模式按 `/` 分段比对。
//
//	/users/:id  + /users/42  => matched, {id: "42"}
//	/users/:id  + /users     => not matched（段数必须完全一致，不支持通配后缀）
//
// `:` 前缀的段为参数段，绑定任意字面段；其余段按字节精确比较（区分大小写）。
// 参数按模式中从左到右的出现顺序写入 Params。
func MatchPath(pattern, path string) PathMatch {
	patternSegs := splitSegments(pattern)
	pathSegs := splitSegments(path)

	if len(patternSegs) != len(pathSegs) {
		return PathMatch{Matched: false}
	}

	params := make(Params, 0, 2)
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			params.Set(name, pathSegs[i])
			continue
		}
		if seg != pathSegs[i] {
			return PathMatch{Matched: false}
		}
	}

	return PathMatch{Matched: true, Params: params}
}

func splitSegments(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
