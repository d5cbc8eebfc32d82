package model

import (
	"sort"
	"strings"
)

// RuleMatch 规则匹配结果
type RuleMatch struct {
	Rule       *MockRule
	PathParams Params
}

// MatchRule 在规则集中挑出支配该请求的唯一规则。纯函数，不产生副作用。
//
//  1. 过滤 isActive=false
//  2. 按 Priority 降序稳定排序——同优先级保持输入相对顺序，这是对外承诺的
//     平局契约，不依赖某个排序算法碰巧稳定
//  3. 依次检查 method / path / headers，首个全部通过的规则即为结果
//
// matchPath 为 nil 的规则继承 fallbackParams（端点自身路径已提取的参数）。
// 无规则命中返回 (nil, false)，由调用方回落端点默认应答。
func MatchRule(rules []*MockRule, req RequestContext, fallbackParams Params) (*RuleMatch, bool) {
	active := make([]*MockRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})

	for _, rule := range active {
		if rule.MatchMethod != nil && !strings.EqualFold(*rule.MatchMethod, req.Method) {
			continue
		}

		params := fallbackParams
		if rule.MatchPath != nil {
			pm := MatchPath(*rule.MatchPath, req.Path)
			if !pm.Matched {
				continue
			}
			params = pm.Params
		}

		if rule.MatchHeaders != nil && !MatchHeaders(rule.MatchHeaders, req.Headers) {
			continue
		}

		return &RuleMatch{Rule: rule, PathParams: params}, true
	}

	return nil, false
}
