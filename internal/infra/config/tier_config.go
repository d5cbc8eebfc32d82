package configs

import "fmt"

// TierLimits 套餐限额表（进程级只读，启动时加载一次）
type TierLimits struct {
	MaxEndpoints     int   `yaml:"maxEndpoints"`
	MaxResponseSize  int   `yaml:"maxResponseSize"` // 响应体上限，UTF-8 字节数
	MaxDelayMs       int   `yaml:"maxDelayMs"`
	RequestsPerDay   int64 `yaml:"requestsPerDay"`
	DefaultRateLimit int   `yaml:"defaultRateLimit"` // endpoint 默认限流，次/分钟
	LogRetentionDays int   `yaml:"logRetentionDays"`
}

// 内置套餐，配置文件可覆盖
var builtinTiers = map[string]TierLimits{
	"free": {
		MaxEndpoints:     3,
		MaxResponseSize:  10 * 1024,
		MaxDelayMs:       3000,
		RequestsPerDay:   1000,
		DefaultRateLimit: 30,
		LogRetentionDays: 1,
	},
	"pro": {
		MaxEndpoints:     20,
		MaxResponseSize:  100 * 1024,
		MaxDelayMs:       10000,
		RequestsPerDay:   50000,
		DefaultRateLimit: 300,
		LogRetentionDays: 7,
	},
	"business": {
		MaxEndpoints:     100,
		MaxResponseSize:  1024 * 1024,
		MaxDelayMs:       30000,
		RequestsPerDay:   500000,
		DefaultRateLimit: 1200,
		LogRetentionDays: 30,
	},
}

// TierConfig 当前部署生效的套餐配置
type TierConfig struct {
	Name      string                `yaml:"name"`
	Overrides map[string]TierLimits `yaml:"overrides"`
}

// ResolveLimits 返回当前套餐的限额
func (c *TierConfig) ResolveLimits() (TierLimits, error) {
	name := c.Name
	if name == "" {
		name = "free"
	}
	if c.Overrides != nil {
		if limits, ok := c.Overrides[name]; ok {
			return limits, nil
		}
	}
	limits, ok := builtinTiers[name]
	if !ok {
		return TierLimits{}, fmt.Errorf("unknown tier: %s", name)
	}
	return limits, nil
}

// KnownTiers 返回所有内置套餐名称
func KnownTiers() []string {
	return []string{"free", "pro", "business"}
}

// NewTierLimits 解析当前部署生效的套餐限额（wire provider）
func NewTierLimits(c *HubConfig) (TierLimits, error) {
	return c.TierConfig.ResolveLimits()
}
