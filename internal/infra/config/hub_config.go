// config/hub_config.go
package configs

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// HubConfig mock hub 服务配置
type HubConfig struct {
	DatabaseConfig       DatabaseConfig       `yaml:"database"`
	DatabaseOptionConfig DatabaseOptionConfig `yaml:"databaseConfig"`
	RedisConfig          RedisConfig          `yaml:"redis"`
	RepoConfig           RepoConfig           `yaml:"repo"`
	TierConfig           TierConfig           `yaml:"tier"`
	ServerConfig         ServerConfig         `yaml:"server"`
	BroadcastConfig      BroadcastConfig      `yaml:"broadcast"`
}

// RepoConfig 封装 endpointRepoImpl 的配置参数
type RepoConfig struct {
	RedisCacheRetryCount int           `json:"redisCacheRetryCount" yaml:"redisCacheRetryCount"`
	RedisCacheRetryDelay time.Duration `json:"redisCacheRetryDelay" yaml:"redisCacheRetryDelay"`
	AppendLogRetryCount  int           `json:"appendLogRetryCount" yaml:"appendLogRetryCount"`
	AppendLogRetryDelay  time.Duration `json:"appendLogRetryDelay" yaml:"appendLogRetryDelay"`
	AsyncTaskPoolSize    int           `json:"asyncTaskPoolSize" yaml:"asyncTaskPoolSize"`
}

// ServerConfig mock 流量入口配置
type ServerConfig struct {
	MockListenAddr    string        `yaml:"mockListenAddr"`    // mock 请求监听地址
	WSPath            string        `yaml:"wsPath"`            // 实时通道路径
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	WSMessagesPerSec  float64       `yaml:"wsMessagesPerSec"`  // 单连接入站消息限速
	WSMessageBurst    int           `yaml:"wsMessageBurst"`
	HistoryLimit      int           `yaml:"historyLimit"`      // getHistory 默认返回条数
	LogReaperInterval time.Duration `yaml:"logReaperInterval"` // 过期日志清理周期
}

// BroadcastConfig 订阅者投递配置
type BroadcastConfig struct {
	SubscriberBuffer int `yaml:"subscriberBuffer"` // 单订阅者缓冲，满则丢弃
}

// LoadHubConfig 加载配置
func LoadHubConfig() (*HubConfig, error) {
	// 1. 确定配置文件路径
	configPath := getConfigPath()

	// 2. 读取配置文件
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. 解析配置
	config := &HubConfig{}
	if err := yaml.Unmarshal(configFile, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 4. 填默认值并验证
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量
	if path := os.Getenv("MOCK_HUB_CONFIG_PATH"); path != "" {
		return path
	}

	// 默认配置文件路径
	env := os.Getenv("MOCK_HUB_ENV")
	if env == "" {
		env = "local"
	}

	return fmt.Sprintf("conf/mock_hub.%s.yaml", env)
}

func (c *HubConfig) applyDefaults() {
	if c.ServerConfig.MockListenAddr == "" {
		c.ServerConfig.MockListenAddr = ":8090"
	}
	if c.ServerConfig.WSPath == "" {
		c.ServerConfig.WSPath = "/ws"
	}
	if c.ServerConfig.WSMessagesPerSec == 0 {
		c.ServerConfig.WSMessagesPerSec = 10
	}
	if c.ServerConfig.WSMessageBurst == 0 {
		c.ServerConfig.WSMessageBurst = 20
	}
	if c.ServerConfig.HistoryLimit == 0 {
		c.ServerConfig.HistoryLimit = 50
	}
	if c.ServerConfig.LogReaperInterval == 0 {
		c.ServerConfig.LogReaperInterval = time.Hour
	}
	if c.BroadcastConfig.SubscriberBuffer == 0 {
		c.BroadcastConfig.SubscriberBuffer = 64
	}
	if c.RepoConfig.AsyncTaskPoolSize == 0 {
		c.RepoConfig.AsyncTaskPoolSize = 16
	}
	if c.RepoConfig.AppendLogRetryCount == 0 {
		c.RepoConfig.AppendLogRetryCount = 3
	}
	if c.RepoConfig.RedisCacheRetryCount == 0 {
		c.RepoConfig.RedisCacheRetryCount = 3
	}
}

// validate 验证配置
func (c *HubConfig) validate() error {
	// 验证数据库配置
	db := c.DatabaseConfig
	if db.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if db.Port == 0 {
		return fmt.Errorf("database port is required")
	}
	if db.Username == "" {
		return fmt.Errorf("database username is required")
	}
	if db.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// 验证数据库连接池配置
	dbConfig := c.DatabaseOptionConfig
	if dbConfig.MaxIdleConns <= 0 {
		return fmt.Errorf("maxIdleConns must be positive")
	}
	if dbConfig.MaxOpenConns <= 0 {
		return fmt.Errorf("maxOpenConns must be positive")
	}
	if dbConfig.MaxOpenConns < dbConfig.MaxIdleConns {
		return fmt.Errorf("maxOpenConns must be greater than or equal to maxIdleConns")
	}

	// 验证套餐配置
	if _, err := c.TierConfig.ResolveLimits(); err != nil {
		return err
	}

	return nil
}
