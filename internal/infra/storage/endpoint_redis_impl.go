package storage

import (
	"context"
	"encoding/json"
	"fmt"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/utils"

	"github.com/go-redis/redis/v8"
)

const (
	endpointPathKeyPrefix = "mock_ep:path:"  // path -> endpoint JSON
	endpointRulesPrefix   = "mock_ep:rules:" // endpointID -> rules JSON
)

type redisEndpointCacheImpl struct {
	redisClient *redis.Client
}

func NewRedisClient(c *configs.HubConfig) *redis.Client {
	// 配置 Redis 连接参数
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.RedisConfig.Host, c.RedisConfig.Port),
		Password: c.RedisConfig.Password,
		DB:       c.RedisConfig.Database,
	})

	// 测试连接是否成功
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}

func NewRedisEndpointCacheImpl(redisClient *redis.Client) RedisEndpointCacheIface {
	return &redisEndpointCacheImpl{
		redisClient: redisClient,
	}
}

var _ RedisEndpointCacheIface = (*redisEndpointCacheImpl)(nil)

// GetEndpointByPath 按路径从缓存查找端点
func (r *redisEndpointCacheImpl) GetEndpointByPath(ctx context.Context, path string) (*model.Endpoint, error) {
	key := endpointPathKeyPrefix + path
	raw, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("key %s not exist", key)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get endpoint from redis: %w", err)
	}

	endpoint := &model.Endpoint{}
	if err := json.Unmarshal([]byte(raw), endpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal endpoint from JSON: %w", err)
	}
	return endpoint, nil
}

func (r *redisEndpointCacheImpl) SetEndpointToCache(ctx context.Context, endpoint *model.Endpoint) error {
	raw, err := json.Marshal(endpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal endpoint to JSON: %w", err)
	}

	key := endpointPathKeyPrefix + endpoint.Path
	if err := r.redisClient.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set endpoint to redis: %w", err)
	}
	return nil
}

func (r *redisEndpointCacheImpl) DeleteEndpointFromCache(ctx context.Context, endpoint *model.Endpoint) error {
	key := endpointPathKeyPrefix + endpoint.Path
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete endpoint from redis: %w", err)
	}
	return nil
}

// GetRulesFromCache 获取端点规则集快照（保持插入顺序）
func (r *redisEndpointCacheImpl) GetRulesFromCache(ctx context.Context, endpointID string) ([]*model.MockRule, error) {
	key := endpointRulesPrefix + endpointID
	raw, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		utils.GetLogger().Debugf("rules cache miss for endpoint %s", endpointID)
		return nil, fmt.Errorf("key %s not exist", key)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get rules from redis: %w", err)
	}

	var rules []*model.MockRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules from JSON: %w", err)
	}
	return rules, nil
}

func (r *redisEndpointCacheImpl) SetRulesToCache(ctx context.Context, endpointID string, rules []*model.MockRule) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules to JSON: %w", err)
	}

	key := endpointRulesPrefix + endpointID
	if err := r.redisClient.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set rules to redis: %w", err)
	}
	return nil
}

func (r *redisEndpointCacheImpl) DeleteRulesFromCache(ctx context.Context, endpointID string) error {
	key := endpointRulesPrefix + endpointID
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete rules from redis: %w", err)
	}
	return nil
}
