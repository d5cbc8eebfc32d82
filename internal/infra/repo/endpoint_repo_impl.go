package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/storage"
	"go_mock_hub/utils"

	"github.com/avast/retry-go/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// endpointRepoImpl 实现了 EndpointRepositoryIface 接口
// (singleflight 并发控制, retry-go, ants pool, config)
type endpointRepoImpl struct {
	mysqlStorage storage.MySQLEndpointStorageIface
	redisCache   storage.RedisEndpointCacheIface
	config       *configs.RepoConfig
	taskPool     *ants.Pool
	sfGroup      singleflight.Group
}

// 确保 endpointRepoImpl 实现了接口 (编译时检查)
var _ EndpointRepositoryIface = (*endpointRepoImpl)(nil)

func NewRepoConfig(c *configs.HubConfig) *configs.RepoConfig {
	return &c.RepoConfig
}

func NewEndpointRepoImpl(mysqlStorage storage.MySQLEndpointStorageIface, redisCache storage.RedisEndpointCacheIface, config *configs.RepoConfig) EndpointRepositoryIface {
	taskPool, err := ants.NewPool(config.AsyncTaskPoolSize)
	if err != nil {
		panic(fmt.Errorf("failed to create ants pool: %w", err))
	}

	return &endpointRepoImpl{
		mysqlStorage: mysqlStorage,
		redisCache:   redisCache,
		config:       config,
		taskPool:     taskPool,
		sfGroup:      singleflight.Group{},
	}
}

func (r *endpointRepoImpl) CreateEndpoint(ctx context.Context, endpoint *model.Endpoint) error {
	// 1. 落库（唯一索引拒绝重复路径）
	if err := r.mysqlStorage.SaveEndpointToDB(ctx, endpoint); err != nil {
		return err
	}

	// 2. 异步写缓存
	r.submitCacheTask(func() error {
		return r.redisCache.SetEndpointToCache(context.Background(), endpoint)
	})
	return nil
}

func (r *endpointRepoImpl) UpdateEndpoint(ctx context.Context, endpoint *model.Endpoint) error {
	// 先取旧记录，路径变了要清掉旧缓存键
	old, err := r.mysqlStorage.GetEndpointFromDB(ctx, endpoint.ID)
	if err != nil {
		return err
	}

	if err := r.mysqlStorage.UpdateEndpointInDB(ctx, endpoint); err != nil {
		return err
	}

	r.submitCacheTask(func() error {
		bg := context.Background()
		if old != nil && old.Path != endpoint.Path {
			if err := r.redisCache.DeleteEndpointFromCache(bg, old); err != nil {
				return err
			}
		}
		return r.redisCache.SetEndpointToCache(bg, endpoint)
	})
	return nil
}

func (r *endpointRepoImpl) DeleteEndpoint(ctx context.Context, endpointID string) error {
	endpoint, err := r.mysqlStorage.GetEndpointFromDB(ctx, endpointID)
	if err != nil {
		return err
	}
	if endpoint == nil {
		return nil
	}

	if err := r.mysqlStorage.DeleteEndpointFromDB(ctx, endpointID); err != nil {
		return err
	}

	r.submitCacheTask(func() error {
		bg := context.Background()
		if err := r.redisCache.DeleteEndpointFromCache(bg, endpoint); err != nil {
			return err
		}
		return r.redisCache.DeleteRulesFromCache(bg, endpointID)
	})
	return nil
}

func (r *endpointRepoImpl) GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	return r.mysqlStorage.GetEndpointFromDB(ctx, endpointID)
}

func (r *endpointRepoImpl) ResolveEndpointByPath(ctx context.Context, path string) (*model.Endpoint, error) {
	// 先查缓存（精确路径键）
	if endpoint, err := r.redisCache.GetEndpointByPath(ctx, path); err == nil {
		return endpoint, nil
	}

	// singleflight 防止并发穿透
	data, err, _ := r.sfGroup.Do("resolve_endpoint_"+path, func() (interface{}, error) {
		// 1. 精确匹配
		endpoint, err := r.mysqlStorage.GetEndpointByPathFromDB(ctx, path)
		if err != nil {
			return nil, err
		}

		// 2. 模式匹配：端点路径可能含 :param 段
		if endpoint == nil {
			endpoints, err := r.mysqlStorage.ListEndpointsFromDB(ctx)
			if err != nil {
				return nil, err
			}
			for _, ep := range endpoints {
				if !strings.Contains(ep.Path, ":") {
					continue
				}
				if ep.MatchOwnPath(path).Matched {
					endpoint = ep
					break
				}
			}
		}

		if endpoint == nil {
			return (*model.Endpoint)(nil), nil
		}

		// 异步回填缓存（按端点自身路径为键）
		found := endpoint
		r.submitCacheTask(func() error {
			return r.redisCache.SetEndpointToCache(context.Background(), found)
		})
		return endpoint, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*model.Endpoint), nil
}

func (r *endpointRepoImpl) ListEndpoints(ctx context.Context) ([]*model.Endpoint, error) {
	return r.mysqlStorage.ListEndpointsFromDB(ctx)
}

func (r *endpointRepoImpl) CountEndpoints(ctx context.Context) (int64, error) {
	return r.mysqlStorage.CountEndpointsInDB(ctx)
}

// ListRules 获取端点规则集，先查缓存，未命中回源并异步回填
func (r *endpointRepoImpl) ListRules(ctx context.Context, endpointID string) ([]*model.MockRule, error) {
	if rules, err := r.redisCache.GetRulesFromCache(ctx, endpointID); err == nil {
		return rules, nil
	}

	data, err, _ := r.sfGroup.Do("list_rules_"+endpointID, func() (interface{}, error) {
		rules, err := r.mysqlStorage.ListRulesByEndpoint(ctx, endpointID)
		if err != nil {
			return nil, err
		}

		r.submitCacheTask(func() error {
			return r.redisCache.SetRulesToCache(context.Background(), endpointID, rules)
		})
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]*model.MockRule), nil
}

func (r *endpointRepoImpl) GetRule(ctx context.Context, ruleID string) (*model.MockRule, error) {
	return r.mysqlStorage.GetRuleFromDB(ctx, ruleID)
}

// SaveRule 保存规则并使规则集缓存失效
func (r *endpointRepoImpl) SaveRule(ctx context.Context, rule *model.MockRule) error {
	if err := r.mysqlStorage.SaveRuleToDB(ctx, rule); err != nil {
		return err
	}

	r.submitCacheTask(func() error {
		return r.redisCache.DeleteRulesFromCache(context.Background(), rule.EndpointID)
	})
	return nil
}

func (r *endpointRepoImpl) DeleteRule(ctx context.Context, endpointID, ruleID string) error {
	if err := r.mysqlStorage.DeleteRuleFromDB(ctx, endpointID, ruleID); err != nil {
		return err
	}

	r.submitCacheTask(func() error {
		return r.redisCache.DeleteRulesFromCache(context.Background(), endpointID)
	})
	return nil
}

// AppendLog 异步落库。持久化失败只记日志——mock 应答已经算出来，
// 不能因为日志写失败让请求方吃错误。
func (r *endpointRepoImpl) AppendLog(_ context.Context, entry *model.RequestLog) error {
	log := utils.GetLogger()
	if err := r.taskPool.Submit(func() {
		err := retry.Do(
			func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return r.mysqlStorage.AppendLogToDB(ctx, entry)
			},
			retry.Attempts(uint(r.config.AppendLogRetryCount)),
			retry.Delay(r.config.AppendLogRetryDelay),
		)
		if err != nil {
			log.Errorf("failed to persist request log %s: %v", entry.ID, err)
		}
	}); err != nil {
		log.Errorf("failed to submit log persist task: %v", err)
	}
	return nil
}

func (r *endpointRepoImpl) ListHistory(ctx context.Context, endpointID string, limit int) ([]*model.RequestLog, error) {
	return r.mysqlStorage.ListLogsFromDB(ctx, endpointID, limit)
}

func (r *endpointRepoImpl) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.mysqlStorage.DeleteLogsBefore(ctx, cutoff)
}

// submitCacheTask 提交异步缓存维护任务，带重试
func (r *endpointRepoImpl) submitCacheTask(task func() error) {
	log := utils.GetLogger()
	if err := r.taskPool.Submit(func() {
		err := retry.Do(
			task,
			retry.Attempts(uint(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
		)
		if err != nil {
			log.Warnf("async cache maintenance failed: %v", err)
		}
	}); err != nil {
		log.Warnf("failed to submit cache task: %v", err)
	}
}
