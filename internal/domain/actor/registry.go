package actor

import (
	"context"
	"sync"

	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/ratelimit"

	"golang.org/x/sync/singleflight"
)

// Registry 端点 actor 注册表，懒创建。
// 端点之间完全独立，没有跨端点的锁。
type Registry struct {
	mu      sync.RWMutex
	actors  map[string]*EndpointActor
	sfGroup singleflight.Group

	store  Store
	guard  ratelimit.Guard
	hub    Publisher
	limits configs.TierLimits
}

func NewRegistry(store Store, guard ratelimit.Guard, hub Publisher, limits configs.TierLimits) *Registry {
	return &Registry{
		actors: make(map[string]*EndpointActor),
		store:  store,
		guard:  guard,
		hub:    hub,
		limits: limits,
	}
}

// Get 获取端点的 actor，不存在则创建。端点本身不存在返回 (nil, nil)。
func (r *Registry) Get(ctx context.Context, endpointID string) (*EndpointActor, error) {
	r.mu.RLock()
	a, ok := r.actors[endpointID]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	// singleflight 防止同一端点并发重复创建
	data, err, _ := r.sfGroup.Do("actor_"+endpointID, func() (interface{}, error) {
		r.mu.RLock()
		a, ok := r.actors[endpointID]
		r.mu.RUnlock()
		if ok {
			return a, nil
		}

		a, err := newEndpointActor(ctx, endpointID, r.store, r.guard, r.hub, r.limits)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return (*EndpointActor)(nil), nil
		}

		r.mu.Lock()
		r.actors[endpointID] = a
		r.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*EndpointActor), nil
}

// Evict 端点删除时移除 actor
func (r *Registry) Evict(endpointID string) {
	r.mu.Lock()
	delete(r.actors, endpointID)
	r.mu.Unlock()
}
