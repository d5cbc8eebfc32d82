package broadcast

import (
	"sync"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/utils"

	"github.com/google/uuid"
)

// Subscriber 一条观察某端点捕获请求的实时连接。
// 连接时创建，断开即销毁，不持有任何持久状态。
type Subscriber struct {
	ID         string
	EndpointID string
	events     chan *model.RequestLogWire
	closeOnce  sync.Once
}

// Events 订阅者的事件通道。Hub 关闭订阅时通道被 close。
func (s *Subscriber) Events() <-chan *model.RequestLogWire {
	return s.events
}

// Hub 按端点分主题的广播中枢。
// 投递对每个订阅者独立且非阻塞：缓冲满即丢弃该订阅者的这条事件，
// 慢消费者不会拖慢中枢或请求链路。
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{} // endpointID -> subscribers
	buffer int
}

func NewHub(c *configs.HubConfig) *Hub {
	return NewHubWithBuffer(c.BroadcastConfig.SubscriberBuffer)
}

func NewHubWithBuffer(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe 注册一个端点的订阅者
func (h *Hub) Subscribe(endpointID string) *Subscriber {
	sub := &Subscriber{
		ID:         uuid.NewString(),
		EndpointID: endpointID,
		events:     make(chan *model.RequestLogWire, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[endpointID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.topics[endpointID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe 立即释放订阅，断开中的订阅者错过当前事件即可，不重试不补发
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[sub.EndpointID]; ok {
		if _, exists := subs[sub]; exists {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, sub.EndpointID)
			}
			sub.closeOnce.Do(func() { close(sub.events) })
		}
	}
}

// Publish 向端点的所有在线订阅者投递一条日志事件，每个订阅者尽力而为
func (h *Hub) Publish(endpointID string, log *model.RequestLogWire) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs, ok := h.topics[endpointID]
	if !ok {
		return
	}
	for sub := range subs {
		select {
		case sub.events <- log:
		default:
			// 缓冲满，丢弃这条事件，只影响该订阅者
			utils.GetLogger().Debugf("subscriber %s buffer full, event dropped", sub.ID)
		}
	}
}

// SubscriberCount 当前端点在线订阅数
func (h *Hub) SubscriberCount(endpointID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[endpointID])
}
