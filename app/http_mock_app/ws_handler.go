package http_mock_app

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go_mock_hub/internal/domain/actor"
	configs "go_mock_hub/internal/infra/config"
	"go_mock_hub/internal/infra/broadcast"
	"go_mock_hub/utils"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 4 * 1024
	wsSendBuffer     = 64
)

// 客户端消息类型
const (
	msgTypePing       = "ping"
	msgTypeSubscribe  = "subscribe"
	msgTypeGetHistory = "getHistory"
)

// 服务端消息类型
const (
	msgTypePong    = "pong"
	msgTypeRequest = "request"
	msgTypeHistory = "history"
	msgTypeError   = "error"
)

type clientMessage struct {
	Type       string `json:"type"`
	EndpointID string `json:"endpointId,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type serverMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WSHandler 实时通道入口。每条连接一个读循环加一个写泵，
// 订阅消息把连接挂到广播中枢，此后捕获的请求事件实时推送。
type WSHandler struct {
	registry *actor.Registry
	hub      *broadcast.Hub
	cfg      configs.ServerConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *actor.Registry, hub *broadcast.Hub, cfg configs.ServerConfig) *WSHandler {
	return &WSHandler{
		registry: registry,
		hub:      hub,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// dashboard 跨域访问 mock 域名
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wsConn 一条实时连接的会话状态
type wsConn struct {
	conn *websocket.Conn
	send chan serverMessage
	done chan struct{}

	mu  sync.Mutex
	sub *broadcast.Subscriber
}

// enqueue 非阻塞投递，出站缓冲满则丢弃
func (c *wsConn) enqueue(msg serverMessage) {
	select {
	case c.send <- msg:
	default:
		utils.GetLogger().Debug("ws send buffer full, message dropped")
	}
}

func (c *wsConn) writePump() {
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// swapSubscription 换订阅，旧订阅立即释放
func (c *wsConn) swapSubscription(hub *broadcast.Hub, sub *broadcast.Subscriber) {
	c.mu.Lock()
	old := c.sub
	c.sub = sub
	c.mu.Unlock()
	if old != nil {
		hub.Unsubscribe(old)
	}
}

// Serve 升级连接并进入会话循环
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("ws upgrade failed: %v", err)
		return
	}

	c := &wsConn{
		conn: conn,
		send: make(chan serverMessage, wsSendBuffer),
		done: make(chan struct{}),
	}
	go c.writePump()

	h.readLoop(r.Context(), c)
}

func (h *WSHandler) readLoop(ctx context.Context, c *wsConn) {
	defer func() {
		close(c.done)
		c.swapSubscription(h.hub, nil)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	// 单连接入站限速，防止恶意客户端刷 getHistory 打穿存储
	limiter := rate.NewLimiter(rate.Limit(h.cfg.WSMessagesPerSec), h.cfg.WSMessageBurst)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow() {
			c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
				Message: "too many messages", Code: "RATE_LIMITED",
			}})
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
				Message: "malformed message", Code: "INVALID_MESSAGE",
			}})
			continue
		}

		// 协议违规不致命，回 error 后连接保持
		switch msg.Type {
		case msgTypePing:
			c.enqueue(serverMessage{Type: msgTypePong})
		case msgTypeSubscribe:
			h.handleSubscribe(ctx, c, msg)
		case msgTypeGetHistory:
			h.handleGetHistory(ctx, c, msg)
		default:
			c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
				Message: "unknown message type: " + msg.Type, Code: "UNKNOWN_TYPE",
			}})
		}
	}
}

func (h *WSHandler) handleSubscribe(ctx context.Context, c *wsConn, msg clientMessage) {
	a, ok := h.resolveActor(ctx, c, msg.EndpointID)
	if !ok {
		return
	}

	sub := h.hub.Subscribe(a.EndpointID())
	c.swapSubscription(h.hub, sub)

	// 订阅释放时 events 通道被 close，转发协程随之退出
	go func() {
		for wire := range sub.Events() {
			c.enqueue(serverMessage{Type: msgTypeRequest, Data: wire})
		}
	}()
}

func (h *WSHandler) handleGetHistory(ctx context.Context, c *wsConn, msg clientMessage) {
	a, ok := h.resolveActor(ctx, c, msg.EndpointID)
	if !ok {
		return
	}

	limit := msg.Limit
	if limit <= 0 || limit > 500 {
		limit = h.cfg.HistoryLimit
	}
	logs, err := a.ListHistory(ctx, limit)
	if err != nil {
		utils.GetLogger().Errorf("ws getHistory for endpoint %s err: %v", msg.EndpointID, err)
		c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
			Message: "failed to load history", Code: "INTERNAL",
		}})
		return
	}

	wire := make([]interface{}, len(logs))
	for i, l := range logs {
		wire[i] = l.ToWire()
	}
	c.enqueue(serverMessage{Type: msgTypeHistory, Data: wire})
}

func (h *WSHandler) resolveActor(ctx context.Context, c *wsConn, endpointID string) (*actor.EndpointActor, bool) {
	if endpointID == "" {
		c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
			Message: "endpointId is required", Code: "ENDPOINT_ID_REQUIRED",
		}})
		return nil, false
	}
	a, err := h.registry.Get(ctx, endpointID)
	if err != nil {
		utils.GetLogger().Errorf("ws resolve endpoint %s err: %v", endpointID, err)
		c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
			Message: "failed to load endpoint", Code: "INTERNAL",
		}})
		return nil, false
	}
	if a == nil {
		c.enqueue(serverMessage{Type: msgTypeError, Data: errorPayload{
			Message: "endpoint not found: " + endpointID, Code: "ENDPOINT_NOT_FOUND",
		}})
		return nil, false
	}
	return a, true
}
