package broadcast

import (
	"testing"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireLog(id string) *model.RequestLogWire {
	return &model.RequestLogWire{ID: id, EndpointID: "ep-1", Method: "GET", Path: "/x"}
}

func TestHub_SubscriberReceivesExactlyOneEvent(t *testing.T) {
	hub := NewHubWithBuffer(8)
	sub := hub.Subscribe("ep-1")
	defer hub.Unsubscribe(sub)

	hub.Publish("ep-1", wireLog("log-1"))

	select {
	case got := <-sub.Events():
		assert.Equal(t, "log-1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected event not delivered")
	}

	// 只投递一次
	select {
	case got := <-sub.Events():
		t.Fatalf("unexpected extra event: %v", got.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_LateSubscriberGetsNoReplay(t *testing.T) {
	hub := NewHubWithBuffer(8)

	hub.Publish("ep-1", wireLog("early"))

	// 事件之后才连上的订阅者收不到历史事件
	sub := hub.Subscribe("ep-1")
	defer hub.Unsubscribe(sub)

	select {
	case got := <-sub.Events():
		t.Fatalf("late subscriber must not receive replayed event %v", got.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_TopicsIsolated(t *testing.T) {
	hub := NewHubWithBuffer(8)
	sub1 := hub.Subscribe("ep-1")
	sub2 := hub.Subscribe("ep-2")
	defer hub.Unsubscribe(sub1)
	defer hub.Unsubscribe(sub2)

	hub.Publish("ep-1", wireLog("only-ep1"))

	select {
	case got := <-sub1.Events():
		assert.Equal(t, "only-ep1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("ep-1 subscriber should receive the event")
	}

	select {
	case <-sub2.Events():
		t.Fatal("ep-2 subscriber must not see ep-1 traffic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberDropsButOthersDeliver(t *testing.T) {
	hub := NewHubWithBuffer(1)
	slow := hub.Subscribe("ep-1")
	fast := hub.Subscribe("ep-1")
	defer hub.Unsubscribe(slow)
	defer hub.Unsubscribe(fast)

	// slow 不消费：第一条占满缓冲，第二条被丢弃；fast 两条都拿到
	hub.Publish("ep-1", wireLog("log-1"))
	hub.Publish("ep-1", wireLog("log-2"))

	got := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		select {
		case e := <-fast.Events():
			got = append(got, e.ID)
		case <-time.After(time.Second):
			t.Fatal("fast subscriber should receive both events")
		}
	}
	assert.Equal(t, []string{"log-1", "log-2"}, got)

	require.Len(t, slow.events, 1)
	e := <-slow.Events()
	assert.Equal(t, "log-1", e.ID)
}

func TestHub_UnsubscribeClosesChannelAndReleases(t *testing.T) {
	hub := NewHubWithBuffer(8)
	sub := hub.Subscribe("ep-1")
	assert.Equal(t, 1, hub.SubscriberCount("ep-1"))

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.SubscriberCount("ep-1"))

	_, open := <-sub.Events()
	assert.False(t, open)

	// 重复退订安全
	hub.Unsubscribe(sub)
}

func TestHub_PublishToUnknownEndpointIsNoop(t *testing.T) {
	hub := NewHubWithBuffer(8)
	hub.Publish("nobody", wireLog("x"))
}
