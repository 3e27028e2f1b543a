package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Send:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return Event{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.Send:
		t.Fatalf("client %s unexpectedly received %+v", c.ID, ev)
	default:
	}
}

func TestHubPublishByTopic(t *testing.T) {
	hub := NewHub(nil, nil)
	seller := hub.addClient([]string{UserTopic("seller")})
	buyer := hub.addClient([]string{UserTopic("buyer"), DealTopic("d1")})
	lobby := hub.addClient(nil)

	hub.Publish(context.Background(), DealTopic("d1"), "deal.stage_updated", map[string]string{"stage": "nda_signed"})

	ev := receive(t, buyer)
	assert.Equal(t, "deal.stage_updated", ev.Type)
	assert.Equal(t, "deal:d1", ev.Topic)
	assertEmpty(t, seller)
	assertEmpty(t, lobby)
	assert.Equal(t, 3, hub.ClientCount())

	hub.removeClient(buyer)
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHubRelayExcludesSenderAndDedupes(t *testing.T) {
	hub := NewHub(nil, nil)
	sender := hub.addClient([]string{TopicBroadcast, DealTopic("d1")})
	both := hub.addClient([]string{TopicBroadcast, DealTopic("d1")})
	other := hub.addClient([]string{DealTopic("d2")})

	hub.Relay(context.Background(), sender, json.RawMessage(`{"hello":"world"}`))

	ev := receive(t, both)
	assert.Equal(t, EventClientMessage, ev.Type)
	assertEmpty(t, both)
	assertEmpty(t, sender)
	assertEmpty(t, other)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil, nil)
	slow := hub.addClient([]string{"t"})

	for i := 0; i < sendBuffer+10; i++ {
		hub.Publish(context.Background(), "t", "tick", i)
	}
	assert.Len(t, slow.Send, sendBuffer)
}

func TestHubServeOverWebsocket(t *testing.T) {
	hub := NewHub(nil, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(r.Context(), conn, []string{TopicBroadcast})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	a, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer a.Close(websocket.StatusNormalClosure, "")
	b, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer b.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, wsjson.Write(ctx, a, map[string]string{"note": "hi"}))

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, b, &got))
	assert.Equal(t, EventClientMessage, got.Type)
	assert.Equal(t, "hi", got.Data["note"])
}
