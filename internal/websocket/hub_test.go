package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{hub: hub, send: make(chan []byte, 8), userID: userID}
}

func recv(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case raw := <-ch:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Event{}
	}
}

func TestMarshalEnvelope(t *testing.T) {
	raw, err := Marshal(EventReceiveMessage, ChatPayload{ConversationID: 5, To: 2, SenderID: 1, Content: "hi"})
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventReceiveMessage, event.Event)

	var payload ChatPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, "hi", payload.Content)
	assert.Equal(t, uint(2), payload.To)
}

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, 1)
	bob := newTestClient(hub, 2)
	hub.register <- alice
	hub.register <- bob

	// Bob's first frame is the presence fan-out from his own registration,
	// which also guarantees the hub has processed both registers.
	event := recv(t, bob.send)
	assert.Equal(t, EventUserOnline, event.Event)

	frame, err := Marshal(EventReceiveMessage, ChatPayload{To: 2, SenderID: 1, Content: "hello"})
	require.NoError(t, err)
	hub.BroadcastToUser(2, frame)

	event = recv(t, bob.send)
	assert.Equal(t, EventReceiveMessage, event.Event)

	// Alice saw presence frames only, never the direct message.
	for len(alice.send) > 0 {
		event = recv(t, alice.send)
		assert.Equal(t, EventUserOnline, event.Event)
	}
}

// Fans out frames from one goroutine while clients churn through the hub's
// register/unregister path. Fails under the race detector if hub state is
// touched without synchronization.
func TestBroadcastDuringConnectionChurn(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	frame, err := Marshal(EventReceiveMessage, ChatPayload{To: 1, SenderID: 2, Content: "ping"})
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				hub.BroadcastToUser(1, frame)
			}
		}
	}()

	for i := 0; i < 100; i++ {
		client := newTestClient(hub, 1)
		hub.register <- client
		go func(c *Client) {
			for range c.send {
			}
		}(client)
		hub.unregister <- client
	}

	close(done)
	wg.Wait()
}

func TestPresenceCallback(t *testing.T) {
	hub := NewHub()
	presence := make(chan bool, 2)
	hub.OnPresence = func(userID uint, online bool) {
		presence <- online
	}
	go hub.Run()

	client := newTestClient(hub, 7)
	hub.register <- client

	select {
	case online := <-presence:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for online callback")
	}

	hub.unregister <- client

	select {
	case online := <-presence:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for offline callback")
	}
}
