package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// readPump relays inbound frames. Chat frames are forwarded to the addressed
// user as receiveMessage events; persistence happens over REST, so a frame
// lost here is not recovered.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("WebSocket read error")
			}
			break
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}

		switch event.Event {
		case EventSendMessage:
			var payload ChatPayload
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				continue
			}
			payload.SenderID = c.userID
			payload.Timestamp = now()
			if out, err := Marshal(EventReceiveMessage, payload); err == nil {
				c.hub.BroadcastToUser(payload.To, out)
			}

		case EventTyping:
			var payload TypingPayload
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				continue
			}
			payload.UserID = c.userID
			if out, err := Marshal(EventTyping, payload); err == nil {
				c.hub.BroadcastToUser(payload.To, out)
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
