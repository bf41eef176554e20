package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"perfeval/internal/domain/identity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 64 << 10
	sendQueueDepth = 64
)

// Client is one WebSocket connection. send is never closed; done signals
// shutdown to the writer.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	identity  identity.Identity
	rooms     RoomAuthorizer
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, id identity.Identity, rooms RoomAuthorizer) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: id,
		rooms:    rooms,
		send:     make(chan []byte, sendQueueDepth),
		done:     make(chan struct{}),
	}
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue reports false when the queue is full or the client is closing.
func (c *Client) enqueue(frame []byte) bool {
	if c.closed() {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close signals the writer, which sends the close frame and then releases
// the connection. The read deadline bounds how long the reader can block.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.SetReadDeadline(time.Now().Add(writeWait))
		}
	})
}

// allowed reports whether the caller may use room. Authorizer failures deny.
func (c *Client) allowed(ctx context.Context, room string) bool {
	if c.rooms == nil {
		return true
	}
	ok, err := c.rooms.CanUseRoom(ctx, c.identity, room)
	if err != nil {
		c.hub.logger.Error("chat relay: room check failed", "room", room, "user_id", c.identity.UserID, "err", err)
		return false
	}
	if !ok {
		c.hub.logger.Warn("chat relay: room denied", "room", room, "user_id", c.identity.UserID)
	}
	return ok
}

// run blocks until the connection ends. Cancelling ctx closes it, which is
// how shutdown reaches hijacked connections.
func (c *Client) run(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			c.close()
		case <-c.done:
		}
	}()
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Remove(c)
		c.close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("chat relay: read failed", "user_id", c.identity.UserID, "err", err)
			}
			return
		}
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame Frame) {
	switch frame.Event {
	case EventJoinRoom, EventLeaveRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil || room == "" {
			return
		}
		if frame.Event == EventLeaveRoom {
			c.hub.Leave(c, room)
			return
		}
		if c.allowed(ctx, room) {
			c.hub.Join(c, room)
		}
	case EventSendMessage:
		var payload SendPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.Room == "" {
			return
		}
		if !c.allowed(ctx, payload.Room) {
			return
		}
		out, err := receiveFrame(payload.Message)
		if err != nil {
			return
		}
		if err := c.hub.Broadcast(ctx, payload.Room, out); err != nil {
			c.hub.logger.Error("chat relay: broadcast failed", "room", payload.Room, "err", err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
