package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameSize  = 10 << 20
	sendQueueSize = 64
)

// FrameHandler processes one inbound frame. A non-nil reply is sent back to
// the sender only.
type FrameHandler func(messageType int, data []byte) (reply []byte)

// Client is one websocket joined to one chat. Outbound frames go through a
// bounded queue drained by a single writer goroutine.
type Client struct {
	conn   *websocket.Conn
	chatID int
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewClient(conn *websocket.Conn, chatID int) *Client {
	return &Client{
		conn:   conn,
		chatID: chatID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue never blocks. It reports false when the queue is full or the client is closed.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the writer. It reports whether this call did the closing.
func (c *Client) Close() bool {
	closed := false
	c.once.Do(func() {
		close(c.done)
		closed = true
	})
	return closed
}

// Serve joins the hub and pumps frames until either side goes away.
func (c *Client) Serve(hub *ChatHub, handle FrameHandler) {
	hub.Register(c)
	defer hub.Unregister(c)

	go c.writePump()
	c.readPump(handle)
}

func (c *Client) readPump(handle FrameHandler) {
	defer c.Close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Int("chat_id", c.chatID).Msg("websocket read")
			}
			return
		}
		if reply := handle(mt, data); reply != nil {
			if !c.Enqueue(reply) {
				return
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
