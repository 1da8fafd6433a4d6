package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one live websocket connection bound to an authenticated
// identity. Outbound events flow through a buffered channel drained by the
// write pump, so publishers never block on a slow socket.
type Client struct {
	UserID string
	TeamID string

	conn *websocket.Conn
	send chan Event

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, userID, teamID string) *Client {
	return &Client{
		UserID: userID,
		TeamID: teamID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}
}

// enqueue must tolerate racing with close: a publisher may hold a member
// snapshot taken just before the client unregistered.
func (c *Client) enqueue(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. Exits when the send channel closes or a
// write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
