package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/anchor/pkg/anchor"
)

const writeWait = 10 * time.Second

// Message is sent to clients when a container is written.
type Message struct {
	Name    string `json:"name"`
	Next    string `json:"next"`
	Current string `json:"current"`
	Error   string `json:"error,omitempty"`
}

// SetRequest is sent by clients to write a container.
type SetRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// client is one WebSocket connection.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	// ctx owns the connection's subscriptions. Only touched on the loop.
	ctx *anchor.Context

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, buffer),
		ctx:  anchor.NewContext(),
	}
}

// push queues m. A client whose queue is full is disconnected.
func (c *client) push(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		c.kick()
	}
}

// kick closes the connection, which ends the read pump.
func (c *client) kick() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// writePump sends queued messages until send is closed.
func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.kick()
			return
		}
	}
}
