package websocket

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	// Time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	PongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than PongWait)
	PingPeriod = (PongWait * 9) / 10

	// The stream is server-to-client; inbound frames are only control traffic
	MaxMessageSize = 512

	sendBufferSize = 32
)

var (
	ErrClientClosed   = errors.New("client closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Client is one open notification stream
type Client struct {
	ID          string
	UserID      string
	Conn        *websocket.Conn
	SendChannel chan []byte
	Hub         *Hub

	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
	logger    *slog.Logger
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		Conn:        conn,
		SendChannel: make(chan []byte, sendBufferSize),
		Hub:         hub,
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// ReadPump consumes control frames until the peer goes away.
func (c *Client) ReadPump() {
	defer c.Close()

	c.Conn.SetReadLimit(MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("stream_read_failed", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.SendChannel:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("stream_write_failed", "user_id", c.UserID, "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Forward relays messages from a redis subscription until the client closes
// or the subscription ends.
func (c *Client) Forward(sub *redis.PubSub) {
	ch := sub.Channel()
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-ch:
			if !ok {
				c.Close()
				return
			}
			frame, err := NewNotificationMessage([]byte(msg.Payload)).ToJSON()
			if err != nil {
				c.logger.Error("stream_encode_failed", "user_id", c.UserID, "error", err)
				continue
			}
			if err := c.SendMessage(frame); err != nil {
				c.logger.Warn("stream_frame_dropped", "user_id", c.UserID, "error", err)
			}
		}
	}
}

// SendMessage queues a frame without blocking
func (c *Client) SendMessage(message []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.SendChannel <- message:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the pumps and removes the client from its hub. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Hub != nil {
			c.Hub.Unregister(c)
		}
		if c.onClose != nil {
			c.onClose()
		}
	})
	return nil
}
