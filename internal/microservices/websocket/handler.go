package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Subscriber opens a per-user notification subscription.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (*redis.PubSub, error)
}

// StreamHandler upgrades an authenticated request to a websocket that
// carries the user's notifications as they are stored.
type StreamHandler struct {
	hub        *Hub
	subscriber Subscriber
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewStreamHandler builds the handler. allowedOrigins empty accepts any origin.
func NewStreamHandler(hub *Hub, subscriber Subscriber, allowedOrigins []string, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &StreamHandler{
		hub:        hub,
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *StreamHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications/stream", h.Serve)
}

func (h *StreamHandler) Serve(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// the request context ends when this handler returns, the stream outlives it
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := h.subscriber.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		h.logger.Error("stream_subscribe_failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		sub.Close()
		cancel()
		h.logger.Warn("stream_upgrade_failed", "user_id", userID, "error", err)
		return
	}

	client := NewClient(userID, conn, h.hub, h.logger)
	client.onClose = func() {
		sub.Close()
		cancel()
	}
	h.hub.Register(client)

	if hello, err := NewSystemMessage("connected").ToJSON(); err == nil {
		_ = client.SendMessage(hello)
	}

	go client.WritePump()
	go client.Forward(sub)
	go client.ReadPump()
}
