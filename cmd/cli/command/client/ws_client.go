package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"commenthub/internal/microservices/websocket"

	gorillaws "github.com/gorilla/websocket"
)

// ws_client.go = live notification stream for the CLI.

// StreamURL converts the API root into the websocket stream address.
func StreamURL(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/api/notifications/stream"
	return u.String(), nil
}

// StreamNotifications connects and calls onMessage for every frame until ctx
// ends or the server closes the stream.
func StreamNotifications(ctx context.Context, apiURL, token string, onMessage func(*websocket.Message)) error {
	target, err := StreamURL(apiURL)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	conn, resp, err := gorillaws.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	// unblock ReadMessage when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteMessage(gorillaws.CloseMessage,
			gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, ""))
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure, gorillaws.CloseGoingAway) {
				return nil
			}
			return err
		}
		msg, err := websocket.MessageFromJSON(data)
		if err != nil {
			continue
		}
		onMessage(msg)
	}
}
