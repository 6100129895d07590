// Package pubsub fans notifications out to live subscribers over redis
// PUBLISH/SUBSCRIBE, one channel per recipient.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commenthub/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:user:"

// Event is the payload published for each stored notification.
type Event struct {
	ID               string                  `json:"id"`
	Type             models.NotificationType `json:"type"`
	Message          string                  `json:"message"`
	RelatedCommentID *string                 `json:"related_comment_id,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

func EventFromNotification(n *models.Notification) Event {
	return Event{
		ID:               n.ID,
		Type:             n.Type,
		Message:          n.Message,
		RelatedCommentID: n.RelatedCommentID,
		CreatedAt:        n.CreatedAt,
	}
}

type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to redisURL and verifies the connection.
func NewRedisBroker(redisURL string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisBroker{client: client}, nil
}

// NewRedisBrokerWithClient wraps an existing client.
func NewRedisBrokerWithClient(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func Channel(userID string) string {
	return channelPrefix + userID
}

// PublishNotification sends n to the recipient's channel.
func (b *RedisBroker) PublishNotification(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(EventFromNotification(n))
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe opens a subscription to userID's channel. The caller must Close it.
func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (*redis.PubSub, error) {
	sub := b.client.Subscribe(ctx, Channel(userID))
	// wait for the subscription confirmation so no message published after
	// this call returns is missed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", userID, err)
	}
	return sub, nil
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
