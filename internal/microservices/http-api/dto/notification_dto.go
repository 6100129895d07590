package dto

import (
	"time"

	"commenthub/internal/microservices/http-api/models"
)

// NotificationResponse for returning notification information
type NotificationResponse struct {
	ID               string                  `json:"id"`
	Type             models.NotificationType `json:"type"`
	Message          string                  `json:"message"`
	IsRead           bool                    `json:"is_read"`
	RelatedCommentID *string                 `json:"related_comment_id,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

func FromModelToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		Type:             n.Type,
		Message:          n.Message,
		IsRead:           n.IsRead,
		RelatedCommentID: n.RelatedCommentID,
		CreatedAt:        n.CreatedAt,
	}
}

func FromNotifications(list []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModelToNotificationResponse(&list[i]))
	}
	return out
}

// UnreadCountResponse for the unread badge
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
