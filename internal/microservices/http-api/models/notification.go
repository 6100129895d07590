package models

import "time"

type NotificationType string

const (
	NotificationReply   NotificationType = "reply"
	NotificationMention NotificationType = "mention"
	NotificationSystem  NotificationType = "system"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationReply, NotificationMention, NotificationSystem:
		return true
	}
	return false
}

type Notification struct {
	ID               string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type             NotificationType `gorm:"type:varchar(16);not null;default:'system'" json:"type"`
	Message          string           `gorm:"not null" json:"message"`
	IsRead           bool             `gorm:"column:is_read;not null;default:false;index" json:"is_read"`
	RelatedCommentID *string          `gorm:"column:related_comment_id;type:uuid" json:"related_comment_id,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime:false;not null" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
