package service

import (
	"context"
	"errors"
	"log/slog"

	"commenthub/internal/clock"
	"commenthub/internal/microservices/http-api/models"
	"commenthub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyRequest is one notification to deliver.
type NotifyRequest struct {
	RecipientID      string
	Type             models.NotificationType
	Message          string
	RelatedCommentID *string
}

// NotificationSink accepts notifications for delivery.
type NotificationSink interface {
	Notify(ctx context.Context, req NotifyRequest) error
}

// NotificationPublisher pushes a stored notification to live subscribers.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

type NotificationService interface {
	NotificationSink
	List(ctx context.Context, userID string) ([]models.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkAsUnread(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher NotificationPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewNotificationService wires the store. publisher may be nil when live
// delivery is disabled.
func NewNotificationService(
	repo repository.NotificationRepository,
	publisher NotificationPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// Notify stores the notification and then publishes it. A publish failure is
// logged only: the stored row is what the recipient reads.
func (s *notificationService) Notify(ctx context.Context, req NotifyRequest) error {
	if req.RecipientID == "" {
		return errors.New("notification recipient is required")
	}
	if !req.Type.Valid() {
		req.Type = models.NotificationSystem
	}

	notification := &models.Notification{
		ID:               uuid.New().String(),
		UserID:           req.RecipientID,
		Type:             req.Type,
		Message:          req.Message,
		RelatedCommentID: req.RelatedCommentID,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	s.logger.Info("notification_created",
		"notification_id", notification.ID,
		"recipient_id", notification.UserID,
		"type", notification.Type,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, notification); err != nil {
			s.logger.Warn("notification_publish_failed",
				"notification_id", notification.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListUnreadByUser(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.setRead(ctx, userID, notificationID, true)
}

func (s *notificationService) MarkAsUnread(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.setRead(ctx, userID, notificationID, false)
}

func (s *notificationService) setRead(ctx context.Context, userID, notificationID string, read bool) (*models.Notification, error) {
	notification, err := s.repo.SetRead(ctx, notificationID, userID, read)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return notification, nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.Delete(ctx, notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
