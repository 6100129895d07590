package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"commenthub/internal/metrics"
	"commenthub/internal/microservices/http-api/models"
	"commenthub/internal/microservices/http-api/repository"
	"commenthub/internal/worker"

	"gorm.io/gorm"
)

// fallbackReplierName is used when the replier's username cannot be resolved.
const fallbackReplierName = "Someone"

// ReplyNotifier is told about every successfully created reply.
type ReplyNotifier interface {
	DispatchReply(reply *models.Comment)
}

// TaskRunner accepts fire-and-forget work without blocking.
type TaskRunner interface {
	TrySubmit(task worker.Task) bool
}

type ReplyDispatcher struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	sink     NotificationSink
	runner   TaskRunner
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewReplyDispatcher(
	comments repository.CommentRepository,
	users repository.UserRepository,
	sink NotificationSink,
	runner TaskRunner,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReplyDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ReplyDispatcher{
		comments: comments,
		users:    users,
		sink:     sink,
		runner:   runner,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// DispatchReply queues the notification for reply and returns immediately.
func (d *ReplyDispatcher) DispatchReply(reply *models.Comment) {
	if reply == nil || reply.ParentID == nil {
		return
	}
	snapshot := *reply
	snapshot.Author = nil
	snapshot.Parent = nil

	ok := d.runner.TrySubmit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		_, err := d.Deliver(ctx, &snapshot)
		return err
	})
	if !ok {
		d.metrics.ReplyNotification(metrics.ReplyDropped)
		d.logger.Warn("reply_notification_dropped",
			"comment_id", reply.ID,
			"parent_id", *reply.ParentID,
		)
	}
}

// Deliver runs the notification for reply synchronously and reports the
// outcome. Sink errors are logged and also returned to the caller.
func (d *ReplyDispatcher) Deliver(ctx context.Context, reply *models.Comment) (string, error) {
	if reply.ParentID == nil {
		return "", nil
	}

	parent, err := d.comments.FindByID(ctx, *reply.ParentID)
	if err != nil || parent.IsDeleted {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warn("reply_notification_parent_lookup_failed",
				"comment_id", reply.ID,
				"parent_id", *reply.ParentID,
				"error", err,
			)
		}
		d.metrics.ReplyNotification(metrics.ReplyParentMissing)
		return metrics.ReplyParentMissing, nil
	}

	if parent.AuthorID == reply.AuthorID {
		d.metrics.ReplyNotification(metrics.ReplySelf)
		return metrics.ReplySelf, nil
	}

	relatedID := reply.ID
	req := NotifyRequest{
		RecipientID:      parent.AuthorID,
		Type:             models.NotificationReply,
		Message:          fmt.Sprintf("%s replied to your comment", d.replierName(ctx, reply.AuthorID)),
		RelatedCommentID: &relatedID,
	}
	if err := d.sink.Notify(ctx, req); err != nil {
		d.metrics.ReplyNotification(metrics.ReplyFailed)
		d.logger.Error("reply_notification_failed",
			"comment_id", reply.ID,
			"recipient_id", parent.AuthorID,
			"error", err,
		)
		return metrics.ReplyFailed, err
	}

	d.metrics.ReplyNotification(metrics.ReplySent)
	return metrics.ReplySent, nil
}

func (d *ReplyDispatcher) replierName(ctx context.Context, userID string) string {
	user, err := d.users.FindByID(ctx, userID)
	if err != nil || user == nil || user.Username == "" {
		return fallbackReplierName
	}
	return user.Username
}
