package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"commenthub/internal/clock"
	"commenthub/internal/lifecycle"
	"commenthub/internal/metrics"
	"commenthub/internal/microservices/http-api/models"
	"commenthub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(ctx context.Context, authorID, content string, parentID *string) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID, requesterID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, requesterID string) error
	RestoreComment(ctx context.Context, commentID, requesterID string) (*models.Comment, error)
	GetCommentByID(ctx context.Context, commentID string) (*CommentDetail, error)
	ListTopLevel(ctx context.Context) ([]*CommentNode, error)
	LoadReplies(ctx context.Context, parentID string) ([]*CommentNode, error)
	ListOwnDeleted(ctx context.Context, userID string) ([]DeletedComment, error)
	Policy() lifecycle.Policy
}

// CommentDetail is a single visible comment with its reply tree and, when
// visible, its parent.
type CommentDetail struct {
	Comment *models.Comment
	Parent  *models.Comment
	Replies []*CommentNode
}

// DeletedComment is one row of the recovery view, evaluated at a single instant.
type DeletedComment struct {
	Comment          models.Comment
	CanRestore       bool
	RestoreRemaining time.Duration
}

type commentService struct {
	repo     repository.CommentRepository
	notifier ReplyNotifier
	policy   lifecycle.Policy
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewCommentService wires the lifecycle engine. notifier and m may be nil.
func NewCommentService(
	repo repository.CommentRepository,
	notifier ReplyNotifier,
	policy lifecycle.Policy,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		repo:     repo,
		notifier: notifier,
		policy:   policy,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

func (s *commentService) Policy() lifecycle.Policy {
	return s.policy
}

// CreateComment posts a top-level comment or, with parentID, a reply
func (s *commentService) CreateComment(ctx context.Context, authorID, content string, parentID *string) (created *models.Comment, err error) {
	defer func() { s.metrics.CommentMutation("create", err) }()

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if authorID == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	// Check the parent exists and is visible
	if parentID != nil {
		parent, err := s.repo.FindByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.IsDeleted {
			return nil, ErrParentNotFound
		}
	}

	comment := lifecycle.New(uuid.New().String(), content, authorID, parentID, s.clock.Now())
	if err := s.repo.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrParentMissing) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	// Reload with user data; the write already succeeded so a failed reload
	// falls back to the inserted row.
	created, err = s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		s.logger.Warn("comment_reload_failed", "comment_id", comment.ID, "error", err)
		created, err = comment, nil
	}

	s.logger.Info("comment_created",
		"comment_id", created.ID,
		"author_id", created.AuthorID,
		"is_reply", parentID != nil,
	)

	if parentID != nil && s.notifier != nil {
		s.notifier.DispatchReply(created)
	}
	return created, nil
}

// UpdateComment replaces the content of the requester's comment within the edit window
func (s *commentService) UpdateComment(ctx context.Context, commentID, requesterID, content string) (updated *models.Comment, err error) {
	defer func() { s.metrics.CommentMutation("edit", err) }()

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	updated, err = s.repo.Mutate(ctx, commentID, func(c *models.Comment) error {
		if c.IsDeleted {
			return ErrCommentNotFound
		}
		if c.AuthorID != requesterID {
			return ErrNotCommentOwner
		}
		now := s.clock.Now()
		if !s.policy.CanEdit(c.CreatedAt, now) {
			return ErrEditWindowExpired
		}
		lifecycle.ApplyEdit(c, content, now)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrCommentNotFound)
	}
	return updated, nil
}

// DeleteComment soft-deletes the requester's comment. Replies are left untouched.
func (s *commentService) DeleteComment(ctx context.Context, commentID, requesterID string) (err error) {
	defer func() { s.metrics.CommentMutation("delete", err) }()

	_, err = s.repo.Mutate(ctx, commentID, func(c *models.Comment) error {
		if c.IsDeleted {
			return ErrCommentNotFound
		}
		if c.AuthorID != requesterID {
			return ErrNotCommentOwner
		}
		lifecycle.ApplySoftDelete(c, s.clock.Now())
		return nil
	})
	if err != nil {
		return notFoundAs(err, ErrCommentNotFound)
	}

	s.logger.Info("comment_deleted", "comment_id", commentID, "author_id", requesterID)
	return nil
}

// RestoreComment un-deletes one of the requester's comments within the restore window
func (s *commentService) RestoreComment(ctx context.Context, commentID, requesterID string) (restored *models.Comment, err error) {
	defer func() { s.metrics.CommentMutation("restore", err) }()

	restored, err = s.repo.Mutate(ctx, commentID, func(c *models.Comment) error {
		// someone else's comment looks the same as a missing one
		if c.AuthorID != requesterID || !c.IsDeleted {
			return ErrCommentNotFound
		}
		now := s.clock.Now()
		if !s.policy.CanRestore(c.DeletedAt, now) {
			return ErrRestoreWindowExpired
		}
		lifecycle.ApplyRestore(c, now)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrCommentNotFound)
	}

	s.logger.Info("comment_restored", "comment_id", commentID, "author_id", requesterID)
	return restored, nil
}

// GetCommentByID returns a visible comment with its replies and visible parent
func (s *commentService) GetCommentByID(ctx context.Context, commentID string) (*CommentDetail, error) {
	comment, err := s.findVisible(ctx, commentID)
	if err != nil {
		return nil, err
	}

	replies, err := s.loadReplies(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	detail := &CommentDetail{Comment: comment, Replies: replies}
	if comment.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *comment.ParentID)
		// a deleted parent is still returned, flagged by IsDeleted
		switch {
		case err == nil:
			detail.Parent = parent
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return detail, nil
}

// ListTopLevel returns the visible forest, newest threads first
func (s *commentService) ListTopLevel(ctx context.Context) ([]*CommentNode, error) {
	roots, err := s.repo.ListTopLevel(ctx)
	if err != nil {
		return nil, err
	}
	roots = visibleOnly(roots)
	slices.SortStableFunc(roots, newestFirst)

	nodes := toNodes(roots)
	levels, err := s.attachReplies(ctx, nodes)
	if err != nil {
		return nil, err
	}
	s.metrics.TreeLevels(levels)
	return nodes, nil
}

// LoadReplies returns the visible replies of parentID, oldest first, each with
// its own replies. parentID itself may be soft-deleted but must exist.
func (s *commentService) LoadReplies(ctx context.Context, parentID string) ([]*CommentNode, error) {
	if _, err := s.repo.FindByID(ctx, parentID); err != nil {
		return nil, notFoundAs(err, ErrCommentNotFound)
	}
	return s.loadReplies(ctx, parentID)
}

func (s *commentService) loadReplies(ctx context.Context, parentID string) ([]*CommentNode, error) {
	children, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	children = visibleOnly(children)
	slices.SortStableFunc(children, oldestFirst)

	nodes := toNodes(children)
	levels, err := s.attachReplies(ctx, nodes)
	if err != nil {
		return nil, err
	}
	s.metrics.TreeLevels(levels + 1)
	return nodes, nil
}

// ListOwnDeleted returns the user's soft-deleted comments, most recently
// deleted first, with their restore status at the current instant
func (s *commentService) ListOwnDeleted(ctx context.Context, userID string) ([]DeletedComment, error) {
	comments, err := s.repo.ListDeletedByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(comments, func(a, b models.Comment) int {
		return deletedAtOf(b).Compare(deletedAtOf(a))
	})

	now := s.clock.Now()
	out := make([]DeletedComment, 0, len(comments))
	for _, c := range comments {
		if !c.IsDeleted || c.AuthorID != userID {
			continue
		}
		out = append(out, DeletedComment{
			Comment:          c,
			CanRestore:       s.policy.CanRestore(c.DeletedAt, now),
			RestoreRemaining: s.policy.RestoreRemaining(c.DeletedAt, now),
		})
	}
	return out, nil
}

func (s *commentService) findVisible(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundAs(err, ErrCommentNotFound)
	}
	if comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func deletedAtOf(c models.Comment) time.Time {
	if c.DeletedAt == nil {
		return time.Time{}
	}
	return *c.DeletedAt
}

// notFoundAs maps the store's not-found error to target and passes anything
// else through.
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
