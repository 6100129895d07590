package repository

import (
	"context"

	"commenthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// childrenBatchSize caps the number of parent ids in one IN (...) query.
const childrenBatchSize = 500

// MutateFunc edits a locked comment in place. Returning an error aborts the
// transaction and nothing is written.
type MutateFunc func(comment *models.Comment) error

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// Mutate loads the comment under a row lock, applies fn and saves it.
	Mutate(ctx context.Context, commentID string, fn MutateFunc) (*models.Comment, error)
	// FindByID returns the comment in any deletion state, with its author.
	FindByID(ctx context.Context, commentID string) (*models.Comment, error)
	ListTopLevel(ctx context.Context) ([]models.Comment, error)
	ListChildren(ctx context.Context, parentID string) ([]models.Comment, error)
	ListChildrenOf(ctx context.Context, parentIDs []string) ([]models.Comment, error)
	ListDeletedByAuthor(ctx context.Context, userID string) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
	if err != nil && isForeignKeyViolation(err) {
		return ErrParentMissing
	}
	return err
}

func (r *commentRepository) Mutate(ctx context.Context, commentID string, fn MutateFunc) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", commentID).
			First(&comment).Error; err != nil {
			return err
		}
		if err := fn(&comment); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&comment).Error
	})
	if err != nil {
		return nil, lookupErr(err)
	}

	// Reload with user data. The write is committed, so a failed reload
	// falls back to the row as saved.
	return reloadOr(&comment, func() (*models.Comment, error) {
		return r.FindByID(ctx, commentID)
	}), nil
}

func reloadOr(saved *models.Comment, reload func() (*models.Comment, error)) *models.Comment {
	reloaded, err := reload()
	if err != nil {
		return saved
	}
	return reloaded
}

// FindByID retrieves a comment by its ID
func (r *commentRepository) FindByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ?", commentID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, lookupErr(err)
	}
	return &comment, nil
}

// ListTopLevel returns visible root comments, newest first
func (r *commentRepository) ListTopLevel(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id IS NULL AND is_deleted = ?", false).
		Preload("Author").
		Order("created_at DESC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// ListChildren returns the visible direct replies of one comment, oldest first
func (r *commentRepository) ListChildren(ctx context.Context, parentID string) ([]models.Comment, error) {
	return r.ListChildrenOf(ctx, []string{parentID})
}

// ListChildrenOf returns the visible direct replies of every given parent,
// oldest first. Large id sets are split into several queries.
func (r *commentRepository) ListChildrenOf(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	var all []models.Comment
	for start := 0; start < len(parentIDs); start += childrenBatchSize {
		end := min(start+childrenBatchSize, len(parentIDs))

		var batch []models.Comment
		err := r.db.WithContext(ctx).
			Where("parent_id IN ? AND is_deleted = ?", parentIDs[start:end], false).
			Preload("Author").
			Order("created_at ASC").
			Order("id ASC").
			Find(&batch).Error
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// ListDeletedByAuthor returns a user's soft-deleted comments, most recently deleted first
func (r *commentRepository) ListDeletedByAuthor(ctx context.Context, userID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, true).
		Preload("Author").
		Order("deleted_at DESC").
		Find(&comments).Error
	return comments, err
}
