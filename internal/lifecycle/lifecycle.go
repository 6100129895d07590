// Package lifecycle holds the mutability rules for a single comment: the edit
// window, soft delete, and the restore window. Every function here is a pure
// function of the record and an instant; callers supply "now" from a clock.
package lifecycle

import (
	"time"

	"commenthub/internal/microservices/http-api/models"
)

// The two windows are measured from different timestamps and are kept as
// separate values even while they are equal.
const (
	DefaultEditWindow    = 15 * time.Minute
	DefaultRestoreWindow = 15 * time.Minute
)

type Policy struct {
	EditWindow    time.Duration // measured from CreatedAt
	RestoreWindow time.Duration // measured from DeletedAt
}

func DefaultPolicy() Policy {
	return Policy{
		EditWindow:    DefaultEditWindow,
		RestoreWindow: DefaultRestoreWindow,
	}
}

// CanEdit reports whether a comment created at createdAt may still be edited.
// The boundary is inclusive.
func (p Policy) CanEdit(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= p.EditWindow
}

// CanRestore reports whether a comment soft-deleted at deletedAt may still be
// restored. A nil deletedAt means the comment is not deleted.
func (p Policy) CanRestore(deletedAt *time.Time, now time.Time) bool {
	if deletedAt == nil {
		return false
	}
	return now.Sub(*deletedAt) <= p.RestoreWindow
}

// RestoreRemaining is the time left in the restore window, never negative.
func (p Policy) RestoreRemaining(deletedAt *time.Time, now time.Time) time.Duration {
	if deletedAt == nil {
		return 0
	}
	left := p.RestoreWindow - now.Sub(*deletedAt)
	if left < 0 {
		return 0
	}
	return left
}

// EditRemaining is the time left in the edit window, never negative.
func (p Policy) EditRemaining(createdAt, now time.Time) time.Duration {
	left := p.EditWindow - now.Sub(createdAt)
	if left < 0 {
		return 0
	}
	return left
}

// New builds a fresh comment stamped with now. The parent id is copied so the
// caller's variable cannot reassign it later.
func New(id, content, authorID string, parentID *string, now time.Time) *models.Comment {
	if parentID != nil {
		p := *parentID
		parentID = &p
	}
	return &models.Comment{
		ID:        id,
		Content:   content,
		AuthorID:  authorID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyEdit replaces the content and marks the comment edited.
func ApplyEdit(c *models.Comment, content string, now time.Time) {
	c.Content = content
	c.IsEdited = true
	c.EditedAt = &now
	c.UpdatedAt = now
}

func ApplySoftDelete(c *models.Comment, now time.Time) {
	c.IsDeleted = true
	c.DeletedAt = &now
	c.UpdatedAt = now
}

func ApplyRestore(c *models.Comment, now time.Time) {
	c.IsDeleted = false
	c.DeletedAt = nil
	c.UpdatedAt = now
}
