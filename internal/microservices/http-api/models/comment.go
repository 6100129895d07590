package models

import "time"

type Comment struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	AuthorID  string     `json:"user_id" gorm:"column:user_id;type:uuid;not null;index"`
	ParentID  *string    `json:"parent_id" gorm:"column:parent_id;type:uuid;index"`
	IsDeleted bool       `json:"is_deleted" gorm:"column:is_deleted;not null;default:false;index"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at"`
	IsEdited  bool       `json:"is_edited" gorm:"column:is_edited;not null;default:false"`
	EditedAt  *time.Time `json:"edited_at,omitempty" gorm:"column:edited_at"`
	// Timestamps are stamped from the service clock, not by gorm.
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false;not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false;not null"`

	// Associations
	Author *User    `json:"user,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT;"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel reports whether the comment has no parent.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// AuthorName returns the author's username, or "" when the author was not loaded.
func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}
