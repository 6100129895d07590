package dto

import (
	"time"

	"commenthub/internal/microservices/http-api/models"
	"commenthub/internal/microservices/http-api/service"
)

// CreateCommentDTO for creating a comment or, with parent_id, a reply
type CreateCommentDTO struct {
	Content  string  `json:"content" binding:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// CommentAuthor is the public view of a comment's author
type CommentAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CommentResponse is a single comment without its replies
type CommentResponse struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	UserID    string         `json:"user_id"`
	User      *CommentAuthor `json:"user,omitempty"`
	ParentID  *string        `json:"parent_id"`
	IsEdited  bool           `json:"is_edited"`
	EditedAt  *time.Time     `json:"edited_at,omitempty"`
	IsDeleted bool           `json:"is_deleted"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.AuthorID,
		ParentID:  comment.ParentID,
		IsEdited:  comment.IsEdited,
		EditedAt:  comment.EditedAt,
		IsDeleted: comment.IsDeleted,
		DeletedAt: comment.DeletedAt,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.Author != nil {
		resp.User = &CommentAuthor{ID: comment.Author.ID, Username: comment.Author.Username}
	}
	return resp
}

// CommentTreeResponse is a comment with its nested replies
type CommentTreeResponse struct {
	CommentResponse
	Replies []*CommentTreeResponse `json:"replies"`
}

// FromTree converts an assembled forest into its JSON shape without recursion.
func FromTree(nodes []*service.CommentNode) []*CommentTreeResponse {
	out := make([]*CommentTreeResponse, len(nodes))
	type pending struct {
		src *service.CommentNode
		dst *CommentTreeResponse
	}
	stack := make([]pending, 0, len(nodes))
	for i, n := range nodes {
		out[i] = &CommentTreeResponse{CommentResponse: *FromModelToCommentResponse(&n.Comment)}
		stack = append(stack, pending{src: n, dst: out[i]})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		top.dst.Replies = make([]*CommentTreeResponse, len(top.src.Replies))
		for i, child := range top.src.Replies {
			top.dst.Replies[i] = &CommentTreeResponse{CommentResponse: *FromModelToCommentResponse(&child.Comment)}
			stack = append(stack, pending{src: child, dst: top.dst.Replies[i]})
		}
	}
	return out
}

// CommentDetailResponse is a single comment with its visible parent and replies
type CommentDetailResponse struct {
	CommentResponse
	Parent  *CommentResponse       `json:"parent,omitempty"`
	Replies []*CommentTreeResponse `json:"replies"`
}

func FromDetail(detail *service.CommentDetail) *CommentDetailResponse {
	resp := &CommentDetailResponse{
		CommentResponse: *FromModelToCommentResponse(detail.Comment),
		Replies:         FromTree(detail.Replies),
	}
	if detail.Parent != nil {
		resp.Parent = FromModelToCommentResponse(detail.Parent)
	}
	return resp
}

// DeletedCommentResponse is one entry of the recovery view
type DeletedCommentResponse struct {
	CommentResponse
	CanRestore              bool  `json:"can_restore"`
	RestoreSecondsRemaining int64 `json:"restore_seconds_remaining"`
}

func FromDeleted(items []service.DeletedComment) []DeletedCommentResponse {
	out := make([]DeletedCommentResponse, 0, len(items))
	for i := range items {
		out = append(out, DeletedCommentResponse{
			CommentResponse:         *FromModelToCommentResponse(&items[i].Comment),
			CanRestore:              items[i].CanRestore,
			RestoreSecondsRemaining: int64(items[i].RestoreRemaining / time.Second),
		})
	}
	return out
}
