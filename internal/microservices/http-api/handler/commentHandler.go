package handler

import (
	"log/slog"
	"net/http"

	"commenthub/internal/microservices/http-api/dto"
	"commenthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
	logger         *slog.Logger
}

func NewCommentHandler(commentService service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         loggerOrDefault(logger),
	}
}

// RegisterRoutes registers comment-related routes
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Comment operations (already authenticated by parent middleware)
	comments := router.Group("/comments")
	{
		comments.POST("", h.Create)                    // Create a comment or reply
		comments.GET("", h.ListTopLevel)               // Visible threads, newest first
		comments.GET("/deleted/user", h.ListOwnDeleted) // Current user's deleted comments
		comments.GET("/:id", h.GetByID)                // A comment with parent and replies
		comments.GET("/:id/replies", h.ListReplies)    // Replies, oldest first
		comments.PUT("/:id", h.Update)                 // Edit own comment within the window
		comments.DELETE("/:id", h.Delete)              // Soft delete own comment
		comments.POST("/:id/restore", h.Restore)       // Restore own comment within the window
	}
}

// Create creates a new comment
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, req.Content, req.ParentID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToCommentResponse(comment))
}

// ListTopLevel returns the visible comment forest
// GET /api/comments
func (h *CommentHandler) ListTopLevel(c *gin.Context) {
	forest, err := h.commentService.ListTopLevel(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTree(forest))
}

// GetByID retrieves a comment by ID
// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	detail, err := h.commentService.GetCommentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDetail(detail))
}

// ListReplies returns the visible replies of a comment
// GET /api/comments/:id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	replies, err := h.commentService.LoadReplies(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTree(replies))
}

// Update updates an existing comment
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

// Delete soft-deletes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":                   "Comment deleted successfully",
		"restore_seconds_remaining": int64(h.commentService.Policy().RestoreWindow.Seconds()),
	})
}

// Restore un-deletes a comment
// POST /api/comments/:id/restore
func (h *CommentHandler) Restore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.RestoreComment(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

// ListOwnDeleted returns the current user's deleted comments and whether each can still be restored
// GET /api/comments/deleted/user
func (h *CommentHandler) ListOwnDeleted(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.commentService.ListOwnDeleted(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDeleted(items))
}
