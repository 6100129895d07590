package handler

import (
	"log/slog"
	"net/http"

	"commenthub/internal/microservices/http-api/dto"
	"commenthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc    service.NotificationService
	logger *slog.Logger
}

func NewNotificationHandler(svc service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: loggerOrDefault(logger)}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread", h.GetUnread)
		notifications.GET("/unread/count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllAsRead)
		notifications.POST("/:id/read", h.MarkAsRead)
		notifications.POST("/:id/unread", h.MarkAsUnread)
		notifications.DELETE("/:id", h.Delete)
	}
}

// List returns all notifications for the authenticated user, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": dto.FromNotifications(notifications)})
}

// GetUnread returns all unread notifications for the authenticated user
func (h *NotificationHandler) GetUnread(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.svc.ListUnread(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": dto.FromNotifications(notifications)})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkAsRead marks a specific notification as read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	n, err := h.svc.MarkAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToNotificationResponse(n))
}

func (h *NotificationHandler) MarkAsUnread(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	n, err := h.svc.MarkAsUnread(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToNotificationResponse(n))
}

// MarkAllAsRead marks all notifications as read for the user
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes one of the user's notifications
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
