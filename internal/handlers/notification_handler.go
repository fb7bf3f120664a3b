package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

// ListNotifications returns the caller's notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}
	query := listQuery(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.services.Notification.ListForUser(c.Request.Context(), *userID, unreadOnly, query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, notifications[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// UnreadNotificationCount returns the caller's unread badge count
func (h *Handlers) UnreadNotificationCount(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}
	count, err := h.services.Notification.UnreadCount(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.services.Notification.MarkRead(c.Request.Context(), *userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n.ToResponse()})
}

// MarkAllNotificationsRead clears the caller's unread notifications
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}
	if err := h.services.Notification.MarkAllRead(c.Request.Context(), *userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}
