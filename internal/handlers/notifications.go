package handlers

import (
	"net/http"
	"strconv"

	"trokazz-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.service.ListNotifications(c.Request.Context(), middleware.UserId(c), unreadOnly, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	count, err := h.service.CountUnreadNotifications(c.Request.Context(), middleware.UserId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	err := h.service.MarkNotificationRead(c.Request.Context(), middleware.UserId(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.service.MarkAllNotificationsRead(c.Request.Context(), middleware.UserId(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NotificationStream upgrades to a websocket that receives the user's
// notifications as they are created.
func (h *Handler) NotificationStream(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime channel unavailable"})
		return
	}
	userId := middleware.UserId(c)
	if err := h.hub.ServeWS(c.Writer, c.Request, userId); err != nil {
		zap.L().Warn("Websocket upgrade failed",
			zap.String("user_id", userId),
			zap.Error(err))
	}
}
