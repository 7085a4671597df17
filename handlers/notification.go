package handlers

import (
	"net/http"
	"strconv"

	"skillbridge/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

// InboxHandler handles GET /api/notifications.
func (h *NotificationHandler) InboxHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	items, err := h.Service.Inbox(c.Request.Context(), actor.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkReadHandler handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
