package handlers

import (
	"skillbridge/middleware"
	"skillbridge/models"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers and the credentials routes need.
type HandlerBundle struct {
	JWTSecret  []byte
	AdminToken string

	Engagements   *EngagementHandler
	Ratings       *RatingHandler
	Notifications *NotificationHandler
	Stream        *StreamHandler
}

func actorFrom(c *gin.Context) (models.Actor, bool) {
	return middleware.ActorFrom(c)
}
