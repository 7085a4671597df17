package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"skillbridge/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChangeSubscriber streams committed engagement changes for one party.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, partyID string) (<-chan models.EngagementChange, error)
}

type StreamHandler struct {
	Feed      ChangeSubscriber
	Heartbeat time.Duration
}

// StreamChangesHandler handles GET /api/engagements/stream as server-sent events.
func (h *StreamHandler) StreamChangesHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	changes, err := h.Feed.Subscribe(ctx, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	getLogger(c).Debug("change stream opened", zap.String("actorId", actor.ID))

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("engagement", change)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
