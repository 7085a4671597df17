package handlers

import (
	"errors"
	"net/http"

	"skillbridge/models"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto an HTTP response.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	var terr *models.TransitionError
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, verr.Code, verr.Message, "")
	case errors.As(err, &terr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"code":    terr.Code,
			"message": terr.Message,
			"event":   terr.Event,
			"from":    terr.From,
			"role":    terr.Role,
		})
	case errors.Is(err, models.ErrVersionConflict):
		utils.JSONError(c, http.StatusConflict, "versionConflict", "Engagement was modified, reload and retry", err.Error())
	case errors.Is(err, models.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "notFound", "Not found", err.Error())
	case errors.Is(err, models.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", "Forbidden", "")
	default:
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal", "Internal Server Error", "")
	}
}

func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Insufficient authorization", "")
	}
	return actor, ok
}
