package middleware

import (
	"strings"

	"skillbridge/models"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// EventSource cannot set headers, so the stream endpoint takes the token as a query parameter.
	return c.Query("access_token")
}

// ActorMiddleware turns the caller's bearer JWT into a models.Actor on the context.
func ActorMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.JSONError(c, 401, "unauthorized", "Insufficient authorization", "missing bearer token")
			return
		}
		actor, err := utils.ParseActorToken(secret, tokenString)
		if err != nil {
			zap.L().Debug("rejected token", zap.String("ip", getClientIP(c)), zap.Error(err))
			utils.JSONError(c, 401, "unauthorized", "Insufficient authorization", "invalid token")
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// SetActor stores actor on the context. Admin auth uses it too.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the actor set by ActorMiddleware or AdminAuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
