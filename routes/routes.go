package routes

import (
	"net/http"
	"time"

	"skillbridge/handlers"
	"skillbridge/middleware"
	"skillbridge/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterEngagementRoutes registers the engagement lifecycle endpoints.
func RegisterEngagementRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/engagements")
	api.Use(middleware.ActorMiddleware(hb.JWTSecret))
	{
		api.POST("", hb.Engagements.ProposeHandler)
		api.GET("", hb.Engagements.ListHandler)
		api.GET("/stream", hb.Stream.StreamChangesHandler)
		api.GET("/:id", hb.Engagements.GetHandler)
		api.POST("/:id/events/:event", hb.Engagements.TransitionHandler)
		api.POST("/:id/milestones", hb.Engagements.AddMilestoneHandler)
		api.PATCH("/:id/milestones/:milestoneId", hb.Engagements.AdvanceMilestoneHandler)
		api.POST("/:id/documents", hb.Engagements.AttachDocumentHandler)
		api.POST("/:id/documents/:documentId/sign", hb.Engagements.SignDocumentHandler)
		api.GET("/:id/documents/:documentId/url", hb.Engagements.DocumentURLHandler)
	}
}

// RegisterRatingRoutes registers provider reputation endpoints. Reading is public.
func RegisterRatingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/:id/ratings")
	{
		api.GET("", hb.Ratings.GetReputationHandler)
		api.POST("", middleware.ActorMiddleware(hb.JWTSecret), hb.Ratings.SubmitRatingHandler)
	}
}

// RegisterNotificationRoutes registers the in-app inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	api.Use(middleware.ActorMiddleware(hb.JWTSecret))
	{
		api.GET("", hb.Notifications.InboxHandler)
		api.POST("/:id/read", hb.Notifications.MarkReadHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware(hb.AdminToken))
	{
		adminGroup.GET("/engagements/:id", hb.Engagements.GetHandler)
		adminGroup.POST("/engagements/:id/payment", hb.Engagements.ConfirmPaymentHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": http.StatusText(code), "dependencies": status})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "If-Match", "X-Request-ID", "X-Admin-ID"},
		ExposeHeaders: []string{"Content-Length", "ETag", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterEngagementRoutes(r, hb)
	RegisterRatingRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
