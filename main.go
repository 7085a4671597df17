package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillbridge/config"
	"skillbridge/cron"
	"skillbridge/database"
	engagementRepo "skillbridge/database/repository/engagement"
	notificationRepo "skillbridge/database/repository/notification"
	providerRepo "skillbridge/database/repository/provider"
	ratingRepo "skillbridge/database/repository/rating"
	userRepo "skillbridge/database/repository/user"
	"skillbridge/handlers"
	"skillbridge/middleware"
	"skillbridge/routes"
	"skillbridge/services/engagement"
	"skillbridge/services/feed"
	"skillbridge/services/notification"
	"skillbridge/services/payment"
	"skillbridge/services/rating"
	"skillbridge/services/tasks"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/transfer"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	if err := config.AppConfig.Validate(); err != nil {
		logger.Fatal("main: invalid configuration", zap.Error(err))
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB(logger)
	db := database.DB()
	cacheClient := utils.GetCacheClient()
	feedClient := utils.GetFeedClient()
	if err := utils.FirebaseInit(rootCtx); err != nil {
		logger.Fatal("main: failed to initialize firebase", zap.Error(err))
	}
	documentStore, err := utils.NewStorageService(rootCtx)
	if err != nil {
		logger.Fatal("main: failed to initialize document storage", zap.Error(err))
	}
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	engRepo := engagementRepo.NewMongoEngagementRepo(db)
	ratRepo := ratingRepo.NewMongoRatingRepo(db)
	provRepo := providerRepo.NewMongoProviderRepo(db)
	usrRepo := userRepo.NewMongoUserRepo(db)
	inboxRepo := notificationRepo.NewMongoNotificationRepo(db)
	for name, ensure := range map[string]func(context.Context) error{
		"engagements": engRepo.EnsureIndexes,
		"ratings":     ratRepo.EnsureIndexes,
		"providers":   provRepo.EnsureIndexes,
		"users":       usrRepo.EnsureIndexes,
	} {
		if err := ensure(rootCtx); err != nil {
			logger.Warn("main: failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// task queue.
	queueOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	asynqClient := asynq.NewClient(queueOpt)
	defer asynqClient.Close()
	queue := tasks.NewQueue(asynqClient, logger)

	// services.
	ratingService := &rating.DefaultRatingService{
		Ratings:   ratRepo,
		Providers: provRepo,
		Cache:     rating.NewRedisReputationCache(cacheClient, config.AppConfig.ReputationCacheTTL),
		Logger:    logger.Named("rating"),
		Now:       time.Now,
	}
	changeFeed := feed.NewRedisChangeFeed(feedClient, logger.Named("feed"))
	engagementService := &engagement.DefaultEngagementService{
		Repo:      engRepo,
		Ratings:   ratingService,
		Storage:   documentStore,
		Notifier:  queue,
		Scheduler: queue,
		Feed:      changeFeed,
		Logger:    logger.Named("engagement"),
		Now:       time.Now,
	}
	notificationService := &notification.DefaultNotificationService{
		Inboxes:   inboxRepo,
		Users:     usrRepo,
		Providers: provRepo,
		Push:      utils.FCMClient,
		Logger:    logger.Named("notification"),
	}
	payoutService := payment.NewPayoutService(
		&transfer.Client{B: stripe.GetBackend(stripe.APIBackend), Key: config.AppConfig.StripeKey},
		provRepo,
		config.AppConfig.PayoutCurrency,
		logger.Named("payment"),
	)

	worker := cron.NewWorker(queueOpt, notificationService, engagementService, payoutService, logger.Named("worker"))
	worker.Start()

	utils.StartHealthMonitor(rootCtx, time.Minute, map[string]*redis.Client{
		"cache": cacheClient,
		"feed":  feedClient,
	}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		JWTSecret:     []byte(config.AppConfig.JWTSecret),
		AdminToken:    config.AppConfig.AdminToken,
		Engagements:   &handlers.EngagementHandler{Service: engagementService},
		Ratings:       &handlers.RatingHandler{Service: ratingService},
		Notifications: &handlers.NotificationHandler{Service: notificationService},
		Stream:        &handlers.StreamHandler{Feed: changeFeed},
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
