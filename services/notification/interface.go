package notification

import (
	"context"

	notificationRepo "skillbridge/database/repository/notification"
	providerRepo "skillbridge/database/repository/provider"
	userRepo "skillbridge/database/repository/user"
	"skillbridge/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService delivers notifications queued by the engagement service.
type NotificationService interface {
	Deliver(ctx context.Context, n models.Notification) error
	Inbox(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// PushSender is implemented by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService stores each notification in the inbox and pushes it over FCM.
type DefaultNotificationService struct {
	Inboxes   notificationRepo.NotificationRepository
	Users     userRepo.UserRepository
	Providers providerRepo.ProviderRepository
	Push      PushSender
	Logger    *zap.Logger
}
