package notification

import (
	"context"
	"fmt"

	"skillbridge/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Deliver records n in the recipient's inbox and then pushes it. A recipient
// without a device token only gets the inbox entry.
func (s *DefaultNotificationService) Deliver(ctx context.Context, n models.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("notification %s has no recipient", n.ID)
	}
	if err := s.Inboxes.Insert(ctx, &n); err != nil {
		return err
	}

	token, err := s.tokenFor(ctx, n.UserID, n.RecipientRole)
	if err != nil {
		return err
	}
	if token == "" || s.Push == nil {
		s.Logger.Debug("no push token, inbox only", zap.String("userId", n.UserID))
		return nil
	}

	data := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
		"role":           string(n.RecipientRole),
		"link":           n.Link,
	}
	for k, v := range n.Metadata {
		data[k] = v
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "engagements",
				Sound:     "default",
			},
		},
	}
	response, err := s.Push.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message to %s: %w", n.UserID, err)
	}
	s.Logger.Info("push sent",
		zap.String("userId", n.UserID),
		zap.String("type", n.Type),
		zap.String("messageId", response))
	return nil
}

func (s *DefaultNotificationService) tokenFor(ctx context.Context, id string, role models.Role) (string, error) {
	switch role {
	case models.RoleProvider:
		p, err := s.Providers.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("could not find provider %s: %w", id, err)
		}
		return p.FCMToken, nil
	case models.RoleBuyer:
		u, err := s.Users.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("could not find user %s: %w", id, err)
		}
		return u.FCMToken, nil
	}
	return "", nil
}

func (s *DefaultNotificationService) Inbox(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Inboxes.ListByUser(ctx, userID, limit)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.Inboxes.MarkRead(ctx, userID, notificationID)
}
