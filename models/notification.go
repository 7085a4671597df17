package models

import "time"

// Notification is both the delivery request and the stored in-app inbox entry.
type Notification struct {
	ID            string            `bson:"id" json:"id"`
	UserID        string            `bson:"userId" json:"userId"`
	RecipientRole Role              `bson:"recipientRole" json:"recipientRole"`
	Type          string            `bson:"type" json:"type"`
	Title         string            `bson:"title" json:"title"`
	Message       string            `bson:"message" json:"message"`
	Link          string            `bson:"link,omitempty" json:"link,omitempty"`
	Metadata      map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read          bool              `bson:"read" json:"read"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is scheduled for an engagement's end date.
type ReminderPayload struct {
	EngagementID string    `json:"engagementId"`
	FireDate     time.Time `json:"fireDate"`
}

// PayoutPayload asks the payment provider to release an engagement's fee.
type PayoutPayload struct {
	EngagementID string `json:"engagementId"`
	ProviderID   string `json:"providerId"`
	Fee          string `json:"fee"`
}
