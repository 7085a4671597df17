package models

import "time"

type PaymentDetails struct {
	StripeAccountID string `bson:"stripeAccountID,omitempty" json:"stripeAccountID,omitempty"`
	Currency        string `bson:"currency" json:"currency"`
}

// Provider is the SME profile carrying the public reputation projection.
type Provider struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Rating      float64 `bson:"rating" json:"rating"`
	ReviewCount int     `bson:"reviewCount" json:"reviewCount"`
	// ReputationSeq is the number of rating records the stored projection was computed from.
	ReputationSeq  int64          `bson:"reputationSeq,omitempty" json:"-"`
	FCMToken       string         `bson:"fcmToken,omitempty" json:"-"`
	PaymentDetails PaymentDetails `bson:"paymentDetails" json:"paymentDetails"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// User is a buyer account; only the push token matters to this service.
type User struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}
