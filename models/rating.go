package models

import "time"

// Rating is one submission event by a rater for a provider. Re-ratings append a new record.
type Rating struct {
	ID         string     `bson:"id" json:"id"`
	ProviderID string     `bson:"providerId" json:"providerId"`
	RaterID    string     `bson:"raterId" json:"raterId"`
	RaterName  string     `bson:"raterName" json:"raterName"`
	Score      int        `bson:"score" json:"score"` // 1-5
	Comment    string     `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  *time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// EffectiveTime is UpdatedAt, falling back to CreatedAt, then the zero time.
func (r Rating) EffectiveTime() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	if r.CreatedAt != nil {
		return *r.CreatedAt
	}
	return time.Time{}
}

// Reputation is the public (score, review count) projection of a provider's ratings.
type Reputation struct {
	ProviderID  string  `json:"providerId"`
	Score       float64 `json:"score"`
	ReviewCount int     `json:"reviewCount"`
}

// RatingPrompt tells the caller whether the buyer is creating or updating a rating.
type RatingPrompt struct {
	ProviderID string  `json:"providerId"`
	Existing   *Rating `json:"existing,omitempty"`
}
