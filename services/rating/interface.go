package rating

import (
	"context"
	"time"

	providerRepo "skillbridge/database/repository/provider"
	ratingRepo "skillbridge/database/repository/rating"
	"skillbridge/models"

	"go.uber.org/zap"
)

// RatingService manages rating submissions and the derived provider reputation.
type RatingService interface {
	SubmitRating(ctx context.Context, providerID string, rater models.Actor, score int, comment string) (*models.Reputation, error)
	Recompute(ctx context.Context, providerID string) (*models.Reputation, error)
	GetReputation(ctx context.Context, providerID string) (*models.Reputation, error)
	LatestByRater(ctx context.Context, providerID, raterID string) (*models.Rating, error)
}

// ReputationCache holds recently computed reputations. A miss returns (nil, nil).
// Set keeps an entry computed from more rating records than seq.
type ReputationCache interface {
	Get(ctx context.Context, providerID string) (*models.Reputation, error)
	Set(ctx context.Context, rep models.Reputation, seq int64) error
}

// DefaultRatingService implements RatingService. Cache is optional.
type DefaultRatingService struct {
	Ratings   ratingRepo.RatingRepository
	Providers providerRepo.ProviderRepository
	Cache     ReputationCache
	Logger    *zap.Logger
	Now       func() time.Time
}
