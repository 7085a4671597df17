package rating

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillbridge/models"
	"skillbridge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCommentLength = 2000

func (s *DefaultRatingService) clock() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validateSubmission(providerID string, rater models.Actor, score int, comment string) error {
	if strings.TrimSpace(providerID) == "" {
		return models.NewValidationError("providerRequired", "a rating needs a provider")
	}
	if rater.Role != models.RoleBuyer {
		return models.NewValidationError("raterNotBuyer", "only buyers can rate providers")
	}
	if rater.ID == "" || rater.ID == providerID {
		return models.NewValidationError("invalidRater", "a provider cannot rate themselves")
	}
	if score < 1 || score > 5 {
		return models.NewValidationError("invalidScore", fmt.Sprintf("score must be between 1 and 5, got %d", score))
	}
	if len(comment) > maxCommentLength {
		return models.NewValidationError("commentTooLong", fmt.Sprintf("comment exceeds %d characters", maxCommentLength))
	}
	return nil
}

// SubmitRating appends a new rating record and recomputes the provider's reputation.
// A re-rating keeps the original creation time and is stamped strictly after the
// record it replaces, so it wins even when clocks disagree or collide.
func (s *DefaultRatingService) SubmitRating(ctx context.Context, providerID string, rater models.Actor, score int, comment string) (*models.Reputation, error) {
	if err := validateSubmission(providerID, rater, score, comment); err != nil {
		return nil, err
	}
	if _, err := s.Providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}

	existing, err := s.LatestByRater(ctx, providerID, rater.ID)
	if err != nil {
		return nil, err
	}
	// Stored times keep millisecond precision.
	now := s.clock().Truncate(time.Millisecond)
	createdAt := now
	if existing != nil {
		if existing.CreatedAt != nil {
			createdAt = *existing.CreatedAt
		}
		if last := existing.EffectiveTime(); !now.After(last) {
			now = last.Add(time.Millisecond)
		}
	}
	record := &models.Rating{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		RaterID:    rater.ID,
		RaterName:  rater.Name,
		Score:      score,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  &createdAt,
		UpdatedAt:  &now,
	}
	if err := s.Ratings.Append(ctx, record); err != nil {
		return nil, err
	}
	utils.RatingSubmissions.WithLabelValues(submissionKind(existing)).Inc()
	s.Logger.Info("rating submitted",
		zap.String("providerId", providerID),
		zap.String("raterId", rater.ID),
		zap.Int("score", score),
		zap.Bool("update", existing != nil))

	return s.Recompute(ctx, providerID)
}

func submissionKind(existing *models.Rating) string {
	if existing != nil {
		return "update"
	}
	return "create"
}

// Recompute aggregates every rating for the provider and stores the result.
// When a concurrent recompute already stored a projection built from at least
// as many records, that stored projection is returned instead.
func (s *DefaultRatingService) Recompute(ctx context.Context, providerID string) (*models.Reputation, error) {
	ratings, err := s.Ratings.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	rep := Aggregate(providerID, ratings)
	seq := int64(len(ratings))
	applied, err := s.Providers.UpdateReputation(ctx, rep, seq)
	if err != nil {
		return nil, err
	}
	if !applied {
		p, err := s.Providers.GetByID(ctx, providerID)
		if err != nil {
			return nil, err
		}
		s.Logger.Debug("newer reputation already stored",
			zap.String("providerId", providerID),
			zap.Int64("seq", seq),
			zap.Int64("storedSeq", p.ReputationSeq))
		return &models.Reputation{ProviderID: p.ID, Score: p.Rating, ReviewCount: p.ReviewCount}, nil
	}
	s.cache(ctx, rep, seq)
	s.Logger.Debug("reputation recomputed",
		zap.String("providerId", providerID),
		zap.Float64("score", rep.Score),
		zap.Int("reviewCount", rep.ReviewCount))
	return &rep, nil
}

// GetReputation reads the stored projection, going through the cache when one is configured.
func (s *DefaultRatingService) GetReputation(ctx context.Context, providerID string) (*models.Reputation, error) {
	if s.Cache != nil {
		rep, err := s.Cache.Get(ctx, providerID)
		if err != nil {
			s.Logger.Warn("reputation cache read failed", zap.String("providerId", providerID), zap.Error(err))
		} else if rep != nil {
			return rep, nil
		}
	}
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	rep := models.Reputation{ProviderID: p.ID, Score: p.Rating, ReviewCount: p.ReviewCount}
	s.cache(ctx, rep, p.ReputationSeq)
	return &rep, nil
}

func (s *DefaultRatingService) cache(ctx context.Context, rep models.Reputation, seq int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, rep, seq); err != nil {
		s.Logger.Warn("failed to cache reputation", zap.String("providerId", rep.ProviderID), zap.Error(err))
	}
}

// LatestByRater returns the rater's current rating for the provider, or nil if they never rated.
func (s *DefaultRatingService) LatestByRater(ctx context.Context, providerID, raterID string) (*models.Rating, error) {
	history, err := s.Ratings.ListByRater(ctx, providerID, raterID)
	if err != nil {
		return nil, err
	}
	latest := LatestPerRater(history)
	if len(latest) == 0 {
		return nil, nil
	}
	return &latest[0], nil
}
