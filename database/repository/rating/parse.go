package ratingRepo

import (
	"fmt"
	"time"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseRating converts a raw stored document into a Rating. Older records may
// carry the score as a double or lack timestamps entirely.
func parseRating(raw bson.M) (models.Rating, error) {
	var r models.Rating
	r.ID, _ = raw["id"].(string)
	r.ProviderID, _ = raw["providerId"].(string)
	r.RaterID, _ = raw["raterId"].(string)
	r.RaterName, _ = raw["raterName"].(string)
	r.Comment, _ = raw["comment"].(string)

	if r.ProviderID == "" || r.RaterID == "" {
		return r, fmt.Errorf("rating %q missing provider or rater: %w", r.ID, models.ErrCorruptRecord)
	}

	switch s := raw["score"].(type) {
	case int32:
		r.Score = int(s)
	case int64:
		r.Score = int(s)
	case float64:
		if s != float64(int(s)) {
			return r, fmt.Errorf("rating %q has fractional score %v: %w", r.ID, s, models.ErrCorruptRecord)
		}
		r.Score = int(s)
	default:
		return r, fmt.Errorf("rating %q has no numeric score: %w", r.ID, models.ErrCorruptRecord)
	}
	if r.Score < 1 || r.Score > 5 {
		return r, fmt.Errorf("rating %q score %d out of range: %w", r.ID, r.Score, models.ErrCorruptRecord)
	}

	r.CreatedAt = parseTime(raw["createdAt"])
	r.UpdatedAt = parseTime(raw["updatedAt"])
	return r, nil
}

func parseTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		tt := t.Time().UTC()
		return &tt
	case time.Time:
		tt := t.UTC()
		return &tt
	case string:
		if tt, err := time.Parse(time.RFC3339, t); err == nil {
			tt = tt.UTC()
			return &tt
		}
	}
	return nil
}
