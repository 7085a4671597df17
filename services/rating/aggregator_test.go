package rating

import (
	"testing"
	"time"

	"skillbridge/models"

	"github.com/stretchr/testify/assert"
)

var t1 = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	v := t1.Add(d)
	return &v
}

func TestAggregate_LatestRatingPerRaterWins(t *testing.T) {
	ratings := []models.Rating{
		{ID: "1", RaterID: "A", Score: 5, CreatedAt: at(0), UpdatedAt: at(0)},
		{ID: "2", RaterID: "A", Score: 3, CreatedAt: at(0), UpdatedAt: at(time.Hour)},
		{ID: "3", RaterID: "B", Score: 4, CreatedAt: at(2 * time.Hour)},
	}
	rep := Aggregate("P", ratings)
	assert.Equal(t, models.Reputation{ProviderID: "P", Score: 3.5, ReviewCount: 2}, rep)

	// Order of the history does not matter.
	reversed := []models.Rating{ratings[2], ratings[1], ratings[0]}
	assert.Equal(t, rep, Aggregate("P", reversed))
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		ratings []models.Rating
		score   float64
		count   int
	}{
		{"no ratings", nil, 0, 0},
		{"single", []models.Rating{{RaterID: "A", Score: 4, CreatedAt: at(0)}}, 4, 1},
		{"rounds to one decimal", []models.Rating{
			{RaterID: "A", Score: 5, CreatedAt: at(0)},
			{RaterID: "B", Score: 4, CreatedAt: at(0)},
			{RaterID: "C", Score: 4, CreatedAt: at(0)},
		}, 4.3, 3},
		{"rounds half up", []models.Rating{
			{RaterID: "A", Score: 5, CreatedAt: at(0)},
			{RaterID: "B", Score: 5, CreatedAt: at(0)},
			{RaterID: "C", Score: 4, CreatedAt: at(0)},
			{RaterID: "D", Score: 5, CreatedAt: at(0)},
			{RaterID: "E", Score: 5, CreatedAt: at(0)},
			{RaterID: "F", Score: 4, CreatedAt: at(0)},
			{RaterID: "G", Score: 5, CreatedAt: at(0)},
			{RaterID: "H", Score: 5, CreatedAt: at(0)},
			{RaterID: "I", Score: 5, CreatedAt: at(0)},
			{RaterID: "J", Score: 2, CreatedAt: at(0)},
			{RaterID: "K", Score: 5, CreatedAt: at(0)},
			{RaterID: "L", Score: 5, CreatedAt: at(0)},
			{RaterID: "M", Score: 4, CreatedAt: at(0)},
			{RaterID: "N", Score: 5, CreatedAt: at(0)},
			{RaterID: "O", Score: 4, CreatedAt: at(0)},
			{RaterID: "P", Score: 5, CreatedAt: at(0)},
			{RaterID: "Q", Score: 4, CreatedAt: at(0)},
			{RaterID: "R", Score: 4, CreatedAt: at(0)},
			{RaterID: "S", Score: 5, CreatedAt: at(0)},
			{RaterID: "T", Score: 3, CreatedAt: at(0)},
		}, 4.5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Aggregate("P", tt.ratings)
			assert.InDelta(t, tt.score, rep.Score, 1e-9)
			assert.Equal(t, tt.count, rep.ReviewCount)
		})
	}
}

func TestLatestPerRater_TimestampFallbacks(t *testing.T) {
	ratings := []models.Rating{
		{ID: "dated", RaterID: "A", Score: 2, CreatedAt: at(0)},
		{ID: "undated", RaterID: "A", Score: 5},
		{ID: "created-only", RaterID: "B", Score: 1, CreatedAt: at(3 * time.Hour)},
		{ID: "updated", RaterID: "B", Score: 4, CreatedAt: at(0), UpdatedAt: at(4 * time.Hour)},
		{ID: "first", RaterID: "C", Score: 3, UpdatedAt: at(time.Hour)},
		{ID: "tie", RaterID: "C", Score: 1, UpdatedAt: at(time.Hour)},
	}
	latest := LatestPerRater(ratings)
	ids := make([]string, 0, len(latest))
	for _, r := range latest {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"dated", "updated", "first"}, ids)
}

func TestLatestPerRater_UndatedOnly(t *testing.T) {
	latest := LatestPerRater([]models.Rating{
		{ID: "1", RaterID: "A", Score: 2},
		{ID: "2", RaterID: "A", Score: 4},
	})
	assert.Len(t, latest, 1)
	assert.Equal(t, "1", latest[0].ID)
}
