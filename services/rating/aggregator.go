package rating

import (
	"math"

	"skillbridge/models"
)

// LatestPerRater keeps one record per rater: the one with the greatest
// EffectiveTime. On equal times the record seen first wins. Records without
// any timestamp count as the zero time and lose to any dated record.
func LatestPerRater(ratings []models.Rating) []models.Rating {
	index := make(map[string]int, len(ratings))
	latest := make([]models.Rating, 0, len(ratings))
	for _, r := range ratings {
		i, seen := index[r.RaterID]
		if !seen {
			index[r.RaterID] = len(latest)
			latest = append(latest, r)
			continue
		}
		if r.EffectiveTime().After(latest[i].EffectiveTime()) {
			latest[i] = r
		}
	}
	return latest
}

// Aggregate computes a provider's public reputation from its full rating history.
func Aggregate(providerID string, ratings []models.Rating) models.Reputation {
	rep := models.Reputation{ProviderID: providerID}
	latest := LatestPerRater(ratings)
	if len(latest) == 0 {
		return rep
	}
	sum := 0
	for _, r := range latest {
		sum += r.Score
	}
	rep.Score = roundTo1(float64(sum) / float64(len(latest)))
	rep.ReviewCount = len(latest)
	return rep
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
