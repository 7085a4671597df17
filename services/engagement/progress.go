package engagement

import (
	"math"
	"time"

	"skillbridge/models"
)

// progressCap is the ceiling for any progress not backed by an explicit completion.
const progressCap = 90

// EstimateProgress computes a 0-100 completion estimate from the engagement dates.
// Only the provider's explicit completion reaches 100.
func EstimateProgress(e *models.Engagement, now time.Time) int {
	if e.SMECompletedAt != nil {
		return 100
	}
	if e.ProjectStartedAt == nil {
		return 0
	}
	if now.Before(e.StartDate) {
		return 0
	}
	if now.After(e.EndDate) {
		return progressCap
	}
	total := e.EndDate.Sub(e.StartDate)
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(now.Sub(e.StartDate)) / float64(total)))
	if pct > progressCap {
		return progressCap
	}
	return pct
}

// CurrentProgress is the figure shown to callers: milestone-driven when the
// engagement has milestones, time-based otherwise.
func CurrentProgress(e *models.Engagement, now time.Time) int {
	if e.SMECompletedAt != nil {
		return 100
	}
	if len(e.Milestones) > 0 {
		return capProgress(MilestoneProgress(e))
	}
	return EstimateProgress(e, now)
}

func capProgress(p int) int {
	if p > progressCap {
		return progressCap
	}
	return p
}
