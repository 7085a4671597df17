package engagement

import (
	"time"

	"skillbridge/models"
)

var (
	sme      = models.Actor{ID: "sme-1", Name: "Acme Consulting", Role: models.RoleProvider}
	sdp      = models.Actor{ID: "sdp-1", Name: "Northwind Buyer", Role: models.RoleBuyer}
	otherSME = models.Actor{ID: "sme-2", Name: "Other Consulting", Role: models.RoleProvider}
	otherSDP = models.Actor{ID: "sdp-2", Name: "Other Buyer", Role: models.RoleBuyer}
	admin    = models.Actor{ID: "ops-1", Name: "ops-1", Role: models.RoleAdmin}

	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func tp(t time.Time) *time.Time { return &t }

// fixture returns an engagement running from t0 for ten days in the given phase.
func fixture(phase string) *models.Engagement {
	e := &models.Engagement{
		ID:          "eng-1",
		Provider:    models.Party{ID: sme.ID, Name: sme.Name},
		Buyer:       models.Party{ID: sdp.ID, Name: sdp.Name},
		Fee:         "$1,500.00",
		StartDate:   t0,
		EndDate:     t0.Add(10 * 24 * time.Hour),
		Description: "Market entry study",
		Status:      models.StatusPending,
		Milestones:  []models.Milestone{},
		Documents:   []models.Document{},
		Version:     1,
		CreatedAt:   t0.Add(-24 * time.Hour),
		UpdatedAt:   t0.Add(-24 * time.Hour),
	}
	switch phase {
	case "pending":
	case "accepted":
		e.Status = models.StatusInProgress
	case "started":
		e.Status = models.StatusInProgress
		e.ProjectStartedAt = tp(t0)
	case "awaiting":
		e.Status = models.StatusAwaitingConfirmation
		e.ProjectStartedAt = tp(t0)
		e.SMECompletedAt = tp(t0.Add(5 * 24 * time.Hour))
		e.ProgressPercentage = 100
	case "disputed":
		e.Status = models.StatusDisputed
		e.ProjectStartedAt = tp(t0)
		e.SMECompletedAt = tp(t0.Add(5 * 24 * time.Hour))
		e.DisputedAt = tp(t0.Add(6 * 24 * time.Hour))
		e.DisputedBy = sdp.ID
		e.DisputeReason = "missing appendix"
	case "completed":
		e.Status = models.StatusCompleted
		e.ProjectStartedAt = tp(t0)
		e.SMECompletedAt = tp(t0.Add(5 * 24 * time.Hour))
		e.SDPConfirmedAt = tp(t0.Add(6 * 24 * time.Hour))
		e.FundsReleasedAt = tp(t0.Add(6 * 24 * time.Hour))
	case "cancelled":
		e.Status = models.StatusCancelled
		e.DeclinedAt = tp(t0)
	default:
		panic("unknown phase " + phase)
	}
	return e
}

func withMilestones(e *models.Engagement, statuses ...models.MilestoneStatus) *models.Engagement {
	for i, s := range statuses {
		e.Milestones = append(e.Milestones, models.Milestone{
			ID:     "ms-" + string(rune('a'+i)),
			Title:  "Phase " + string(rune('A'+i)),
			Status: s,
		})
	}
	return e
}
