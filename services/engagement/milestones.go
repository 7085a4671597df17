package engagement

import (
	"fmt"
	"math"
	"strings"
	"time"

	"skillbridge/models"
)

// MilestoneOutcome is the result of advancing a milestone.
type MilestoneOutcome struct {
	Engagement *models.Engagement
	Milestone  models.Milestone
	Fields     models.FieldSet
	// Ratio is completed/total across all milestones after the change.
	Ratio float64
}

// milestoneSteps lists the only status changes AdvanceMilestone allows.
var milestoneSteps = map[models.MilestoneStatus]models.MilestoneStatus{
	models.MilestonePending:    models.MilestoneInProgress,
	models.MilestoneInProgress: models.MilestoneCompleted,
}

// MilestoneRatio is completed milestones over total; zero when there are none.
func MilestoneRatio(e *models.Engagement) float64 {
	if len(e.Milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range e.Milestones {
		if m.Status == models.MilestoneCompleted {
			done++
		}
	}
	return float64(done) / float64(len(e.Milestones))
}

// MilestoneProgress is MilestoneRatio as a rounded percentage.
func MilestoneProgress(e *models.Engagement) int {
	return int(math.Round(100 * MilestoneRatio(e)))
}

// AdvanceMilestone moves a milestone one step forward on behalf of the provider.
// requiresDocument is advisory and does not block completion.
func AdvanceMilestone(e *models.Engagement, milestoneID string, to models.MilestoneStatus, actor models.Actor, now time.Time) (*MilestoneOutcome, error) {
	const event = "advance_milestone"
	if actor.Role != models.RoleProvider || actor.ID != e.Provider.ID {
		return nil, models.NewTransitionError(event, string(e.Status), actor.Role, "only the engagement's provider may advance milestones")
	}
	if e.Status != models.StatusInProgress || e.ProjectStartedAt == nil {
		return nil, models.NewTransitionError(event, string(e.Status), actor.Role, "milestones advance only while the project is running")
	}
	if !to.Valid() {
		return nil, models.NewValidationError("invalidMilestoneStatus", fmt.Sprintf("unknown milestone status %q", to))
	}
	i := e.MilestoneIndex(milestoneID)
	if i < 0 {
		return nil, models.NewValidationError("milestoneNotFound", fmt.Sprintf("milestone %s not found", milestoneID))
	}
	from := e.Milestones[i].Status
	if milestoneSteps[from] != to {
		return nil, models.NewTransitionError(event, string(from), actor.Role,
			fmt.Sprintf("milestone cannot move from %s to %s", from, to))
	}

	now = now.UTC()
	next := e.Clone()
	m := &next.Milestones[i]
	m.Status = to
	fs := models.FieldSet{milestoneField(i, "status"): to}
	if to == models.MilestoneCompleted {
		m.CompletedAt = &now
		m.CompletedBy = actor.ID
		fs[milestoneField(i, "completedAt")] = now
		fs[milestoneField(i, "completedBy")] = actor.ID
	}
	next.UpdatedAt = now
	fs[fieldUpdatedAt] = now
	return &MilestoneOutcome{
		Engagement: next,
		Milestone:  *m,
		Fields:     fs,
		Ratio:      MilestoneRatio(next),
	}, nil
}

// NewMilestone validates a definition and builds a pending milestone.
func NewMilestone(id string, def models.MilestoneDef) (models.Milestone, error) {
	title := strings.TrimSpace(def.Title)
	if title == "" {
		return models.Milestone{}, models.NewValidationError("milestoneTitleRequired", "a milestone needs a title")
	}
	return models.Milestone{
		ID:               id,
		Title:            title,
		Description:      strings.TrimSpace(def.Description),
		Status:           models.MilestonePending,
		RequiresDocument: def.RequiresDocument,
	}, nil
}

// AddMilestone appends a milestone while the engagement is still open for planning.
func AddMilestone(e *models.Engagement, id string, def models.MilestoneDef, actor models.Actor, now time.Time) (*MilestoneOutcome, error) {
	const event = "add_milestone"
	if !e.IsParty(actor.ID) {
		return nil, models.NewTransitionError(event, string(e.Status), actor.Role, "actor is not a party to this engagement")
	}
	if e.Status != models.StatusPending && e.Status != models.StatusInProgress {
		return nil, models.NewTransitionError(event, string(e.Status), actor.Role, "milestones can only be added before completion")
	}
	m, err := NewMilestone(id, def)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	next := e.Clone()
	i := len(next.Milestones)
	next.Milestones = append(next.Milestones, m)
	next.UpdatedAt = now
	return &MilestoneOutcome{
		Engagement: next,
		Milestone:  m,
		Fields: models.FieldSet{
			milestoneSlot(i): m,
			fieldUpdatedAt:   now,
		},
		Ratio: MilestoneRatio(next),
	}, nil
}
