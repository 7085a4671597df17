package engagementRepo

import (
	"fmt"

	"skillbridge/models"
)

// parseEngagement validates a decoded document before it enters the core.
// The store is not trusted to hold only well-formed engagements.
func parseEngagement(e *models.Engagement) error {
	corrupt := func(format string, args ...interface{}) error {
		return fmt.Errorf("engagement %q: %s: %w", e.ID, fmt.Sprintf(format, args...), models.ErrCorruptRecord)
	}
	if e.ID == "" {
		return corrupt("missing id")
	}
	if e.Provider.ID == "" || e.Buyer.ID == "" {
		return corrupt("missing party")
	}
	if !e.Status.Valid() {
		return corrupt("unknown status %q", e.Status)
	}
	if e.SMECompletedAt != nil && e.ProjectStartedAt == nil {
		return corrupt("completed without start")
	}
	if e.SDPConfirmedAt != nil && e.SMECompletedAt == nil {
		return corrupt("confirmed without provider completion")
	}
	if e.Milestones == nil {
		e.Milestones = []models.Milestone{}
	}
	if e.Documents == nil {
		e.Documents = []models.Document{}
	}
	for i, m := range e.Milestones {
		if m.ID == "" {
			return corrupt("milestone %d missing id", i)
		}
		if !m.Status.Valid() {
			return corrupt("milestone %s has unknown status %q", m.ID, m.Status)
		}
	}
	for i := range e.Documents {
		d := &e.Documents[i]
		if d.ID == "" {
			return corrupt("document %d missing id", i)
		}
		if !d.Status.Valid() {
			return corrupt("document %s has unknown status %q", d.ID, d.Status)
		}
		if d.SignedBy == nil {
			d.SignedBy = []string{}
		}
		if d.SignedByNames == nil {
			d.SignedByNames = []string{}
		}
	}
	return nil
}
