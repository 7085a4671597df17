package engagementRepo

import (
	"testing"
	"time"

	"skillbridge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stored() *models.Engagement {
	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return &models.Engagement{
		ID:               "eng-1",
		Provider:         models.Party{ID: "sme-1"},
		Buyer:            models.Party{ID: "sdp-1"},
		Status:           models.StatusInProgress,
		ProjectStartedAt: &started,
		Milestones:       []models.Milestone{{ID: "ms-1", Status: models.MilestonePending}},
		Documents:        []models.Document{{ID: "doc-1", Status: models.DocumentUploaded}},
	}
}

func TestParseEngagement_Normalizes(t *testing.T) {
	e := stored()
	require.NoError(t, parseEngagement(e))
	assert.NotNil(t, e.Documents[0].SignedBy)
	assert.NotNil(t, e.Documents[0].SignedByNames)

	bare := stored()
	bare.Milestones = nil
	bare.Documents = nil
	require.NoError(t, parseEngagement(bare))
	assert.NotNil(t, bare.Milestones)
	assert.NotNil(t, bare.Documents)
}

func TestParseEngagement_Corrupt(t *testing.T) {
	now := time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		mutate func(e *models.Engagement)
	}{
		{"missing id", func(e *models.Engagement) { e.ID = "" }},
		{"missing buyer", func(e *models.Engagement) { e.Buyer.ID = "" }},
		{"unknown status", func(e *models.Engagement) { e.Status = "Archived" }},
		{"completed without start", func(e *models.Engagement) {
			e.ProjectStartedAt = nil
			e.SMECompletedAt = &now
		}},
		{"confirmed without completion", func(e *models.Engagement) { e.SDPConfirmedAt = &now }},
		{"milestone without id", func(e *models.Engagement) { e.Milestones[0].ID = "" }},
		{"milestone with unknown status", func(e *models.Engagement) { e.Milestones[0].Status = "done" }},
		{"document without id", func(e *models.Engagement) { e.Documents[0].ID = "" }},
		{"document with unknown status", func(e *models.Engagement) { e.Documents[0].Status = "rejected" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := stored()
			tt.mutate(e)
			assert.ErrorIs(t, parseEngagement(e), models.ErrCorruptRecord)
		})
	}
}
