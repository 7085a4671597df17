package models

import "time"

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneSkipped    MilestoneStatus = "skipped"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneSkipped:
		return true
	}
	return false
}

// Milestone is a sub-deliverable owned by one engagement. Position is execution order.
type Milestone struct {
	ID               string          `bson:"id" json:"id"`
	Title            string          `bson:"title" json:"title"`
	Description      string          `bson:"description,omitempty" json:"description,omitempty"`
	Status           MilestoneStatus `bson:"status" json:"status"`
	RequiresDocument bool            `bson:"requiresDocument" json:"requiresDocument"`
	CompletedAt      *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CompletedBy      string          `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	DocumentID       string          `bson:"documentId,omitempty" json:"documentId,omitempty"`
}

// MilestoneDef is the caller-supplied shape of a new milestone.
type MilestoneDef struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	RequiresDocument bool   `json:"requiresDocument"`
}
