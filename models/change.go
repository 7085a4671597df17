package models

import "time"

// FieldSet is a partial write keyed by persisted field name.
type FieldSet map[string]interface{}

// EngagementChange is emitted after a committed write so subscribers can refresh.
type EngagementChange struct {
	EngagementID string           `json:"engagementId"`
	Event        string           `json:"event"`
	Status       EngagementStatus `json:"status"`
	Version      int64            `json:"version"`
	ActorID      string           `json:"actorId"`
	Parties      []string         `json:"parties"`
	At           time.Time        `json:"at"`
}
