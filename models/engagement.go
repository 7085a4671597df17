package models

import "time"

// EngagementStatus is the lifecycle state of an engagement.
type EngagementStatus string

const (
	StatusPending              EngagementStatus = "Pending"
	StatusInProgress           EngagementStatus = "In Progress"
	StatusAwaitingConfirmation EngagementStatus = "Awaiting Confirmation"
	StatusDisputed             EngagementStatus = "Disputed"
	StatusCompleted            EngagementStatus = "Completed"
	StatusCancelled            EngagementStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s EngagementStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAwaitingConfirmation,
		StatusDisputed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Party is one side of an engagement with a cached display name.
type Party struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Engagement is one contracted unit of work between a buyer (SDP) and a provider (SME).
type Engagement struct {
	ID       string `bson:"id" json:"id"`
	Provider Party  `bson:"provider" json:"provider"`
	Buyer    Party  `bson:"buyer" json:"buyer"`

	// Commercial terms.
	Fee          string    `bson:"fee" json:"fee"` // currency formatted, e.g. "$1,500.00"
	StartDate    time.Time `bson:"startDate" json:"startDate"`
	EndDate      time.Time `bson:"endDate" json:"endDate"`
	Description  string    `bson:"description" json:"description"`
	Deliverables string    `bson:"deliverables,omitempty" json:"deliverables,omitempty"`

	Status             EngagementStatus `bson:"status" json:"status"`
	ProgressPercentage int              `bson:"progressPercentage" json:"progressPercentage"`

	ProjectStartedAt *time.Time `bson:"projectStartedAt,omitempty" json:"projectStartedAt,omitempty"`
	SMECompletedAt   *time.Time `bson:"smeCompletedAt,omitempty" json:"smeCompletedAt,omitempty"`
	SDPConfirmedAt   *time.Time `bson:"sdpConfirmedAt,omitempty" json:"sdpConfirmedAt,omitempty"`
	FundsReleasedAt  *time.Time `bson:"fundsReleasedAt,omitempty" json:"fundsReleasedAt,omitempty"`

	DeclinedAt    *time.Time `bson:"declinedAt,omitempty" json:"declinedAt,omitempty"`
	DeclineReason string     `bson:"declineReason,omitempty" json:"declineReason,omitempty"`

	DisputedAt             *time.Time `bson:"disputedAt,omitempty" json:"disputedAt,omitempty"`
	DisputedBy             string     `bson:"disputedBy,omitempty" json:"disputedBy,omitempty"`
	DisputeReason          string     `bson:"disputeReason,omitempty" json:"disputeReason,omitempty"`
	DisputeResolvedAt      *time.Time `bson:"disputeResolvedAt,omitempty" json:"disputeResolvedAt,omitempty"`
	DisputeResolutionNotes string     `bson:"disputeResolutionNotes,omitempty" json:"disputeResolutionNotes,omitempty"`

	PaymentConfirmedByAdmin bool       `bson:"paymentConfirmedByAdmin" json:"paymentConfirmedByAdmin"`
	PaymentConfirmedAt      *time.Time `bson:"paymentConfirmedAt,omitempty" json:"paymentConfirmedAt,omitempty"`
	PaymentConfirmedBy      string     `bson:"paymentConfirmedBy,omitempty" json:"paymentConfirmedBy,omitempty"`
	PaymentReference        string     `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`

	Milestones []Milestone `bson:"milestones" json:"milestones"`
	Documents  []Document  `bson:"documents" json:"documents"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Clone returns a deep copy so transitions can be applied all-or-nothing.
func (e *Engagement) Clone() *Engagement {
	c := *e
	c.Milestones = make([]Milestone, len(e.Milestones))
	copy(c.Milestones, e.Milestones)
	c.Documents = make([]Document, len(e.Documents))
	for i, d := range e.Documents {
		d.SignedBy = append([]string(nil), d.SignedBy...)
		d.SignedByNames = append([]string(nil), d.SignedByNames...)
		c.Documents[i] = d
	}
	return &c
}

// MilestoneIndex returns the position of the milestone with id, or -1.
func (e *Engagement) MilestoneIndex(id string) int {
	for i := range e.Milestones {
		if e.Milestones[i].ID == id {
			return i
		}
	}
	return -1
}

// DocumentIndex returns the position of the document with id, or -1.
func (e *Engagement) DocumentIndex(id string) int {
	for i := range e.Documents {
		if e.Documents[i].ID == id {
			return i
		}
	}
	return -1
}

// IsParty reports whether partyID is the provider or the buyer.
func (e *Engagement) IsParty(partyID string) bool {
	return partyID != "" && (partyID == e.Provider.ID || partyID == e.Buyer.ID)
}

// EngagementTerms are supplied by a buyer when proposing work.
type EngagementTerms struct {
	Provider     Party          `json:"provider" binding:"required"`
	Fee          string         `json:"fee" binding:"required"`
	StartDate    time.Time      `json:"startDate" binding:"required"`
	EndDate      time.Time      `json:"endDate" binding:"required"`
	Description  string         `json:"description"`
	Deliverables string         `json:"deliverables,omitempty"`
	Milestones   []MilestoneDef `json:"milestones,omitempty"`
}
