package engagement

import (
	"fmt"
	"strings"
	"time"

	"skillbridge/models"
)

// Event is a lifecycle event requested by one of the parties.
type Event string

const (
	EventAccept       Event = "accept"
	EventDecline      Event = "decline"
	EventStart        Event = "start"
	EventMarkComplete Event = "complete"
	EventDispute      Event = "dispute"
	EventResolve      Event = "resolve"
	EventConfirm      Event = "confirm"
)

// eventOrder is the order AvailableEvents reports in.
var eventOrder = []Event{
	EventAccept, EventDecline, EventStart, EventMarkComplete,
	EventDispute, EventResolve, EventConfirm,
}

// Payload carries the free text some events require.
type Payload struct {
	Reason     string `json:"reason,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	// IfVersion, when non-zero, must match the stored version.
	IfVersion int64 `json:"ifVersion,omitempty"`
}

// NotificationIntent is a notification the caller must request after commit.
type NotificationIntent struct {
	Recipient models.Role
	Type      string
	Title     string
	Message   string
}

// Outcome is the result of applying an event: the next engagement state, the
// exact fields that changed and the notifications owed.
type Outcome struct {
	Event      Event
	Engagement *models.Engagement
	Fields     models.FieldSet
	Notify     []NotificationIntent
}

type rule struct {
	from  models.EngagementStatus
	role  models.Role
	guard func(e *models.Engagement) bool
	apply func(next *models.Engagement, actor models.Actor, p Payload, now time.Time, fs models.FieldSet) []NotificationIntent
}

var rules = map[Event]rule{
	EventAccept: {
		from: models.StatusPending,
		role: models.RoleProvider,
		apply: func(next *models.Engagement, _ models.Actor, _ Payload, _ time.Time, fs models.FieldSet) []NotificationIntent {
			next.Status = models.StatusInProgress
			fs[fieldStatus] = next.Status
			return []NotificationIntent{{
				Recipient: models.RoleBuyer,
				Type:      "engagement_accepted",
				Title:     "Engagement accepted",
				Message:   fmt.Sprintf("%s accepted your engagement.", next.Provider.Name),
			}}
		},
	},
	EventDecline: {
		from: models.StatusPending,
		role: models.RoleProvider,
		apply: func(next *models.Engagement, _ models.Actor, p Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			next.Status = models.StatusCancelled
			next.DeclinedAt = &now
			fs[fieldStatus] = next.Status
			fs[fieldDeclinedAt] = now
			if reason := strings.TrimSpace(p.Reason); reason != "" {
				next.DeclineReason = reason
				fs[fieldDeclineReason] = reason
			}
			return []NotificationIntent{{
				Recipient: models.RoleBuyer,
				Type:      "engagement_declined",
				Title:     "Engagement declined",
				Message:   fmt.Sprintf("%s declined your engagement.", next.Provider.Name),
			}}
		},
	},
	EventStart: {
		from:  models.StatusInProgress,
		role:  models.RoleProvider,
		guard: func(e *models.Engagement) bool { return e.ProjectStartedAt == nil },
		apply: func(next *models.Engagement, _ models.Actor, _ Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			next.ProjectStartedAt = &now
			next.ProgressPercentage = 0
			fs[fieldProjectStartedAt] = now
			fs[fieldProgress] = 0
			return []NotificationIntent{{
				Recipient: models.RoleBuyer,
				Type:      "project_started",
				Title:     "Project started",
				Message:   fmt.Sprintf("%s started work on your project.", next.Provider.Name),
			}}
		},
	},
	EventMarkComplete: {
		from: models.StatusInProgress,
		role: models.RoleProvider,
		guard: func(e *models.Engagement) bool {
			return e.ProjectStartedAt != nil && e.SMECompletedAt == nil
		},
		apply: func(next *models.Engagement, _ models.Actor, _ Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			at := notBefore(now, next.ProjectStartedAt)
			next.Status = models.StatusAwaitingConfirmation
			next.SMECompletedAt = &at
			next.ProgressPercentage = 100
			fs[fieldStatus] = next.Status
			fs[fieldSMECompletedAt] = at
			fs[fieldProgress] = 100
			return []NotificationIntent{{
				Recipient: models.RoleBuyer,
				Type:      "project_completed",
				Title:     "Work marked complete",
				Message:   fmt.Sprintf("%s marked the project complete. Please review and confirm.", next.Provider.Name),
			}}
		},
	},
	EventDispute: {
		from: models.StatusAwaitingConfirmation,
		role: models.RoleBuyer,
		apply: func(next *models.Engagement, actor models.Actor, p Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			reason := strings.TrimSpace(p.Reason)
			next.Status = models.StatusDisputed
			next.DisputedAt = &now
			next.DisputedBy = actor.ID
			next.DisputeReason = reason
			next.DisputeResolvedAt = nil
			next.DisputeResolutionNotes = ""
			fs[fieldStatus] = next.Status
			fs[fieldDisputedAt] = now
			fs[fieldDisputedBy] = actor.ID
			fs[fieldDisputeReason] = reason
			fs[fieldDisputeResolvedAt] = nil
			fs[fieldDisputeResolutionNotes] = ""
			return []NotificationIntent{{
				Recipient: models.RoleProvider,
				Type:      "dispute_raised",
				Title:     "Dispute raised",
				Message:   fmt.Sprintf("%s raised a dispute: %s", next.Buyer.Name, reason),
			}}
		},
	},
	EventResolve: {
		from: models.StatusDisputed,
		role: models.RoleBuyer,
		apply: func(next *models.Engagement, _ models.Actor, p Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			notes := strings.TrimSpace(p.Resolution)
			at := notBefore(now, next.DisputedAt)
			next.Status = models.StatusAwaitingConfirmation
			next.DisputeResolvedAt = &at
			next.DisputeResolutionNotes = notes
			fs[fieldStatus] = next.Status
			fs[fieldDisputeResolvedAt] = at
			fs[fieldDisputeResolutionNotes] = notes
			return []NotificationIntent{{
				Recipient: models.RoleProvider,
				Type:      "dispute_resolved",
				Title:     "Dispute resolved",
				Message:   fmt.Sprintf("%s resolved the dispute: %s", next.Buyer.Name, notes),
			}}
		},
	},
	EventConfirm: {
		from: models.StatusAwaitingConfirmation,
		role: models.RoleBuyer,
		apply: func(next *models.Engagement, _ models.Actor, _ Payload, now time.Time, fs models.FieldSet) []NotificationIntent {
			confirmed := notBefore(now, next.SMECompletedAt)
			released := confirmed
			next.Status = models.StatusCompleted
			next.SDPConfirmedAt = &confirmed
			next.FundsReleasedAt = &released
			fs[fieldStatus] = next.Status
			fs[fieldSDPConfirmedAt] = confirmed
			fs[fieldFundsReleasedAt] = released
			return []NotificationIntent{{
				Recipient: models.RoleProvider,
				Type:      "funds_released",
				Title:     "Engagement confirmed",
				Message:   fmt.Sprintf("%s confirmed completion. Funds of %s have been released.", next.Buyer.Name, next.Fee),
			}}
		},
	},
}

// notBefore keeps lifecycle timestamps monotonic under clock skew.
func notBefore(now time.Time, prev *time.Time) time.Time {
	if prev != nil && now.Before(*prev) {
		return *prev
	}
	return now
}

// check validates event, state and actor without touching the engagement.
func check(e *models.Engagement, event Event, actor models.Actor) (rule, error) {
	r, ok := rules[event]
	if !ok {
		return rule{}, NewUnknownEventError(event, e.Status, actor.Role)
	}
	if actor.Role != r.role {
		return rule{}, models.NewTransitionError(string(event), string(e.Status), actor.Role,
			fmt.Sprintf("only the %s may %s", r.role, event))
	}
	if !isDesignatedActor(e, actor) {
		return rule{}, models.NewTransitionError(string(event), string(e.Status), actor.Role,
			"actor is not a party to this engagement")
	}
	if e.Status != r.from {
		return rule{}, models.NewTransitionError(string(event), string(e.Status), actor.Role,
			fmt.Sprintf("cannot %s from %q", event, e.Status))
	}
	if r.guard != nil && !r.guard(e) {
		return rule{}, models.NewTransitionError(string(event), string(e.Status), actor.Role,
			fmt.Sprintf("cannot %s in the current project phase", event))
	}
	return r, nil
}

func NewUnknownEventError(event Event, from models.EngagementStatus, role models.Role) error {
	return models.NewTransitionError(string(event), string(from), role, "unknown event")
}

func isDesignatedActor(e *models.Engagement, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleProvider:
		return actor.ID != "" && actor.ID == e.Provider.ID
	case models.RoleBuyer:
		return actor.ID != "" && actor.ID == e.Buyer.ID
	}
	return false
}

func validatePayload(event Event, p Payload) error {
	switch event {
	case EventDispute:
		if strings.TrimSpace(p.Reason) == "" {
			return models.NewValidationError("disputeReasonRequired", "a dispute needs a reason")
		}
	case EventResolve:
		if strings.TrimSpace(p.Resolution) == "" {
			return models.NewValidationError("resolutionRequired", "a resolution needs notes")
		}
	}
	return nil
}

// Apply performs event on a copy of e. On error e is untouched and no outcome is produced.
func Apply(e *models.Engagement, event Event, actor models.Actor, p Payload, now time.Time) (*Outcome, error) {
	r, err := check(e, event, actor)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(event, p); err != nil {
		return nil, err
	}
	now = now.UTC()
	next := e.Clone()
	fs := models.FieldSet{}
	notify := r.apply(next, actor, p, now, fs)
	next.UpdatedAt = now
	fs[fieldUpdatedAt] = now
	return &Outcome{Event: event, Engagement: next, Fields: fs, Notify: notify}, nil
}

// Can reports whether actor may perform event on e right now.
func Can(e *models.Engagement, event Event, actor models.Actor) bool {
	_, err := check(e, event, actor)
	return err == nil
}

func CanAccept(e *models.Engagement, actor models.Actor) bool  { return Can(e, EventAccept, actor) }
func CanDecline(e *models.Engagement, actor models.Actor) bool { return Can(e, EventDecline, actor) }
func CanStart(e *models.Engagement, actor models.Actor) bool   { return Can(e, EventStart, actor) }
func CanMarkComplete(e *models.Engagement, actor models.Actor) bool {
	return Can(e, EventMarkComplete, actor)
}
func CanDispute(e *models.Engagement, actor models.Actor) bool { return Can(e, EventDispute, actor) }
func CanResolve(e *models.Engagement, actor models.Actor) bool { return Can(e, EventResolve, actor) }
func CanConfirm(e *models.Engagement, actor models.Actor) bool { return Can(e, EventConfirm, actor) }

// AvailableEvents lists every event actor may perform on e.
func AvailableEvents(e *models.Engagement, actor models.Actor) []Event {
	events := []Event{}
	for _, ev := range eventOrder {
		if Can(e, ev, actor) {
			events = append(events, ev)
		}
	}
	return events
}

// ConfirmPayment records the administrative confirmation that the payout went through.
func ConfirmPayment(e *models.Engagement, admin models.Actor, reference string, now time.Time) (*Outcome, error) {
	const event = "confirm_payment"
	if admin.Role != models.RoleAdmin {
		return nil, models.NewTransitionError(event, string(e.Status), admin.Role, "only an admin may confirm payment")
	}
	if e.Status != models.StatusCompleted {
		return nil, models.NewTransitionError(event, string(e.Status), admin.Role, "payment can only be confirmed once completed")
	}
	if e.PaymentConfirmedByAdmin {
		return nil, models.NewTransitionError(event, string(e.Status), admin.Role, "payment already confirmed")
	}
	now = notBefore(now.UTC(), e.FundsReleasedAt)
	next := e.Clone()
	next.PaymentConfirmedByAdmin = true
	next.PaymentConfirmedAt = &now
	next.PaymentConfirmedBy = admin.ID
	next.PaymentReference = strings.TrimSpace(reference)
	next.UpdatedAt = now
	fs := models.FieldSet{
		fieldPaymentConfirmed:   true,
		fieldPaymentConfirmedAt: now,
		fieldPaymentConfirmedBy: admin.ID,
		fieldPaymentReference:   next.PaymentReference,
		fieldUpdatedAt:          now,
	}
	return &Outcome{
		Event:      Event(event),
		Engagement: next,
		Fields:     fs,
		Notify: []NotificationIntent{{
			Recipient: models.RoleProvider,
			Type:      "payment_confirmed",
			Title:     "Payment confirmed",
			Message:   fmt.Sprintf("Payment of %s has been confirmed.", next.Fee),
		}},
	}, nil
}
