package engagement

import (
	"testing"
	"time"

	"skillbridge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_OnlyTableTransitionsAreLegal(t *testing.T) {
	type key struct {
		phase string
		event Event
		actor string
	}
	legal := map[key]models.EngagementStatus{
		{"pending", EventAccept, "sme"}:       models.StatusInProgress,
		{"pending", EventDecline, "sme"}:      models.StatusCancelled,
		{"accepted", EventStart, "sme"}:       models.StatusInProgress,
		{"started", EventMarkComplete, "sme"}: models.StatusAwaitingConfirmation,
		{"awaiting", EventDispute, "sdp"}:     models.StatusDisputed,
		{"disputed", EventResolve, "sdp"}:     models.StatusAwaitingConfirmation,
		{"awaiting", EventConfirm, "sdp"}:     models.StatusCompleted,
	}
	actors := map[string]models.Actor{
		"sme":      sme,
		"sdp":      sdp,
		"otherSME": otherSME,
		"otherSDP": otherSDP,
		"admin":    admin,
	}
	phases := []string{"pending", "accepted", "started", "awaiting", "disputed", "completed", "cancelled"}
	events := append([]Event{"archive"}, eventOrder...)
	payload := Payload{Reason: "late delivery", Resolution: "appendix delivered"}

	for _, phase := range phases {
		for _, ev := range events {
			for name, actor := range actors {
				e := fixture(phase)
				before := e.Clone()
				out, err := Apply(e, ev, actor, payload, t0.Add(7*24*time.Hour))

				want, ok := legal[key{phase, ev, name}]
				if ok {
					require.NoError(t, err, "%s/%s/%s", phase, ev, name)
					assert.Equal(t, want, out.Engagement.Status, "%s/%s/%s", phase, ev, name)
				} else {
					require.Error(t, err, "%s/%s/%s", phase, ev, name)
					assert.True(t, models.IsTransition(err), "%s/%s/%s: %v", phase, ev, name, err)
					assert.Nil(t, out)
				}
				assert.Equal(t, before, e, "input must never be mutated")
			}
		}
	}
}

func TestApply_DisputeRoundTrip(t *testing.T) {
	e := fixture("awaiting")
	now := t0.Add(6 * 24 * time.Hour)

	out, err := Apply(e, EventDispute, sdp, Payload{Reason: "report incomplete"}, now)
	require.NoError(t, err)
	e = out.Engagement
	assert.Equal(t, models.StatusDisputed, e.Status)
	assert.Equal(t, sdp.ID, e.DisputedBy)
	require.Len(t, out.Notify, 1)
	assert.Equal(t, models.RoleProvider, out.Notify[0].Recipient)

	_, err = Apply(e, EventConfirm, sdp, Payload{}, now.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, models.IsTransition(err))

	out, err = Apply(e, EventResolve, sdp, Payload{Resolution: "appendix added"}, now.Add(2*time.Hour))
	require.NoError(t, err)
	e = out.Engagement
	assert.Equal(t, models.StatusAwaitingConfirmation, e.Status)
	assert.Equal(t, "appendix added", e.DisputeResolutionNotes)
	require.Len(t, out.Notify, 1)
	assert.Equal(t, models.RoleProvider, out.Notify[0].Recipient)

	out, err = Apply(e, EventConfirm, sdp, Payload{}, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, out.Engagement.Status)
	assert.NotNil(t, out.Engagement.SDPConfirmedAt)
	assert.NotNil(t, out.Engagement.FundsReleasedAt)
}

func TestApply_SecondDisputeClearsPreviousResolution(t *testing.T) {
	e := fixture("awaiting")
	e.DisputeResolvedAt = tp(t0.Add(4 * 24 * time.Hour))
	e.DisputeResolutionNotes = "first round settled"

	out, err := Apply(e, EventDispute, sdp, Payload{Reason: "still wrong"}, t0.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, out.Engagement.DisputeResolvedAt)
	assert.Empty(t, out.Engagement.DisputeResolutionNotes)
	assert.Contains(t, out.Fields, fieldDisputeResolvedAt)
	assert.Nil(t, out.Fields[fieldDisputeResolvedAt])
}

func TestApply_RequiresText(t *testing.T) {
	tests := []struct {
		name  string
		phase string
		event Event
		p     Payload
		code  string
	}{
		{"empty dispute reason", "awaiting", EventDispute, Payload{Reason: "   "}, "disputeReasonRequired"},
		{"empty resolution", "disputed", EventResolve, Payload{}, "resolutionRequired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(fixture(tt.phase), tt.event, sdp, tt.p, t0)
			require.Error(t, err)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
		})
	}
}

func TestApply_TimestampsStayMonotonicUnderClockSkew(t *testing.T) {
	e := fixture("accepted")
	start := t0.Add(48 * time.Hour)

	out, err := Apply(e, EventStart, sme, Payload{}, start)
	require.NoError(t, err)
	// The provider's clock runs behind the one that started the project.
	out, err = Apply(out.Engagement, EventMarkComplete, sme, Payload{}, start.Add(-time.Hour))
	require.NoError(t, err)
	out, err = Apply(out.Engagement, EventConfirm, sdp, Payload{}, start.Add(-2*time.Hour))
	require.NoError(t, err)

	done := out.Engagement
	require.NotNil(t, done.ProjectStartedAt)
	require.NotNil(t, done.SMECompletedAt)
	require.NotNil(t, done.SDPConfirmedAt)
	require.NotNil(t, done.FundsReleasedAt)
	assert.False(t, done.SMECompletedAt.Before(*done.ProjectStartedAt))
	assert.False(t, done.SDPConfirmedAt.Before(*done.SMECompletedAt))
	assert.False(t, done.FundsReleasedAt.Before(*done.SDPConfirmedAt))
}

func TestApply_FieldsListOnlyWhatChanged(t *testing.T) {
	out, err := Apply(fixture("pending"), EventAccept, sme, Payload{}, t0)
	require.NoError(t, err)
	assert.Equal(t, models.FieldSet{
		fieldStatus:    models.StatusInProgress,
		fieldUpdatedAt: t0,
	}, out.Fields)

	out, err = Apply(fixture("accepted"), EventStart, sme, Payload{}, t0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Fields[fieldProgress])
	assert.Equal(t, t0, out.Fields[fieldProjectStartedAt])
	assert.NotContains(t, out.Fields, fieldStatus)
}

func TestApply_DeclineReasonIsOptional(t *testing.T) {
	out, err := Apply(fixture("pending"), EventDecline, sme, Payload{}, t0)
	require.NoError(t, err)
	assert.Empty(t, out.Engagement.DeclineReason)
	assert.NotContains(t, out.Fields, fieldDeclineReason)

	out, err = Apply(fixture("pending"), EventDecline, sme, Payload{Reason: "fully booked"}, t0)
	require.NoError(t, err)
	assert.Equal(t, "fully booked", out.Engagement.DeclineReason)
}

func TestAvailableEvents(t *testing.T) {
	tests := []struct {
		phase string
		actor models.Actor
		want  []Event
	}{
		{"pending", sme, []Event{EventAccept, EventDecline}},
		{"pending", sdp, []Event{}},
		{"accepted", sme, []Event{EventStart}},
		{"started", sme, []Event{EventMarkComplete}},
		{"awaiting", sdp, []Event{EventDispute, EventConfirm}},
		{"awaiting", otherSDP, []Event{}},
		{"disputed", sdp, []Event{EventResolve}},
		{"completed", sdp, []Event{}},
	}
	for _, tt := range tests {
		t.Run(tt.phase+"/"+tt.actor.ID, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableEvents(fixture(tt.phase), tt.actor))
		})
	}
	assert.True(t, CanConfirm(fixture("awaiting"), sdp))
	assert.False(t, CanConfirm(fixture("disputed"), sdp))
	assert.True(t, CanStart(fixture("accepted"), sme))
	assert.False(t, CanStart(fixture("started"), sme))
}

func TestConfirmPayment(t *testing.T) {
	out, err := ConfirmPayment(fixture("completed"), admin, " TX-991 ", t0.Add(8*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, out.Engagement.PaymentConfirmedByAdmin)
	assert.Equal(t, "TX-991", out.Engagement.PaymentReference)
	assert.Equal(t, admin.ID, out.Engagement.PaymentConfirmedBy)

	_, err = ConfirmPayment(out.Engagement, admin, "TX-992", t0.Add(9*24*time.Hour))
	assert.True(t, models.IsTransition(err))

	_, err = ConfirmPayment(fixture("awaiting"), admin, "TX-1", t0)
	assert.True(t, models.IsTransition(err))

	_, err = ConfirmPayment(fixture("completed"), sdp, "TX-1", t0)
	assert.True(t, models.IsTransition(err))
}
