package notification

import (
	"context"
	"errors"
	"testing"

	"skillbridge/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memInbox struct {
	entries []models.Notification
	limit   int64
}

func (m *memInbox) Insert(_ context.Context, n *models.Notification) error {
	for _, e := range m.entries {
		if e.ID == n.ID {
			return nil
		}
	}
	m.entries = append(m.entries, *n)
	return nil
}

func (m *memInbox) ListByUser(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	m.limit = limit
	return m.entries, nil
}

func (m *memInbox) MarkRead(context.Context, string, string) error { return nil }

type tokens map[string]string

func (t tokens) GetByID(_ context.Context, id string) (*models.User, error) {
	tok, ok := t[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.User{ID: id, FCMToken: tok}, nil
}

type providerTokens map[string]string

func (t providerTokens) GetByID(_ context.Context, id string) (*models.Provider, error) {
	tok, ok := t[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.Provider{ID: id, FCMToken: tok}, nil
}

func (t providerTokens) UpdateReputation(context.Context, models.Reputation, int64) (bool, error) {
	return true, nil
}

type fakePush struct {
	sent []*messaging.Message
	err  error
}

func (f *fakePush) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/skillbridge/messages/1", f.err
}

func newService() (*DefaultNotificationService, *memInbox, *fakePush) {
	inbox := &memInbox{}
	push := &fakePush{}
	return &DefaultNotificationService{
		Inboxes:   inbox,
		Users:     tokens{"sdp-1": "buyer-device", "sdp-2": ""},
		Providers: providerTokens{"sme-1": "provider-device"},
		Push:      push,
		Logger:    zap.NewNop(),
	}, inbox, push
}

func TestDeliver_PushesToRecipientDevice(t *testing.T) {
	svc, inbox, push := newService()
	n := models.Notification{
		ID: "n-1", UserID: "sme-1", RecipientRole: models.RoleProvider,
		Type: "funds_released", Title: "Engagement confirmed", Message: "Funds released.",
		Link: "/engagements/eng-1", Metadata: map[string]string{"engagementId": "eng-1"},
	}

	require.NoError(t, svc.Deliver(context.Background(), n))
	require.Len(t, inbox.entries, 1)
	require.Len(t, push.sent, 1)
	msg := push.sent[0]
	assert.Equal(t, "provider-device", msg.Token)
	assert.Equal(t, "Engagement confirmed", msg.Notification.Title)
	assert.Equal(t, "eng-1", msg.Data["engagementId"])
	assert.Equal(t, "funds_released", msg.Data["type"])
	assert.Equal(t, "engagements", msg.Android.Notification.ChannelID)

	// A retried task keeps a single inbox entry.
	require.NoError(t, svc.Deliver(context.Background(), n))
	assert.Len(t, inbox.entries, 1)
}

func TestDeliver_InboxOnlyWithoutToken(t *testing.T) {
	svc, inbox, push := newService()
	require.NoError(t, svc.Deliver(context.Background(), models.Notification{ID: "n-2", UserID: "sdp-2", RecipientRole: models.RoleBuyer}))
	assert.Len(t, inbox.entries, 1)
	assert.Empty(t, push.sent)
}

func TestDeliver_Errors(t *testing.T) {
	svc, inbox, push := newService()

	assert.Error(t, svc.Deliver(context.Background(), models.Notification{ID: "n-3"}))
	assert.Empty(t, inbox.entries)

	err := svc.Deliver(context.Background(), models.Notification{ID: "n-4", UserID: "sdp-404", RecipientRole: models.RoleBuyer})
	assert.ErrorIs(t, err, models.ErrNotFound)

	push.err = errors.New("registration-token-not-registered")
	err = svc.Deliver(context.Background(), models.Notification{ID: "n-5", UserID: "sdp-1", RecipientRole: models.RoleBuyer})
	assert.ErrorContains(t, err, "registration-token-not-registered")
}

func TestInbox_ClampsLimit(t *testing.T) {
	svc, inbox, _ := newService()
	for _, tt := range []struct{ in, want int64 }{{0, 50}, {500, 50}, {20, 20}} {
		_, err := svc.Inbox(context.Background(), "sdp-1", tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, inbox.limit)
	}
}
