package rating

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillbridge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRatings struct {
	records []models.Rating
	// onList runs once, after ListByProvider has read its snapshot.
	onList func()
}

func (m *memRatings) Append(_ context.Context, r *models.Rating) error {
	m.records = append(m.records, *r)
	return nil
}

func (m *memRatings) ListByProvider(_ context.Context, providerID string) ([]models.Rating, error) {
	var out []models.Rating
	for _, r := range m.records {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	if hook := m.onList; hook != nil {
		m.onList = nil
		hook()
	}
	return out, nil
}

func (m *memRatings) ListByRater(_ context.Context, providerID, raterID string) ([]models.Rating, error) {
	var out []models.Rating
	for _, r := range m.records {
		if r.ProviderID == providerID && r.RaterID == raterID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memProviders struct {
	providers map[string]*models.Provider
	reads     int
}

func (m *memProviders) GetByID(_ context.Context, id string) (*models.Provider, error) {
	m.reads++
	p, ok := m.providers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memProviders) UpdateReputation(_ context.Context, rep models.Reputation, seq int64) (bool, error) {
	p, ok := m.providers[rep.ProviderID]
	if !ok {
		return false, models.ErrNotFound
	}
	if seq <= p.ReputationSeq {
		return false, nil
	}
	p.Rating = rep.Score
	p.ReviewCount = rep.ReviewCount
	p.ReputationSeq = seq
	return true, nil
}

type memCache struct {
	entries map[string]models.Reputation
	seqs    map[string]int64
	getErr  error
}

func (c *memCache) Get(_ context.Context, providerID string) (*models.Reputation, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	rep, ok := c.entries[providerID]
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

func (c *memCache) Set(_ context.Context, rep models.Reputation, seq int64) error {
	if held, ok := c.seqs[rep.ProviderID]; ok && held > seq {
		return nil
	}
	c.entries[rep.ProviderID] = rep
	c.seqs[rep.ProviderID] = seq
	return nil
}

var (
	buyerA = models.Actor{ID: "sdp-a", Name: "Buyer A", Role: models.RoleBuyer}
	buyerB = models.Actor{ID: "sdp-b", Name: "Buyer B", Role: models.RoleBuyer}
)

func newTestService() (*DefaultRatingService, *memRatings, *memProviders, *memCache, *time.Time) {
	ratings := &memRatings{}
	providers := &memProviders{providers: map[string]*models.Provider{
		"sme-1": {ID: "sme-1", Name: "Acme Consulting"},
	}}
	cache := &memCache{entries: map[string]models.Reputation{}, seqs: map[string]int64{}}
	now := t1
	svc := &DefaultRatingService{
		Ratings:   ratings,
		Providers: providers,
		Cache:     cache,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return now },
	}
	return svc, ratings, providers, cache, &now
}

func TestSubmitRating_ReRatingReplacesPreviousScore(t *testing.T) {
	svc, ratings, providers, cache, now := newTestService()
	ctx := context.Background()

	rep, err := svc.SubmitRating(ctx, "sme-1", buyerA, 5, "great work")
	require.NoError(t, err)
	assert.Equal(t, models.Reputation{ProviderID: "sme-1", Score: 5, ReviewCount: 1}, *rep)

	*now = now.Add(time.Hour)
	_, err = svc.SubmitRating(ctx, "sme-1", buyerA, 3, "changed my mind")
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	rep, err = svc.SubmitRating(ctx, "sme-1", buyerB, 4, "")
	require.NoError(t, err)
	assert.Equal(t, models.Reputation{ProviderID: "sme-1", Score: 3.5, ReviewCount: 2}, *rep)

	require.Len(t, ratings.records, 3)
	assert.Equal(t, *ratings.records[0].CreatedAt, *ratings.records[1].CreatedAt, "re-rating keeps the original creation time")
	assert.True(t, ratings.records[1].UpdatedAt.After(*ratings.records[0].UpdatedAt))

	assert.Equal(t, 3.5, providers.providers["sme-1"].Rating)
	assert.Equal(t, 2, providers.providers["sme-1"].ReviewCount)
	assert.Equal(t, *rep, cache.entries["sme-1"])
}

func TestSubmitRating_ReRatingAtSameInstantReplacesScore(t *testing.T) {
	svc, ratings, providers, _, now := newTestService()
	ctx := context.Background()

	_, err := svc.SubmitRating(ctx, "sme-1", buyerA, 5, "")
	require.NoError(t, err)
	rep, err := svc.SubmitRating(ctx, "sme-1", buyerA, 2, "")
	require.NoError(t, err)
	assert.Equal(t, models.Reputation{ProviderID: "sme-1", Score: 2, ReviewCount: 1}, *rep)
	assert.Equal(t, 2.0, providers.providers["sme-1"].Rating)

	// A node whose clock runs behind still supersedes the latest record.
	*now = t1.Add(-time.Hour)
	rep, err = svc.SubmitRating(ctx, "sme-1", buyerA, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, rep.Score)

	require.Len(t, ratings.records, 3)
	assert.Equal(t, t1, *ratings.records[1].CreatedAt)
	assert.Equal(t, t1.Add(time.Millisecond), *ratings.records[1].UpdatedAt)
	assert.Equal(t, t1.Add(2*time.Millisecond), *ratings.records[2].UpdatedAt)
}

func TestSubmitRating_SubMillisecondClockIsTruncated(t *testing.T) {
	svc, ratings, _, _, now := newTestService()
	*now = t1.Add(1500 * time.Microsecond)

	_, err := svc.SubmitRating(context.Background(), "sme-1", buyerA, 3, "")
	require.NoError(t, err)
	require.Len(t, ratings.records, 1)
	assert.Equal(t, t1.Add(time.Millisecond), *ratings.records[0].UpdatedAt)
}

func TestSubmitRating_StaleRecomputeDoesNotOverwriteNewerReputation(t *testing.T) {
	svc, ratings, providers, cache, _ := newTestService()
	ctx := context.Background()

	// Buyer B submits and recomputes while buyer A's recompute holds a
	// snapshot that only contains A's rating.
	var fromB *models.Reputation
	ratings.onList = func() {
		var err error
		fromB, err = svc.SubmitRating(ctx, "sme-1", buyerB, 1, "")
		require.NoError(t, err)
	}
	fromA, err := svc.SubmitRating(ctx, "sme-1", buyerA, 5, "")
	require.NoError(t, err)

	want := models.Reputation{ProviderID: "sme-1", Score: 3, ReviewCount: 2}
	require.NotNil(t, fromB)
	assert.Equal(t, want, *fromB)
	assert.Equal(t, want, *fromA, "the stale recompute reports the stored projection")
	assert.Equal(t, 3.0, providers.providers["sme-1"].Rating)
	assert.Equal(t, 2, providers.providers["sme-1"].ReviewCount)
	assert.Equal(t, int64(2), providers.providers["sme-1"].ReputationSeq)
	assert.Equal(t, want, cache.entries["sme-1"])
}

func TestSubmitRating_Validation(t *testing.T) {
	tests := []struct {
		name       string
		providerID string
		rater      models.Actor
		score      int
		comment    string
		code       string
	}{
		{"missing provider", " ", buyerA, 4, "", "providerRequired"},
		{"provider cannot rate", "sme-1", models.Actor{ID: "sme-2", Role: models.RoleProvider}, 4, "", "raterNotBuyer"},
		{"rater without id", "sme-1", models.Actor{Role: models.RoleBuyer}, 4, "", "invalidRater"},
		{"score too low", "sme-1", buyerA, 0, "", "invalidScore"},
		{"score too high", "sme-1", buyerA, 6, "", "invalidScore"},
		{"comment too long", "sme-1", buyerA, 4, string(make([]byte, maxCommentLength+1)), "commentTooLong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ratings, _, _, _ := newTestService()
			_, err := svc.SubmitRating(context.Background(), tt.providerID, tt.rater, tt.score, tt.comment)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
			assert.Empty(t, ratings.records)
		})
	}
}

func TestSubmitRating_UnknownProvider(t *testing.T) {
	svc, ratings, _, _, _ := newTestService()
	_, err := svc.SubmitRating(context.Background(), "sme-404", buyerA, 4, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, ratings.records)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	svc, ratings, _, _, _ := newTestService()
	ratings.records = []models.Rating{
		{ID: "1", ProviderID: "sme-1", RaterID: "a", Score: 2, CreatedAt: at(0)},
		{ID: "2", ProviderID: "sme-1", RaterID: "b", Score: 5, CreatedAt: at(0)},
		{ID: "3", ProviderID: "sme-2", RaterID: "a", Score: 1, CreatedAt: at(0)},
	}
	first, err := svc.Recompute(context.Background(), "sme-1")
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), "sme-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 3.5, first.Score)
	assert.Equal(t, 2, first.ReviewCount)
}

func TestGetReputation_CacheAside(t *testing.T) {
	svc, _, providers, cache, _ := newTestService()
	providers.providers["sme-1"].Rating = 4.2
	providers.providers["sme-1"].ReviewCount = 7

	rep, err := svc.GetReputation(context.Background(), "sme-1")
	require.NoError(t, err)
	assert.Equal(t, models.Reputation{ProviderID: "sme-1", Score: 4.2, ReviewCount: 7}, *rep)
	assert.Equal(t, 1, providers.reads)
	assert.Contains(t, cache.entries, "sme-1")

	_, err = svc.GetReputation(context.Background(), "sme-1")
	require.NoError(t, err)
	assert.Equal(t, 1, providers.reads, "second read is served from cache")

	cache.getErr = errors.New("redis down")
	rep, err = svc.GetReputation(context.Background(), "sme-1")
	require.NoError(t, err)
	assert.Equal(t, 4.2, rep.Score)
	assert.Equal(t, 2, providers.reads)
}

func TestLatestByRater(t *testing.T) {
	svc, ratings, _, _, _ := newTestService()

	r, err := svc.LatestByRater(context.Background(), "sme-1", buyerA.ID)
	require.NoError(t, err)
	assert.Nil(t, r)

	ratings.records = []models.Rating{
		{ID: "1", ProviderID: "sme-1", RaterID: buyerA.ID, Score: 2, CreatedAt: at(0)},
		{ID: "2", ProviderID: "sme-1", RaterID: buyerA.ID, Score: 4, CreatedAt: at(0), UpdatedAt: at(time.Hour)},
	}
	r, err = svc.LatestByRater(context.Background(), "sme-1", buyerA.ID)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "2", r.ID)
}
