package engagement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/bson"
)

type update struct {
	id      string
	version int64
	fields  models.FieldSet
}

// memRepo keeps engagements in memory and enforces the stored version on writes.
// Writes apply the dotted field paths to the bson form of the stored engagement,
// the way $set does.
type memRepo struct {
	mu      sync.Mutex
	items   map[string]*models.Engagement
	created []*models.Engagement
	updates []update
}

func newMemRepo(es ...*models.Engagement) *memRepo {
	r := &memRepo{items: map[string]*models.Engagement{}}
	for _, e := range es {
		r.items[e.ID] = e.Clone()
	}
	return r
}

func (r *memRepo) Create(_ context.Context, e *models.Engagement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[e.ID] = e.Clone()
	r.created = append(r.created, e.Clone())
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("engagement %s: %w", id, models.ErrNotFound)
	}
	return e.Clone(), nil
}

func (r *memRepo) UpdateFields(_ context.Context, id string, expected int64, fields models.FieldSet) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	if e.Version != expected {
		return 0, models.ErrVersionConflict
	}
	next, err := applyFields(e, fields)
	if err != nil {
		return 0, err
	}
	next.Version = e.Version + 1
	r.items[id] = next
	r.updates = append(r.updates, update{id: id, version: expected, fields: fields})
	return next.Version, nil
}

func applyFields(e *models.Engagement, fields models.FieldSet) (*models.Engagement, error) {
	raw, err := bson.Marshal(e)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for path, v := range fields {
		if _, err := setPath(doc, strings.Split(path, "."), v); err != nil {
			return nil, fmt.Errorf("set %s: %w", path, err)
		}
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	var next models.Engagement
	if err := bson.Unmarshal(raw, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func setPath(node interface{}, path []string, v interface{}) (interface{}, error) {
	if len(path) == 0 {
		return v, nil
	}
	switch n := node.(type) {
	case nil:
		return setPath(bson.M{}, path, v)
	case bson.D:
		return setPath(n.Map(), path, v)
	case bson.M:
		child, err := setPath(n[path[0]], path[1:], v)
		if err != nil {
			return nil, err
		}
		n[path[0]] = child
		return n, nil
	case bson.A:
		i, err := strconv.Atoi(path[0])
		if err != nil || i < 0 || i > len(n) {
			return nil, fmt.Errorf("bad array index %q for length %d", path[0], len(n))
		}
		if i == len(n) {
			n = append(n, nil)
		}
		child, err := setPath(n[i], path[1:], v)
		if err != nil {
			return nil, err
		}
		n[i] = child
		return n, nil
	}
	return nil, fmt.Errorf("cannot descend into %T at %q", node, path[0])
}

func (r *memRepo) ListByParty(_ context.Context, partyID string) ([]models.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Engagement
	for _, e := range r.items {
		if e.IsParty(partyID) {
			out = append(out, *e.Clone())
		}
	}
	return out, nil
}

type fakeRatings struct {
	existing     *models.Rating
	recomputed   []string
	recomputeErr error
	lookupErr    error
}

func (f *fakeRatings) LatestByRater(_ context.Context, providerID, raterID string) (*models.Rating, error) {
	return f.existing, f.lookupErr
}

func (f *fakeRatings) Recompute(_ context.Context, providerID string) (*models.Reputation, error) {
	f.recomputed = append(f.recomputed, providerID)
	if f.recomputeErr != nil {
		return nil, f.recomputeErr
	}
	return &models.Reputation{ProviderID: providerID, Score: 4.5, ReviewCount: 2}, nil
}

type fakeNotifier struct {
	sent []models.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeScheduler struct {
	reminders []models.ReminderPayload
	payouts   []models.PayoutPayload
	err       error
}

func (f *fakeScheduler) ScheduleOverdueReminder(_ context.Context, p models.ReminderPayload) error {
	f.reminders = append(f.reminders, p)
	return f.err
}

func (f *fakeScheduler) EnqueuePayout(_ context.Context, p models.PayoutPayload) error {
	f.payouts = append(f.payouts, p)
	return f.err
}

type fakeFeed struct {
	changes []models.EngagementChange
}

func (f *fakeFeed) Publish(_ context.Context, c models.EngagementChange) error {
	f.changes = append(f.changes, c)
	return nil
}

type fakeStore struct {
	paths     []string
	files     []models.FileMeta
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeStore) Upload(_ context.Context, path string, file models.FileMeta) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	f.files = append(f.files, file)
	return "gs://skillbridge-docs/" + path, nil
}

func (f *fakeStore) Delete(_ context.Context, locator string) error {
	f.deleted = append(f.deleted, locator)
	return f.deleteErr
}

func (f *fakeStore) ResolveDownloadURL(_ context.Context, locator string) (string, error) {
	if locator == "" {
		return "", errors.New("empty locator")
	}
	return "https://signed.example/" + locator, nil
}
