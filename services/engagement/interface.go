package engagement

import (
	"context"
	"time"

	engagementRepo "skillbridge/database/repository/engagement"
	"skillbridge/models"

	"go.uber.org/zap"
)

// EngagementService is the entry point handlers use for every engagement operation.
type EngagementService interface {
	ProposeEngagement(ctx context.Context, buyer models.Actor, terms models.EngagementTerms) (*models.Engagement, error)
	Transition(ctx context.Context, engagementID string, event Event, actor models.Actor, p Payload) (*TransitionResult, error)
	AdvanceMilestone(ctx context.Context, engagementID, milestoneID string, to models.MilestoneStatus, actor models.Actor) (*models.Engagement, error)
	AddMilestone(ctx context.Context, engagementID string, actor models.Actor, def models.MilestoneDef) (*models.Engagement, error)
	AttachDocument(ctx context.Context, engagementID string, actor models.Actor, file models.FileMeta, requiresSignature bool, milestoneID string) (*models.Document, error)
	SignDocument(ctx context.Context, engagementID, documentID string, actor models.Actor) (*models.Document, error)
	DocumentURL(ctx context.Context, engagementID, documentID string, actor models.Actor) (string, error)
	ConfirmPayment(ctx context.Context, engagementID string, admin models.Actor, reference string) (*models.Engagement, error)
	GetEngagement(ctx context.Context, engagementID string, actor models.Actor) (*EngagementView, error)
	ListEngagements(ctx context.Context, actor models.Actor) ([]EngagementView, error)
	HandleOverdue(ctx context.Context, engagementID string) error
}

// Ratings is the part of the rating service the orchestrator drives.
type Ratings interface {
	LatestByRater(ctx context.Context, providerID, raterID string) (*models.Rating, error)
	Recompute(ctx context.Context, providerID string) (*models.Reputation, error)
}

// Notifier hands a notification off for asynchronous delivery.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Scheduler enqueues delayed and background work tied to an engagement.
type Scheduler interface {
	ScheduleOverdueReminder(ctx context.Context, p models.ReminderPayload) error
	EnqueuePayout(ctx context.Context, p models.PayoutPayload) error
}

// ChangePublisher broadcasts committed changes to subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, change models.EngagementChange) error
}

// DocumentStore is the object storage collaborator.
type DocumentStore interface {
	Upload(ctx context.Context, path string, file models.FileMeta) (string, error)
	ResolveDownloadURL(ctx context.Context, locator string) (string, error)
	Delete(ctx context.Context, locator string) error
}

// TransitionResult is the committed engagement plus, after confirm, the rating prompt.
type TransitionResult struct {
	Engagement   *models.Engagement   `json:"engagement"`
	RatingPrompt *models.RatingPrompt `json:"ratingPrompt,omitempty"`
}

// EngagementView is an engagement as seen by one actor.
type EngagementView struct {
	*models.Engagement
	CurrentProgress int     `json:"currentProgress"`
	AvailableEvents []Event `json:"availableEvents"`
}

// DefaultEngagementService implements EngagementService.
type DefaultEngagementService struct {
	Repo      engagementRepo.EngagementRepository
	Ratings   Ratings
	Storage   DocumentStore
	Notifier  Notifier
	Scheduler Scheduler
	Feed      ChangePublisher
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string
}
