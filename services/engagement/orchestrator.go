package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillbridge/models"
	"skillbridge/services/payment"
	"skillbridge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultEngagementService) clock() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultEngagementService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func validateTerms(buyer models.Actor, terms models.EngagementTerms) error {
	if buyer.Role != models.RoleBuyer || buyer.ID == "" {
		return models.NewValidationError("proposerNotBuyer", "only buyers can propose engagements")
	}
	if strings.TrimSpace(terms.Provider.ID) == "" {
		return models.NewValidationError("providerRequired", "an engagement needs a provider")
	}
	if terms.Provider.ID == buyer.ID {
		return models.NewValidationError("selfEngagement", "buyer and provider must differ")
	}
	if _, err := payment.ParseFeeCents(terms.Fee); err != nil {
		return models.NewValidationError("invalidFee", err.Error())
	}
	if terms.StartDate.IsZero() || terms.EndDate.IsZero() {
		return models.NewValidationError("datesRequired", "start and end dates are required")
	}
	if terms.EndDate.Before(terms.StartDate) {
		return models.NewValidationError("invalidDates", "end date is before start date")
	}
	if strings.TrimSpace(terms.Description) == "" {
		return models.NewValidationError("descriptionRequired", "an engagement needs a description")
	}
	return nil
}

// ProposeEngagement creates a Pending engagement on behalf of a buyer.
func (s *DefaultEngagementService) ProposeEngagement(ctx context.Context, buyer models.Actor, terms models.EngagementTerms) (*models.Engagement, error) {
	if err := validateTerms(buyer, terms); err != nil {
		return nil, err
	}
	milestones := make([]models.Milestone, 0, len(terms.Milestones))
	for _, def := range terms.Milestones {
		m, err := NewMilestone(s.newID(), def)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	now := s.clock()
	e := &models.Engagement{
		ID:           s.newID(),
		Provider:     models.Party{ID: terms.Provider.ID, Name: strings.TrimSpace(terms.Provider.Name)},
		Buyer:        models.Party{ID: buyer.ID, Name: buyer.Name},
		Fee:          strings.TrimSpace(terms.Fee),
		StartDate:    terms.StartDate.UTC(),
		EndDate:      terms.EndDate.UTC(),
		Description:  strings.TrimSpace(terms.Description),
		Deliverables: strings.TrimSpace(terms.Deliverables),
		Status:       models.StatusPending,
		Milestones:   milestones,
		Documents:    []models.Document{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.Logger.Info("engagement proposed",
		zap.String("engagementId", e.ID),
		zap.String("buyerId", buyer.ID),
		zap.String("providerId", e.Provider.ID))

	s.publish(ctx, e, "propose", buyer.ID)
	s.notify(ctx, e, buyer, NotificationIntent{
		Recipient: models.RoleProvider,
		Type:      "engagement_proposed",
		Title:     "New engagement request",
		Message:   fmt.Sprintf("%s wants to engage you for %s.", e.Buyer.Name, e.Fee),
	})
	return e, nil
}

// load reads the engagement and enforces the caller's expected version, if any.
func (s *DefaultEngagementService) load(ctx context.Context, id string, ifVersion int64) (*models.Engagement, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifVersion != 0 && ifVersion != e.Version {
		return nil, fmt.Errorf("engagement %s is at version %d, caller expected %d: %w",
			id, e.Version, ifVersion, models.ErrVersionConflict)
	}
	return e, nil
}

// commit writes fields against the version next was derived from.
func (s *DefaultEngagementService) commit(ctx context.Context, base, next *models.Engagement, fields models.FieldSet) error {
	v, err := s.Repo.UpdateFields(ctx, base.ID, base.Version, fields)
	if err != nil {
		return err
	}
	next.Version = v
	return nil
}

// Transition applies a lifecycle event and performs the follow-up work the event owes.
func (s *DefaultEngagementService) Transition(ctx context.Context, engagementID string, event Event, actor models.Actor, p Payload) (*TransitionResult, error) {
	e, err := s.load(ctx, engagementID, p.IfVersion)
	if err != nil {
		return nil, err
	}
	out, err := Apply(e, event, actor, p, s.clock())
	if err != nil {
		utils.TransitionsTotal.WithLabelValues(eventLabel(event), "rejected").Inc()
		return nil, err
	}
	if err := s.commit(ctx, e, out.Engagement, out.Fields); err != nil {
		utils.TransitionsTotal.WithLabelValues(eventLabel(event), "conflict").Inc()
		return nil, err
	}
	utils.TransitionsTotal.WithLabelValues(eventLabel(event), "applied").Inc()

	next := out.Engagement
	s.Logger.Info("engagement transitioned",
		zap.String("engagementId", next.ID),
		zap.String("event", string(event)),
		zap.String("from", string(e.Status)),
		zap.String("to", string(next.Status)),
		zap.Int64("version", next.Version))

	s.publish(ctx, next, string(event), actor.ID)
	for _, intent := range out.Notify {
		s.notify(ctx, next, actor, intent)
	}

	result := &TransitionResult{Engagement: next}
	switch event {
	case EventStart:
		s.scheduleReminder(ctx, next)
	case EventConfirm:
		result.RatingPrompt = s.afterConfirm(ctx, next)
	}
	return result, nil
}

// eventLabel bounds the metric label to known events; the event name comes from the URL.
func eventLabel(event Event) string {
	if _, ok := rules[event]; ok {
		return string(event)
	}
	return "unknown"
}

func (s *DefaultEngagementService) scheduleReminder(ctx context.Context, e *models.Engagement) {
	err := s.Scheduler.ScheduleOverdueReminder(ctx, models.ReminderPayload{
		EngagementID: e.ID,
		FireDate:     e.EndDate,
	})
	if err != nil {
		utils.SideEffectFailures.WithLabelValues("reminder").Inc()
		s.Logger.Warn("failed to schedule overdue reminder", zap.String("engagementId", e.ID), zap.Error(err))
	}
}

// afterConfirm requests the payout, recomputes the provider's reputation and
// builds the rating prompt. None of these failures undo the confirmation.
func (s *DefaultEngagementService) afterConfirm(ctx context.Context, e *models.Engagement) *models.RatingPrompt {
	err := s.Scheduler.EnqueuePayout(ctx, models.PayoutPayload{
		EngagementID: e.ID,
		ProviderID:   e.Provider.ID,
		Fee:          e.Fee,
	})
	if err != nil {
		utils.SideEffectFailures.WithLabelValues("payout").Inc()
		s.Logger.Warn("failed to enqueue payout", zap.String("engagementId", e.ID), zap.Error(err))
	}

	if _, err := s.Ratings.Recompute(ctx, e.Provider.ID); err != nil {
		utils.SideEffectFailures.WithLabelValues("reputation").Inc()
		s.Logger.Warn("failed to recompute reputation", zap.String("providerId", e.Provider.ID), zap.Error(err))
	}

	prompt := &models.RatingPrompt{ProviderID: e.Provider.ID}
	existing, err := s.Ratings.LatestByRater(ctx, e.Provider.ID, e.Buyer.ID)
	if err != nil {
		s.Logger.Warn("failed to look up existing rating", zap.String("engagementId", e.ID), zap.Error(err))
		return prompt
	}
	prompt.Existing = existing
	return prompt
}

// AdvanceMilestone moves a milestone forward and, on completion, refreshes the
// stored progress from the milestone ratio.
func (s *DefaultEngagementService) AdvanceMilestone(ctx context.Context, engagementID, milestoneID string, to models.MilestoneStatus, actor models.Actor) (*models.Engagement, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	out, err := AdvanceMilestone(e, milestoneID, to, actor, s.clock())
	if err != nil {
		return nil, err
	}
	next := out.Engagement
	if to == models.MilestoneCompleted {
		next.ProgressPercentage = capProgress(MilestoneProgress(next))
		out.Fields[fieldProgress] = next.ProgressPercentage
	}
	if err := s.commit(ctx, e, next, out.Fields); err != nil {
		return nil, err
	}
	s.Logger.Info("milestone advanced",
		zap.String("engagementId", next.ID),
		zap.String("milestoneId", milestoneID),
		zap.String("status", string(to)),
		zap.Float64("ratio", out.Ratio))

	s.publish(ctx, next, "advance_milestone", actor.ID)
	if to == models.MilestoneCompleted {
		s.notify(ctx, next, actor, NotificationIntent{
			Recipient: models.RoleBuyer,
			Type:      "milestone_completed",
			Title:     "Milestone completed",
			Message:   fmt.Sprintf("%s completed milestone %q.", next.Provider.Name, out.Milestone.Title),
		})
	}
	return next, nil
}

// AddMilestone appends a milestone to an open engagement.
func (s *DefaultEngagementService) AddMilestone(ctx context.Context, engagementID string, actor models.Actor, def models.MilestoneDef) (*models.Engagement, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	out, err := AddMilestone(e, s.newID(), def, actor, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, e, out.Engagement, out.Fields); err != nil {
		return nil, err
	}
	s.publish(ctx, out.Engagement, "add_milestone", actor.ID)
	return out.Engagement, nil
}

const discardTimeout = 10 * time.Second

func documentPath(engagementID, documentID, name string) string {
	return fmt.Sprintf("engagements/%s/documents/%s/%s", engagementID, documentID, name)
}

// AttachDocument stores the file and then records it on the engagement.
// When the write fails the stored object is removed again.
func (s *DefaultEngagementService) AttachDocument(ctx context.Context, engagementID string, actor models.Actor, file models.FileMeta, requiresSignature bool, milestoneID string) (*models.Document, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if err := ValidateUpload(e, file.Name, milestoneID, actor); err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, models.NewValidationError("emptyDocument", "document has no content")
	}

	docID := s.newID()
	locator, err := s.Storage.Upload(ctx, documentPath(e.ID, docID, file.Name), file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	out, err := UploadDocument(e, DocumentUpload{
		ID:                docID,
		Name:              file.Name,
		Locator:           locator,
		RequiresSignature: requiresSignature,
		MilestoneID:       milestoneID,
	}, actor, s.clock())
	if err == nil {
		err = s.commit(ctx, e, out.Engagement, out.Fields)
	}
	if err != nil {
		s.discardUpload(ctx, e.ID, locator)
		return nil, err
	}
	s.Logger.Info("document attached",
		zap.String("engagementId", e.ID),
		zap.String("documentId", docID),
		zap.Bool("requiresSignature", requiresSignature))

	s.publish(ctx, out.Engagement, "attach_document", actor.ID)
	s.notify(ctx, out.Engagement, actor, NotificationIntent{
		Recipient: counterpart(actor.Role),
		Type:      "document_uploaded",
		Title:     "New document",
		Message:   fmt.Sprintf("%s uploaded %s.", actor.Name, out.Document.Name),
	})
	doc := out.Document
	return &doc, nil
}

// discardUpload deletes an object that was stored for a write that did not commit.
// It runs even when the request context is already cancelled.
func (s *DefaultEngagementService) discardUpload(ctx context.Context, engagementID, locator string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	if err := s.Storage.Delete(ctx, locator); err != nil {
		utils.SideEffectFailures.WithLabelValues("document_cleanup").Inc()
		s.Logger.Warn("failed to delete uncommitted document",
			zap.String("engagementId", engagementID),
			zap.String("locator", locator),
			zap.Error(err))
	}
}

// SignDocument records actor's signature. Re-signing returns the document unchanged.
func (s *DefaultEngagementService) SignDocument(ctx context.Context, engagementID, documentID string, actor models.Actor) (*models.Document, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	out, err := SignDocument(e, documentID, actor, s.clock())
	if err != nil {
		return nil, err
	}
	doc := out.Document
	if len(out.Fields) == 0 {
		return &doc, nil
	}
	if err := s.commit(ctx, e, out.Engagement, out.Fields); err != nil {
		return nil, err
	}
	s.publish(ctx, out.Engagement, "sign_document", actor.ID)
	s.notify(ctx, out.Engagement, actor, NotificationIntent{
		Recipient: counterpart(actor.Role),
		Type:      "document_signed",
		Title:     "Document signed",
		Message:   fmt.Sprintf("%s signed %s.", actor.Name, doc.Name),
	})
	return &doc, nil
}

// DocumentURL resolves a download URL for a party to the engagement.
func (s *DefaultEngagementService) DocumentURL(ctx context.Context, engagementID, documentID string, actor models.Actor) (string, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return "", err
	}
	if !canView(e, actor) {
		return "", models.ErrForbidden
	}
	i := e.DocumentIndex(documentID)
	if i < 0 {
		return "", fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
	}
	return s.Storage.ResolveDownloadURL(ctx, e.Documents[i].Locator)
}

// ConfirmPayment records that an admin verified the payout.
func (s *DefaultEngagementService) ConfirmPayment(ctx context.Context, engagementID string, admin models.Actor, reference string) (*models.Engagement, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	out, err := ConfirmPayment(e, admin, reference, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, e, out.Engagement, out.Fields); err != nil {
		return nil, err
	}
	s.Logger.Info("payment confirmed",
		zap.String("engagementId", e.ID),
		zap.String("adminId", admin.ID),
		zap.String("reference", out.Engagement.PaymentReference))
	s.publish(ctx, out.Engagement, string(out.Event), admin.ID)
	for _, intent := range out.Notify {
		s.notify(ctx, out.Engagement, admin, intent)
	}
	return out.Engagement, nil
}

func canView(e *models.Engagement, actor models.Actor) bool {
	return actor.Role == models.RoleAdmin || e.IsParty(actor.ID)
}

func (s *DefaultEngagementService) view(e *models.Engagement, actor models.Actor) EngagementView {
	return EngagementView{
		Engagement:      e,
		CurrentProgress: CurrentProgress(e, s.clock()),
		AvailableEvents: AvailableEvents(e, actor),
	}
}

// GetEngagement returns the engagement with derived progress and the events actor may perform.
func (s *DefaultEngagementService) GetEngagement(ctx context.Context, engagementID string, actor models.Actor) (*EngagementView, error) {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !canView(e, actor) {
		return nil, models.ErrForbidden
	}
	v := s.view(e, actor)
	return &v, nil
}

// ListEngagements returns every engagement actor is a party to, newest first.
func (s *DefaultEngagementService) ListEngagements(ctx context.Context, actor models.Actor) ([]EngagementView, error) {
	list, err := s.Repo.ListByParty(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	views := make([]EngagementView, 0, len(list))
	for i := range list {
		views = append(views, s.view(&list[i], actor))
	}
	return views, nil
}

// HandleOverdue runs when the end date passes. The provider is reminded only
// while the work is still running without an explicit completion.
func (s *DefaultEngagementService) HandleOverdue(ctx context.Context, engagementID string) error {
	e, err := s.Repo.GetByID(ctx, engagementID)
	if errors.Is(err, models.ErrNotFound) {
		s.Logger.Warn("overdue reminder for missing engagement", zap.String("engagementId", engagementID))
		return nil
	}
	if err != nil {
		return err
	}
	if e.Status != models.StatusInProgress || e.SMECompletedAt != nil {
		return nil
	}
	s.notify(ctx, e, models.Actor{Role: models.RoleAdmin}, NotificationIntent{
		Recipient: models.RoleProvider,
		Type:      "engagement_overdue",
		Title:     "Engagement past its end date",
		Message:   fmt.Sprintf("The end date for %q has passed. Mark the work complete when it is done.", e.Description),
	})
	return nil
}

func counterpart(role models.Role) models.Role {
	if role == models.RoleProvider {
		return models.RoleBuyer
	}
	return models.RoleProvider
}

func recipientID(e *models.Engagement, role models.Role) string {
	if role == models.RoleProvider {
		return e.Provider.ID
	}
	return e.Buyer.ID
}

// notify is fire-and-forget: failures are logged and counted, never returned.
func (s *DefaultEngagementService) notify(ctx context.Context, e *models.Engagement, actor models.Actor, intent NotificationIntent) {
	n := models.Notification{
		ID:            s.newID(),
		UserID:        recipientID(e, intent.Recipient),
		RecipientRole: intent.Recipient,
		Type:          intent.Type,
		Title:         intent.Title,
		Message:       intent.Message,
		Link:          "/engagements/" + e.ID,
		Metadata: map[string]string{
			"engagementId": e.ID,
			"status":       string(e.Status),
			"actorId":      actor.ID,
		},
		CreatedAt: s.clock(),
	}
	if err := s.Notifier.Notify(ctx, n); err != nil {
		utils.SideEffectFailures.WithLabelValues("notification").Inc()
		s.Logger.Warn("failed to enqueue notification",
			zap.String("engagementId", e.ID),
			zap.String("type", intent.Type),
			zap.Error(err))
	}
}

func (s *DefaultEngagementService) publish(ctx context.Context, e *models.Engagement, event, actorID string) {
	change := models.EngagementChange{
		EngagementID: e.ID,
		Event:        event,
		Status:       e.Status,
		Version:      e.Version,
		ActorID:      actorID,
		Parties:      []string{e.Provider.ID, e.Buyer.ID},
		At:           e.UpdatedAt,
	}
	if err := s.Feed.Publish(ctx, change); err != nil {
		utils.SideEffectFailures.WithLabelValues("feed").Inc()
		s.Logger.Warn("failed to publish engagement change", zap.String("engagementId", e.ID), zap.Error(err))
	}
}
