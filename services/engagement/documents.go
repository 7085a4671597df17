package engagement

import (
	"fmt"
	"strings"
	"time"

	"skillbridge/models"
)

// DocumentUpload is the metadata for a file already placed in object storage.
type DocumentUpload struct {
	ID                string
	Name              string
	Locator           string
	RequiresSignature bool
	MilestoneID       string
}

// DocumentOutcome is the result of a document operation. Fields is empty when
// nothing changed.
type DocumentOutcome struct {
	Engagement *models.Engagement
	Document   models.Document
	Fields     models.FieldSet
}

func checkDocumentActor(e *models.Engagement, event string, actor models.Actor) error {
	if !e.IsParty(actor.ID) {
		return models.NewTransitionError(event, string(e.Status), actor.Role, "actor is not a party to this engagement")
	}
	if e.Status == models.StatusCancelled {
		return models.NewTransitionError(event, string(e.Status), actor.Role, "engagement is cancelled")
	}
	return nil
}

// ValidateUpload checks an upload before any bytes reach storage.
func ValidateUpload(e *models.Engagement, name, milestoneID string, actor models.Actor) error {
	if err := checkDocumentActor(e, "attach_document", actor); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("documentNameRequired", "a document needs a name")
	}
	if milestoneID != "" && e.MilestoneIndex(milestoneID) < 0 {
		return models.NewValidationError("milestoneNotFound", fmt.Sprintf("milestone %s not found", milestoneID))
	}
	return nil
}

// UploadDocument appends a document record and back-links its milestone.
// Documents that need no signature are usable immediately.
func UploadDocument(e *models.Engagement, up DocumentUpload, actor models.Actor, now time.Time) (*DocumentOutcome, error) {
	if err := ValidateUpload(e, up.Name, up.MilestoneID, actor); err != nil {
		return nil, err
	}
	if up.Locator == "" {
		return nil, models.NewValidationError("documentLocatorRequired", "a document needs a storage locator")
	}
	now = now.UTC()
	doc := models.Document{
		ID:                up.ID,
		Name:              strings.TrimSpace(up.Name),
		Locator:           up.Locator,
		UploadedBy:        actor.ID,
		UploadedByName:    actor.Name,
		UploadedAt:        now,
		Type:              models.DocumentTypeGeneral,
		RequiresSignature: up.RequiresSignature,
		Status:            models.DocumentApproved,
		SignedBy:          []string{},
		SignedByNames:     []string{},
	}
	if up.RequiresSignature {
		doc.Status = models.DocumentUploaded
	}

	next := e.Clone()
	fs := models.FieldSet{}
	if up.MilestoneID != "" {
		doc.Type = models.DocumentTypeMilestone
		doc.MilestoneID = up.MilestoneID
		mi := next.MilestoneIndex(up.MilestoneID)
		next.Milestones[mi].DocumentID = doc.ID
		fs[milestoneField(mi, "documentId")] = doc.ID
	}
	fs[documentSlot(len(next.Documents))] = doc
	next.Documents = append(next.Documents, doc)
	next.UpdatedAt = now
	fs[fieldUpdatedAt] = now
	return &DocumentOutcome{Engagement: next, Document: doc, Fields: fs}, nil
}

// SignDocument adds actor to the document's signers. Signing twice is a no-op.
// The first signature flips the status to signed.
func SignDocument(e *models.Engagement, documentID string, actor models.Actor, now time.Time) (*DocumentOutcome, error) {
	if err := checkDocumentActor(e, "sign_document", actor); err != nil {
		return nil, err
	}
	i := e.DocumentIndex(documentID)
	if i < 0 {
		return nil, models.NewValidationError("documentNotFound", fmt.Sprintf("document %s not found", documentID))
	}
	if !e.Documents[i].RequiresSignature {
		return nil, models.NewValidationError("signatureNotRequired", "document does not require a signature")
	}
	if e.Documents[i].HasSigner(actor.ID) {
		return &DocumentOutcome{Engagement: e, Document: e.Documents[i], Fields: models.FieldSet{}}, nil
	}

	now = now.UTC()
	next := e.Clone()
	d := &next.Documents[i]
	d.SignedBy = append(d.SignedBy, actor.ID)
	d.SignedByNames = append(d.SignedByNames, actor.Name)
	d.Status = models.DocumentSigned
	d.SignedAt = &now
	next.UpdatedAt = now
	return &DocumentOutcome{
		Engagement: next,
		Document:   *d,
		Fields: models.FieldSet{
			documentField(i, "signedBy"):      d.SignedBy,
			documentField(i, "signedByNames"): d.SignedByNames,
			documentField(i, "status"):        d.Status,
			documentField(i, "signedAt"):      now,
			fieldUpdatedAt:                    now,
		},
	}, nil
}
