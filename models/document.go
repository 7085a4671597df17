package models

import "time"

type DocumentType string

const (
	DocumentTypeMilestone DocumentType = "milestone"
	DocumentTypeGeneral   DocumentType = "general"
)

type DocumentStatus string

const (
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentApproved DocumentStatus = "approved"
	DocumentSigned   DocumentStatus = "signed"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploaded, DocumentApproved, DocumentSigned:
		return true
	}
	return false
}

// Document is uploaded-file metadata attached to an engagement, optionally to a milestone.
type Document struct {
	ID                string         `bson:"id" json:"id"`
	Name              string         `bson:"name" json:"name"`
	Locator           string         `bson:"locator" json:"locator"`
	UploadedBy        string         `bson:"uploadedBy" json:"uploadedBy"`
	UploadedByName    string         `bson:"uploadedByName" json:"uploadedByName"`
	UploadedAt        time.Time      `bson:"uploadedAt" json:"uploadedAt"`
	Type              DocumentType   `bson:"type" json:"type"`
	MilestoneID       string         `bson:"milestoneId,omitempty" json:"milestoneId,omitempty"`
	RequiresSignature bool           `bson:"requiresSignature" json:"requiresSignature"`
	Status            DocumentStatus `bson:"status" json:"status"`
	SignedBy          []string       `bson:"signedBy" json:"signedBy"`
	SignedByNames     []string       `bson:"signedByNames" json:"signedByNames"`
	SignedAt          *time.Time     `bson:"signedAt,omitempty" json:"signedAt,omitempty"`
}

// HasSigner reports whether partyID already signed.
func (d *Document) HasSigner(partyID string) bool {
	for _, id := range d.SignedBy {
		if id == partyID {
			return true
		}
	}
	return false
}

// FileMeta describes an uploaded file before it is stored.
type FileMeta struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}
