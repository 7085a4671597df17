package engagementRepo

import (
	"context"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// EngagementRepository is the persistence collaborator for engagements.
// Milestones and documents are embedded and written through UpdateFields.
type EngagementRepository interface {
	// Create inserts a new engagement.
	Create(ctx context.Context, e *models.Engagement) error
	// GetByID reads and validates one engagement.
	GetByID(ctx context.Context, id string) (*models.Engagement, error)
	// UpdateFields applies a partial write only if the stored version still equals
	// expectedVersion, and returns the new version.
	UpdateFields(ctx context.Context, id string, expectedVersion int64, fields models.FieldSet) (int64, error)
	// ListByParty returns engagements where partyID is the provider or the buyer.
	ListByParty(ctx context.Context, partyID string) ([]models.Engagement, error)
}

// MongoEngagementRepo implements EngagementRepository using MongoDB.
type MongoEngagementRepo struct {
	coll *mongo.Collection
}

// NewMongoEngagementRepo returns an EngagementRepository backed by the "engagements" collection.
func NewMongoEngagementRepo(db *mongo.Database) *MongoEngagementRepo {
	return &MongoEngagementRepo{coll: db.Collection("engagements")}
}
