package ratingRepo

import (
	"context"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// RatingRepository stores the append-only rating history.
type RatingRepository interface {
	// Append stores a new rating record. Existing records are never rewritten.
	Append(ctx context.Context, r *models.Rating) error
	// ListByProvider returns every valid record for a provider.
	ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error)
	// ListByRater returns every valid record one rater left for a provider.
	ListByRater(ctx context.Context, providerID, raterID string) ([]models.Rating, error)
}

// MongoRatingRepo implements RatingRepository using MongoDB.
type MongoRatingRepo struct {
	coll *mongo.Collection
}

func NewMongoRatingRepo(db *mongo.Database) *MongoRatingRepo {
	return &MongoRatingRepo{coll: db.Collection("ratings")}
}
