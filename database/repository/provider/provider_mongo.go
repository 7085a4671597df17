package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo(db *mongo.Database) *MongoProviderRepo {
	return &MongoProviderRepo{coll: db.Collection("providers")}
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return &provider, nil
}

func (r *MongoProviderRepo) UpdateReputation(ctx context.Context, rep models.Reputation, seq int64) (bool, error) {
	// Rating history is append-only, so a projection built from more records is newer.
	filter := bson.M{
		"id": rep.ProviderID,
		"$or": []bson.M{
			{"reputationSeq": bson.M{"$lt": seq}},
			{"reputationSeq": bson.M{"$exists": false}},
		},
	}
	update := bson.M{"$set": bson.M{
		"rating":        rep.Score,
		"reviewCount":   rep.ReviewCount,
		"reputationSeq": seq,
		"updatedAt":     time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update reputation for provider %s: %w", rep.ProviderID, err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": rep.ProviderID})
	if err != nil {
		return false, fmt.Errorf("failed to check provider %s: %w", rep.ProviderID, err)
	}
	if n == 0 {
		return false, fmt.Errorf("provider %s: %w", rep.ProviderID, models.ErrNotFound)
	}
	return false, nil
}
