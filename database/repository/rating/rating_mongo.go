package ratingRepo

import (
	"context"
	"fmt"
	"time"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (r *MongoRatingRepo) Append(ctx context.Context, rating *models.Rating) error {
	if _, err := r.coll.InsertOne(ctx, rating); err != nil {
		return fmt.Errorf("failed to store rating for provider %s: %w", rating.ProviderID, err)
	}
	return nil
}

func (r *MongoRatingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error) {
	return r.find(ctx, bson.M{"providerId": providerID})
}

func (r *MongoRatingRepo) ListByRater(ctx context.Context, providerID, raterID string) ([]models.Rating, error) {
	return r.find(ctx, bson.M{"providerId": providerID, "raterId": raterID})
}

// find decodes in insertion order and drops records that fail parseRating.
func (r *MongoRatingRepo) find(ctx context.Context, filter bson.M) ([]models.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer cursor.Close(ctx)

	ratings := []models.Rating{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode rating: %w", err)
		}
		rating, err := parseRating(raw)
		if err != nil {
			zap.L().Warn("skipping corrupt rating", zap.Any("_id", raw["_id"]), zap.Error(err))
			continue
		}
		ratings = append(ratings, rating)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ratings, nil
}

// EnsureIndexes supports the per-provider and per-rater lookups.
func (r *MongoRatingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "raterId", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create rating indexes: %w", err)
	}
	return nil
}
