package engagementRepo

import (
	"context"
	"errors"
	"fmt"

	"skillbridge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (r *MongoEngagementRepo) Create(ctx context.Context, e *models.Engagement) error {
	if e.Milestones == nil {
		e.Milestones = []models.Milestone{}
	}
	if e.Documents == nil {
		e.Documents = []models.Document{}
	}
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to create engagement %s: %w", e.ID, err)
	}
	return nil
}

func (r *MongoEngagementRepo) GetByID(ctx context.Context, id string) (*models.Engagement, error) {
	var e models.Engagement
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("engagement %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch engagement %s: %w", id, err)
	}
	if err := parseEngagement(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *MongoEngagementRepo) UpdateFields(ctx context.Context, id string, expectedVersion int64, fields models.FieldSet) (int64, error) {
	if len(fields) == 0 {
		return expectedVersion, nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	filter := bson.M{"id": id, "version": expectedVersion}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update engagement %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return 0, fmt.Errorf("failed to check engagement %s: %w", id, err)
		}
		if n == 0 {
			return 0, fmt.Errorf("engagement %s: %w", id, models.ErrNotFound)
		}
		return 0, fmt.Errorf("engagement %s at version %d: %w", id, expectedVersion, models.ErrVersionConflict)
	}
	return expectedVersion + 1, nil
}

func (r *MongoEngagementRepo) ListByParty(ctx context.Context, partyID string) ([]models.Engagement, error) {
	filter := bson.M{"$or": []bson.M{
		{"provider.id": partyID},
		{"buyer.id": partyID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements for %s: %w", partyID, err)
	}
	defer cursor.Close(ctx)

	engagements := []models.Engagement{}
	for cursor.Next(ctx) {
		var e models.Engagement
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode engagement: %w", err)
		}
		if err := parseEngagement(&e); err != nil {
			zap.L().Warn("skipping corrupt engagement", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		engagements = append(engagements, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return engagements, nil
}
