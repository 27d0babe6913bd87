package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository/entity"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUsageRepository implements UsageRepository using MongoDB.
// Counters move only through $inc on the unique (merchantId, month) row.
type MongoUsageRepository struct {
	collection *mongo.Collection
}

// NewMongoUsageRepository creates a new MongoDB usage repository
func NewMongoUsageRepository(db *mongo.Database) ports.UsageRepository {
	return &MongoUsageRepository{
		collection: db.Collection(usageCollection),
	}
}

// Get retrieves the usage row for a merchant and month
func (r *MongoUsageRepository) Get(ctx context.Context, merchantID, month string) (*domain.UsageRecord, error) {
	var doc entity.MongoUsageDoc
	err := r.collection.FindOne(ctx, bson.M{"merchantId": merchantID, "month": month}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return doc.ToDomain(), nil
}

// Increment atomically adds to the counters, creating the row on first use
func (r *MongoUsageRepository) Increment(ctx context.Context, merchantID, month string, tokens, requests int64) (*domain.UsageRecord, error) {
	now := time.Now()
	filter := bson.M{"merchantId": merchantID, "month": month}
	update := bson.M{
		"$inc":         bson.M{"tokens": tokens, "requests": requests},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc entity.MongoUsageDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the row exists now
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}
	return doc.ToDomain(), nil
}
