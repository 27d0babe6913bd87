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
)

// MongoMerchantRepository implements MerchantRepository using MongoDB
type MongoMerchantRepository struct {
	collection *mongo.Collection
}

// NewMongoMerchantRepository creates a new MongoDB merchant repository
func NewMongoMerchantRepository(db *mongo.Database) ports.MerchantRepository {
	return &MongoMerchantRepository{
		collection: db.Collection(merchantsCollection),
	}
}

// GetByID retrieves a merchant by its ID
func (r *MongoMerchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByAPIKey retrieves a merchant by its widget API key
func (r *MongoMerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	return r.findOne(ctx, bson.M{"apiKey": apiKey})
}

func (r *MongoMerchantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Merchant, error) {
	var doc entity.MongoMerchantDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return doc.ToDomain(), nil
}

// ListSyncable returns merchants with a store domain and some integration descriptor
func (r *MongoMerchantRepository) ListSyncable(ctx context.Context) ([]*domain.Merchant, error) {
	filter := bson.M{
		"storeDomain": bson.M{"$nin": bson.A{"", nil}},
		"$or": bson.A{
			bson.M{"storeType": bson.M{"$nin": bson.A{"", nil}}},
			bson.M{"productMethod": bson.M{"$nin": bson.A{"", nil}}},
			bson.M{"apiType": bson.M{"$nin": bson.A{"", nil}}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchants: %w", err)
	}
	defer cursor.Close(ctx)

	var merchants []*domain.Merchant
	for cursor.Next(ctx) {
		var doc entity.MongoMerchantDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode merchant: %w", err)
		}
		m := doc.ToDomain()
		if m.HasStoreIntegration() {
			merchants = append(merchants, m)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return merchants, nil
}

// UpdateSyncStatus sets the product sync status and, when given, the last sync time
func (r *MongoMerchantRepository) UpdateSyncStatus(ctx context.Context, id string, status domain.SyncStatus, lastSynced *time.Time) error {
	set := bson.M{
		"productSyncStatus": string(status),
		"updatedAt":         time.Now(),
	}
	if lastSynced != nil {
		set["productLastSynced"] = *lastSynced
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMerchantNotFound
	}
	return nil
}
