package repository

import (
	"context"
	"fmt"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository/entity"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository implements ProductRepository using MongoDB.
// Catalog replacement runs in a transaction and needs a replica set.
type MongoProductRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoDB product repository
func NewMongoProductRepository(db *mongo.Database) ports.ProductRepository {
	return &MongoProductRepository{
		client:     db.Client(),
		collection: db.Collection(productsCollection),
	}
}

// ListByMerchant returns the merchant's catalog in stored order
func (r *MongoProductRepository) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"merchantId": merchantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	for cursor.Next(ctx) {
		var doc entity.MongoProductDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return products, nil
}

// ReplaceCatalog deletes and reinserts the merchant's products in one transaction
func (r *MongoProductRepository) ReplaceCatalog(ctx context.Context, merchantID string, products []domain.Product) error {
	products = domain.DedupeByURL(products)
	docs := make([]interface{}, 0, len(products))
	for i, p := range products {
		docs = append(docs, entity.MongoProductDocFromDomain(p, merchantID, i))
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{"merchantId": merchantID}); err != nil {
			return nil, fmt.Errorf("failed to delete products: %w", err)
		}
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := r.collection.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("failed to insert products: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// InsertMissing upserts products by (merchantId, url) without touching existing ones
func (r *MongoProductRepository) InsertMissing(ctx context.Context, merchantID string, products []domain.Product) (int, error) {
	products = domain.DedupeByURL(products)
	if len(products) == 0 {
		return 0, nil
	}

	existing, err := r.collection.CountDocuments(ctx, bson.M{"merchantId": merchantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	models := make([]mongo.WriteModel, 0, len(products))
	for i, p := range products {
		doc := entity.MongoProductDocFromDomain(p, merchantID, int(existing)+i)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"merchantId": merchantID, "url": p.URL}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to insert products: %w", err)
	}
	return int(result.UpsertedCount), nil
}
