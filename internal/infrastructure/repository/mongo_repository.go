package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	merchantsCollection = "merchants"
	productsCollection  = "products"
	usageCollection     = "merchant_usage"
	faqsCollection      = "faqs"
	chatLogsCollection  = "chat_logs"
)

// MongoRepository implements FaqRepository and ChatLogRepository using MongoDB
type MongoRepository struct {
	faqsCollection     *mongo.Collection
	chatLogsCollection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		faqsCollection:     db.Collection(faqsCollection),
		chatLogsCollection: db.Collection(chatLogsCollection),
	}
}

// List returns FAQ entries in insertion order
func (r *MongoRepository) List(ctx context.Context) ([]domain.FaqEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.faqsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer cursor.Close(ctx)

	var faqs []domain.FaqEntry
	for cursor.Next(ctx) {
		var doc entity.MongoFaqDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode faq: %w", err)
		}
		faqs = append(faqs, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return faqs, nil
}

// Append writes a chat log entry
func (r *MongoRepository) Append(ctx context.Context, e *domain.ChatLogEntry) error {
	doc := entity.MongoChatLogDocFromDomain(e)
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now()
	}
	if _, err := r.chatLogsCollection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append chat log: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique keys the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		merchantsCollection: {
			{
				Keys:    bson.D{{Key: "apiKey", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		productsCollection: {
			{
				Keys:    bson.D{{Key: "merchantId", Value: 1}, {Key: "url", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "merchantId", Value: 1}, {Key: "position", Value: 1}}},
		},
		usageCollection: {
			{
				Keys:    bson.D{{Key: "merchantId", Value: 1}, {Key: "month", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		faqsCollection: {
			{
				Keys:    bson.D{{Key: "question", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		chatLogsCollection: {
			{Keys: bson.D{{Key: "merchantId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
