package entity

import (
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoProductDoc represents a catalog product in MongoDB
type MongoProductDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MerchantID  string             `bson:"merchantId"`
	Position    int                `bson:"position"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       string             `bson:"price"`
	ImageURL    string             `bson:"imageUrl"`
	URL         string             `bson:"url"`
	ScrapedAt   time.Time          `bson:"scrapedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoProductDoc) ToDomain() domain.Product {
	return domain.Product{
		MerchantID:  d.MerchantID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		URL:         d.URL,
		ScrapedAt:   d.ScrapedAt,
	}
}

// MongoProductDocFromDomain converts a domain entity to a MongoDB document
func MongoProductDocFromDomain(p domain.Product, merchantID string, position int) *MongoProductDoc {
	return &MongoProductDoc{
		MerchantID:  merchantID,
		Position:    position,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		ScrapedAt:   p.ScrapedAt,
	}
}

// MongoUsageDoc represents a (merchant, month) usage row in MongoDB
type MongoUsageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	MerchantID string             `bson:"merchantId"`
	Month      string             `bson:"month"`
	Tokens     int64              `bson:"tokens"`
	Requests   int64              `bson:"requests"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoUsageDoc) ToDomain() *domain.UsageRecord {
	return &domain.UsageRecord{
		MerchantID: d.MerchantID,
		Month:      d.Month,
		Tokens:     d.Tokens,
		Requests:   d.Requests,
	}
}

// MongoFaqDoc represents a FAQ entry in MongoDB
type MongoFaqDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Question  string             `bson:"question"`
	Answer    string             `bson:"answer"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoFaqDoc) ToDomain() domain.FaqEntry {
	return domain.FaqEntry{
		ID:        d.ID.Hex(),
		Question:  d.Question,
		Answer:    d.Answer,
		CreatedAt: d.CreatedAt,
	}
}

// MongoChatLogDoc represents a chat log entry in MongoDB
type MongoChatLogDoc struct {
	ID             string    `bson:"_id"`
	MerchantID     string    `bson:"merchantId"`
	SessionID      string    `bson:"sessionId"`
	Timestamp      time.Time `bson:"timestamp"`
	UserMessage    string    `bson:"userMessage"`
	AssistantReply string    `bson:"assistantReply"`
	Success        bool      `bson:"success"`
}

// MongoChatLogDocFromDomain converts a domain entity to a MongoDB document
func MongoChatLogDocFromDomain(e *domain.ChatLogEntry) *MongoChatLogDoc {
	return &MongoChatLogDoc{
		ID:             e.ID,
		MerchantID:     e.MerchantID,
		SessionID:      e.SessionID,
		Timestamp:      e.Timestamp,
		UserMessage:    e.UserMessage,
		AssistantReply: e.AssistantReply,
		Success:        e.Success,
	}
}
