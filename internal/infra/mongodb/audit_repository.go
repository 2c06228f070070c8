package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

// AuditDocument é o formato persistido no Mongo. Tags bson, não json.
type AuditDocument struct {
	ID              string         `bson:"_id,omitempty"`
	Action          string         `bson:"action"`
	Status          string         `bson:"status"`
	OwnerID         *int64         `bson:"owner_id,omitempty"`
	WalletAddress   string         `bson:"wallet_address,omitempty"`
	TransactionHash string         `bson:"transaction_hash,omitempty"`
	Metadata        map[string]any `bson:"metadata,omitempty"`
	ErrorMessage    string         `bson:"error_message,omitempty"`
	CreatedAt       time.Time      `bson:"created_at"`
	ProcessedAt     time.Time      `bson:"processed_at"`
}

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	collection := client.Database(dbName).Collection("audit_logs")
	return &AuditRepository{collection: collection}
}

func (r *AuditRepository) Save(ctx context.Context, entry domain.AuditEntry) error {
	doc := AuditDocument{
		Action:          string(entry.Action),
		Status:          string(entry.Status),
		OwnerID:         entry.OwnerID,
		WalletAddress:   entry.WalletAddress,
		TransactionHash: entry.TransactionHash,
		Metadata:        entry.Metadata,
		ErrorMessage:    entry.ErrorMessage,
		CreatedAt:       entry.CreatedAt,
		ProcessedAt:     time.Now(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *AuditRepository) FindByWallet(ctx context.Context, walletAddress string, limit int64) ([]AuditDocument, error) {
	return r.find(ctx, bson.M{"wallet_address": walletAddress}, limit)
}

func (r *AuditRepository) FindByTransaction(ctx context.Context, txHash string) ([]AuditDocument, error) {
	return r.find(ctx, bson.M{"transaction_hash": txHash}, 0)
}

func (r *AuditRepository) find(ctx context.Context, filter bson.M, limit int64) ([]AuditDocument, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []AuditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode audit logs: %w", err)
	}
	return docs, nil
}
