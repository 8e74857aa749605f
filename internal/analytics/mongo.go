package analytics

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// AnalyticsCollection is the default collection name for records.
const AnalyticsCollection = "ticket_analytics"

// MongoStore persists analytics records in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the analytics collection. EnsureIndexes should be
// called once at startup before serving traffic.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(AnalyticsCollection)}
}

// EnsureIndexes creates the indexes the query paths rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "externalTicketId", Value: 1}}},
		{Keys: bson.D{{Key: "organization", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create analytics indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, rec ticket.AnalyticsRecord) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert analytics record %s: %w", rec.ExternalTicketID, err)
	}
	return nil
}

func (s *MongoStore) QueryRecent(ctx context.Context, f QueryFilter) ([]ticket.AnalyticsRecord, error) {
	filter := bson.M{}
	if f.Organization != "" {
		filter["organization"] = f.Organization
	}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	if !f.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.Since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query analytics records: %w", err)
	}
	defer cur.Close(ctx)

	var out []ticket.AnalyticsRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode analytics records: %w", err)
	}
	return out, nil
}

func (s *MongoStore) CountByOrganization(ctx context.Context, organization, excludeTicketID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"organization":     organization,
		"externalTicketId": bson.M{"$ne": excludeTicketID},
	})
	if err != nil {
		return 0, fmt.Errorf("count analytics records for %s: %w", organization, err)
	}
	return n, nil
}
