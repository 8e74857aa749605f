package insight

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsightCollection is the MongoDB collection insights are stored in.
const InsightCollection = "insights"

// MongoStore is the MongoDB-backed Store.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(InsightCollection)}
}

// EnsureIndexes creates the indexes the merge lookup and list queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "organization", Value: 1}, {Key: "lastUpdated", Value: -1}}},
		{Keys: bson.D{{Key: "keywords", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating insight indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindOpen(ctx context.Context, q MergeQuery) (*Insight, error) {
	filter := bson.M{
		"type":   q.Type,
		"status": bson.M{"$in": []Status{StatusActive, StatusInvestigating}},
	}
	if q.Organization != "" {
		filter["organization"] = q.Organization
	}
	if q.ProductID != "" {
		filter["productId"] = q.ProductID
	}
	if len(q.Keywords) > 0 {
		quoted := make([]string, len(q.Keywords))
		for i, kw := range q.Keywords {
			quoted[i] = regexp.QuoteMeta(kw)
		}
		filter["$or"] = bson.A{
			bson.M{"keywords": bson.M{"$in": q.Keywords}},
			bson.M{"title": primitive.Regex{Pattern: strings.Join(quoted, "|"), Options: "i"}},
		}
	}

	var ins Insight
	err := s.coll.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "firstDetected", Value: 1}})).Decode(&ins)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding open insight: %w", err)
	}
	return &ins, nil
}

func (s *MongoStore) Create(ctx context.Context, ins *Insight) error {
	// IDs are stored as hex strings so one Insight type round-trips through
	// both the memory and Mongo stores.
	if ins.ID == "" {
		ins.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, ins); err != nil {
		return fmt.Errorf("inserting insight: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, id string, p Patch) error {
	update := bson.M{"$set": bson.M{
		"description":    p.Description,
		"severity":       p.Severity,
		"trend":          p.Trend,
		"confidence":     p.Confidence,
		"frequency":      p.Frequency,
		"ticketIds":      p.TicketIDs,
		"keywords":       p.Keywords,
		"patterns":       p.Patterns,
		"metadata":       p.Metadata,
		"actionRequired": RequiresAction(p.Severity),
		"lastUpdated":    p.LastUpdated,
		"dateRangeEnd":   p.DateEnd,
	}}
	res, err := s.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("updating insight %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindWithFilters(ctx context.Context, f ListFilter, page Page) ([]Insight, error) {
	filter := bson.M{}
	if f.Organization != "" {
		filter["organization"] = f.Organization
	}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Severity != "" {
		filter["severity"] = f.Severity
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}})
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	var out []Insight
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding insights: %w", err)
	}
	return out, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id string, status Status, action Action) (*Insight, error) {
	update := bson.M{
		"$set":  bson.M{"status": status, "lastUpdated": action.PerformedAt},
		"$push": bson.M{"actions": action},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ins Insight
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&ins)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating insight status %s: %w", id, err)
	}
	return &ins, nil
}
