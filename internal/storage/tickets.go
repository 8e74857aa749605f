package storage

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// TicketCollection is the MongoDB collection tickets are stored in.
const TicketCollection = "tickets"

// TicketStore persists the raw ticket copies the similarity retriever
// resolves matches against.
type TicketStore interface {
	Save(ctx context.Context, t ticket.Ticket) error
	FindByExternalIDs(ctx context.Context, ids []string) ([]ticket.Ticket, error)
}

// MongoTicketStore is the MongoDB-backed TicketStore.
type MongoTicketStore struct {
	coll *mongo.Collection
}

func NewMongoTicketStore(db *mongo.Database) *MongoTicketStore {
	return &MongoTicketStore{coll: db.Collection(TicketCollection)}
}

// EnsureIndexes creates the unique external id index.
func (s *MongoTicketStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating ticket indexes: %w", err)
	}
	return nil
}

// Save upserts the ticket by external id, so re-delivered tickets replace
// their earlier copy.
func (s *MongoTicketStore) Save(ctx context.Context, t ticket.Ticket) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"externalId": t.ExternalID},
		t,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving ticket %s: %w", t.ExternalID, err)
	}
	return nil
}

func (s *MongoTicketStore) FindByExternalIDs(ctx context.Context, ids []string) ([]ticket.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"externalId": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("finding tickets: %w", err)
	}
	var out []ticket.Ticket
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding tickets: %w", err)
	}
	return out, nil
}

// MemoryTicketStore is an in-memory TicketStore for tests.
type MemoryTicketStore struct {
	mu      sync.RWMutex
	tickets map[string]ticket.Ticket
}

func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{tickets: make(map[string]ticket.Ticket)}
}

func (s *MemoryTicketStore) Save(_ context.Context, t ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ExternalID] = t
	return nil
}

func (s *MemoryTicketStore) FindByExternalIDs(_ context.Context, ids []string) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ticket.Ticket
	for _, id := range ids {
		if t, ok := s.tickets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
