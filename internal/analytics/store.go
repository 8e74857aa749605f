package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// QueryFilter narrows a QueryRecent call. Zero-valued fields are ignored.
type QueryFilter struct {
	Organization string
	ProductID    string
	Since        time.Time
	Limit        int64
}

// Store persists extracted analytics records.
type Store interface {
	// Save writes one record. Records are append-only.
	Save(ctx context.Context, rec ticket.AnalyticsRecord) error
	// QueryRecent returns records matching the filter, newest first.
	QueryRecent(ctx context.Context, f QueryFilter) ([]ticket.AnalyticsRecord, error)
	// CountByOrganization counts records for an organization, excluding the
	// record belonging to the given ticket.
	CountByOrganization(ctx context.Context, organization, excludeTicketID string) (int64, error)
}

// MemoryStore is an in-memory Store for tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	records []ticket.AnalyticsRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, rec ticket.AnalyticsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) QueryRecent(_ context.Context, f QueryFilter) ([]ticket.AnalyticsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ticket.AnalyticsRecord
	for _, rec := range s.records {
		if f.Organization != "" && rec.Organization != f.Organization {
			continue
		}
		if f.ProductID != "" && rec.ProductID != f.ProductID {
			continue
		}
		if !f.Since.IsZero() && rec.CreatedAt.Before(f.Since) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CountByOrganization(_ context.Context, organization, excludeTicketID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, rec := range s.records {
		if rec.Organization == organization && rec.ExternalTicketID != excludeTicketID {
			n++
		}
	}
	return n, nil
}
