package insight

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

var (
	// ErrNotFound is returned when no insight matches the given ID.
	ErrNotFound = errors.New("insight not found")
)

// MergeQuery describes the lookup for an open insight a candidate may
// merge into. Matching considers type, scope, and keyword overlap against
// either the stored keywords or the stored title.
type MergeQuery struct {
	Type         Type
	Organization string
	ProductID    string
	Keywords     []string
}

// ListFilter narrows FindWithFilters results. Zero values are ignored.
type ListFilter struct {
	Organization string
	ProductID    string
	Type         Type
	Category     Category
	Status       Status
	Severity     string
}

// Page controls pagination and ordering of list queries.
type Page struct {
	Limit int64
	Skip  int64
}

// Patch carries the merged state written back to an existing insight.
type Patch struct {
	Description string
	Severity    ticket.Severity
	Trend       Trend
	Confidence  float64
	Frequency   int
	TicketIDs   []string
	Keywords    []string
	Patterns    []string
	Metadata    map[string]interface{}
	LastUpdated time.Time
	DateEnd     time.Time
}

// Store persists insights and supports the merge-or-create lookup.
type Store interface {
	// FindOpen returns the first active or investigating insight matching
	// the merge query, or nil when none exists.
	FindOpen(ctx context.Context, q MergeQuery) (*Insight, error)
	Create(ctx context.Context, ins *Insight) error
	UpdateByID(ctx context.Context, id string, p Patch) error
	FindWithFilters(ctx context.Context, f ListFilter, page Page) ([]Insight, error)
	// UpdateStatus transitions an insight and appends the action to its
	// audit trail.
	UpdateStatus(ctx context.Context, id string, status Status, action Action) (*Insight, error)
}

// MemoryStore is an in-memory Store used in tests and single-process runs.
type MemoryStore struct {
	mu       sync.RWMutex
	insights map[string]*Insight
	seq      int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{insights: make(map[string]*Insight)}
}

func (s *MemoryStore) FindOpen(_ context.Context, q MergeQuery) (*Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*Insight
	for _, ins := range s.insights {
		if ins.Type != q.Type {
			continue
		}
		if ins.Status != StatusActive && ins.Status != StatusInvestigating {
			continue
		}
		if q.Organization != "" && ins.Organization != q.Organization {
			continue
		}
		if q.ProductID != "" && ins.ProductID != q.ProductID {
			continue
		}
		if !keywordOverlap(ins, q.Keywords) {
			continue
		}
		candidates = append(candidates, ins)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].FirstDetected.Before(candidates[b].FirstDetected)
	})
	out := *candidates[0]
	return &out, nil
}

func keywordOverlap(ins *Insight, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(ins.Title)
	for _, kw := range keywords {
		for _, existing := range ins.Keywords {
			if existing == kw {
				return true
			}
		}
		if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Create(_ context.Context, ins *Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ins.ID == "" {
		s.seq++
		ins.ID = "mem-" + strconv.Itoa(s.seq)
	}
	cp := *ins
	s.insights[ins.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateByID(_ context.Context, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ins, ok := s.insights[id]
	if !ok {
		return ErrNotFound
	}
	ins.Description = p.Description
	ins.Severity = p.Severity
	ins.Trend = p.Trend
	ins.Confidence = p.Confidence
	ins.Frequency = p.Frequency
	ins.TicketIDs = p.TicketIDs
	ins.Keywords = p.Keywords
	ins.Patterns = p.Patterns
	if p.Metadata != nil {
		ins.Metadata = p.Metadata
	}
	ins.LastUpdated = p.LastUpdated
	ins.DateRangeEnd = p.DateEnd
	ins.ActionRequired = RequiresAction(ins.Severity)
	return nil
}

func (s *MemoryStore) FindWithFilters(_ context.Context, f ListFilter, page Page) ([]Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Insight
	for _, ins := range s.insights {
		if f.Organization != "" && ins.Organization != f.Organization {
			continue
		}
		if f.ProductID != "" && ins.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && ins.Type != f.Type {
			continue
		}
		if f.Category != "" && ins.Category != f.Category {
			continue
		}
		if f.Status != "" && ins.Status != f.Status {
			continue
		}
		if f.Severity != "" && string(ins.Severity) != f.Severity {
			continue
		}
		out = append(out, *ins)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].LastUpdated.After(out[b].LastUpdated)
	})
	if page.Skip > 0 {
		if page.Skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[page.Skip:]
	}
	if page.Limit > 0 && int64(len(out)) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status Status, action Action) (*Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ins, ok := s.insights[id]
	if !ok {
		return nil, ErrNotFound
	}
	ins.Status = status
	ins.Actions = append(ins.Actions, action)
	ins.LastUpdated = action.PerformedAt
	out := *ins
	return &out, nil
}

// Get returns a copy of a stored insight. Test helper.
func (s *MemoryStore) Get(id string) (*Insight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ins, ok := s.insights[id]
	if !ok {
		return nil, false
	}
	out := *ins
	return &out, true
}
