package insight

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// Merger folds candidates into existing open insights or creates new ones.
//
// Concurrent candidates for the same (type, organization, productId) key
// serialize on a per-key mutex so two identical candidates arriving together
// produce one merged insight, never a duplicate.
type Merger struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// MergerOption customizes a Merger.
type MergerOption func(*Merger)

// WithMergerClock overrides the wall clock, for deterministic tests.
func WithMergerClock(now func() time.Time) MergerOption {
	return func(m *Merger) { m.now = now }
}

func NewMerger(store Store, logger *zap.Logger, opts ...MergerOption) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Merger{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Upsert merges the candidate into a matching open insight or creates a new
// one, and returns the resulting record.
func (m *Merger) Upsert(ctx context.Context, c Candidate, scope Scope) (*Insight, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate: %w", err)
	}

	lock := m.keyLock(string(c.Type) + "\x00" + scope.Organization + "\x00" + scope.ProductID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.store.FindOpen(ctx, MergeQuery{
		Type:         c.Type,
		Organization: scope.Organization,
		ProductID:    scope.ProductID,
		Keywords:     c.Keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("find open insight: %w", err)
	}
	if existing != nil {
		return m.merge(ctx, existing, c)
	}
	return m.create(ctx, c, scope)
}

func (m *Merger) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

func (m *Merger) merge(ctx context.Context, existing *Insight, c Candidate) (*Insight, error) {
	now := m.now()

	frequency := existing.Frequency + c.Frequency
	// Frequency-weighted average keeps confidence a true mean over all
	// folded observations regardless of merge order.
	confidence := (existing.Confidence*float64(existing.Frequency) + c.Confidence*float64(c.Frequency)) / float64(frequency)

	severity := existing.Severity
	if c.Severity.Weight() > severity.Weight() {
		severity = c.Severity
	}

	// The stored description survives merges; a candidate only fills it in
	// when the insight has none.
	patch := Patch{
		Description: existing.Description,
		Severity:    severity,
		Trend:       calculateTrend(frequency, existing.FirstDetected, now),
		Confidence:  confidence,
		Frequency:   frequency,
		TicketIDs:   unionStrings(existing.TicketIDs, c.TicketIDs, 0),
		Keywords:    unionStrings(existing.Keywords, c.Keywords, maxInsightKeywords),
		Patterns:    unionStrings(existing.Patterns, c.Patterns, 0),
		Metadata:    mergeMetadata(existing.Metadata, c.Metadata),
		LastUpdated: now,
		DateEnd:     now,
	}
	if patch.Description == "" {
		patch.Description = c.Description
	}

	if err := m.store.UpdateByID(ctx, existing.ID, patch); err != nil {
		return nil, fmt.Errorf("update insight %s: %w", existing.ID, err)
	}
	m.logger.Debug("merged insight",
		zap.String("id", existing.ID),
		zap.String("type", string(c.Type)),
		zap.Int("frequency", frequency))

	merged := *existing
	merged.Description = patch.Description
	merged.Severity = patch.Severity
	merged.Trend = patch.Trend
	merged.Confidence = patch.Confidence
	merged.Frequency = patch.Frequency
	merged.TicketIDs = patch.TicketIDs
	merged.Keywords = patch.Keywords
	merged.Patterns = patch.Patterns
	merged.Metadata = patch.Metadata
	merged.LastUpdated = now
	merged.DateRangeEnd = now
	merged.ActionRequired = RequiresAction(merged.Severity)
	return &merged, nil
}

func (m *Merger) create(ctx context.Context, c Candidate, scope Scope) (*Insight, error) {
	now := m.now()

	description := c.Description
	if description == "" {
		description = "Insight detected: " + c.Title
	}
	severity := c.Severity
	if severity == "" {
		severity = ticket.SeverityMedium
	}
	confidence := c.Confidence
	if confidence == 0 {
		confidence = 0.5
	}
	frequency := c.Frequency
	if frequency == 0 {
		frequency = 1
	}
	category := c.Category
	if category == "" {
		category = CategoryFor(c.Type)
	}

	ins := &Insight{
		Type:           c.Type,
		Category:       category,
		Title:          c.Title,
		Description:    description,
		Severity:       severity,
		Status:         StatusActive,
		Trend:          TrendStable,
		Confidence:     confidence,
		Frequency:      frequency,
		Organization:   scope.Organization,
		ProductID:      scope.ProductID,
		TicketIDs:      unionStrings(nil, c.TicketIDs, 0),
		Keywords:       unionStrings(nil, c.Keywords, maxInsightKeywords),
		Patterns:       unionStrings(nil, c.Patterns, 0),
		Tags:           firstN(c.Keywords, 5),
		Metadata:       c.Metadata,
		ActionRequired: RequiresAction(severity),
		FirstDetected:  now,
		LastUpdated:    now,
		DateRangeStart: now,
		DateRangeEnd:   now,
	}
	if err := m.store.Create(ctx, ins); err != nil {
		return nil, fmt.Errorf("create insight: %w", err)
	}
	m.logger.Debug("created insight",
		zap.String("id", ins.ID),
		zap.String("type", string(c.Type)),
		zap.String("title", c.Title))
	return ins, nil
}

// calculateTrend grades the insight by its average daily frequency since
// first detection. The first day counts as one whole day.
func calculateTrend(frequency int, firstDetected, now time.Time) Trend {
	days := math.Floor(now.Sub(firstDetected).Hours() / 24)
	if days < 1 {
		days = 1
	}
	perDay := float64(frequency) / days
	switch {
	case perDay > 2:
		return TrendIncreasing
	case perDay < 0.5:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// unionStrings appends items from b not already in a, preserving order.
// A positive max caps the result length.
func unionStrings(a, b []string, max int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// mergeMetadata overlays candidate metadata on the existing map. Candidate
// values win on key conflicts.
func mergeMetadata(existing, candidate map[string]interface{}) map[string]interface{} {
	if len(candidate) == 0 {
		return existing
	}
	out := make(map[string]interface{}, len(existing)+len(candidate))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range candidate {
		out[k] = v
	}
	return out
}
