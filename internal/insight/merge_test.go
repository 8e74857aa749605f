package insight

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

func fixedTime() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func billingCandidate() Candidate {
	return Candidate{
		Type:       TypeProductComplaint,
		Title:      "Recurring complaints about billing",
		Severity:   ticket.SeverityHigh,
		Confidence: 0.8,
		Frequency:  1,
		Keywords:   []string{"billing", "charge", "refund"},
		TicketIDs:  []string{"T-100"},
		Patterns:   []string{"billing_complaint"},
	}
}

func TestUpsertCreatesWithDefaults(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))

	c := Candidate{
		Type:      TypeProductComplaint,
		Title:     "Recurring complaints about billing",
		TicketIDs: []string{"T-1"},
		Keywords:  []string{"billing", "charge", "refund", "invoice", "overcharge", "dispute"},
		Frequency: 1,
	}
	ins, err := merger.Upsert(context.Background(), c, Scope{Organization: "acme"})
	require.NoError(t, err)

	assert.Equal(t, "Insight detected: Recurring complaints about billing", ins.Description)
	assert.Equal(t, ticket.SeverityMedium, ins.Severity)
	assert.Equal(t, StatusActive, ins.Status)
	assert.Equal(t, TrendStable, ins.Trend)
	assert.InDelta(t, 0.5, ins.Confidence, 1e-9)
	assert.Equal(t, 1, ins.Frequency)
	assert.Equal(t, CategoryProductQuality, ins.Category)
	assert.Equal(t, []string{"billing", "charge", "refund", "invoice", "overcharge"}, ins.Tags)
	assert.Equal(t, fixedTime(), ins.FirstDetected)
	assert.False(t, ins.ActionRequired)
}

func TestUpsertMergesIntoOpenInsight(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme", ProductID: "prod-1"}

	first, err := merger.Upsert(context.Background(), billingCandidate(), scope)
	require.NoError(t, err)
	require.Equal(t, 1, first.Frequency)

	second := billingCandidate()
	second.Confidence = 0.6
	second.TicketIDs = []string{"T-101"}
	second.Keywords = []string{"billing", "payment"}

	merged, err := merger.Upsert(context.Background(), second, scope)
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 2, merged.Frequency)
	// Weighted by frequency: (0.8*1 + 0.6*1) / 2.
	assert.InDelta(t, 0.7, merged.Confidence, 1e-9)
	assert.ElementsMatch(t, []string{"T-100", "T-101"}, merged.TicketIDs)
	assert.Equal(t, []string{"billing", "charge", "refund", "payment"}, merged.Keywords)
	// Two observations in one day sits exactly on the stable boundary.
	assert.Equal(t, TrendStable, merged.Trend)
}

func TestMergeKeepsStoredDescription(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme"}

	first := billingCandidate()
	first.Description = "12 customers reporting duplicate charges"
	_, err := merger.Upsert(context.Background(), first, scope)
	require.NoError(t, err)

	second := billingCandidate()
	second.Description = "3 customers reporting duplicate charges"
	merged, err := merger.Upsert(context.Background(), second, scope)
	require.NoError(t, err)

	assert.Equal(t, "12 customers reporting duplicate charges", merged.Description)
}

func TestMergeConfidenceIsFrequencyWeighted(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme"}

	first := billingCandidate()
	first.Confidence = 0.9
	first.Frequency = 4
	_, err := merger.Upsert(context.Background(), first, scope)
	require.NoError(t, err)

	second := billingCandidate()
	second.Confidence = 0.5
	second.Frequency = 2
	merged, err := merger.Upsert(context.Background(), second, scope)
	require.NoError(t, err)

	assert.Equal(t, 6, merged.Frequency)
	assert.InDelta(t, (0.9*4+0.5*2)/6, merged.Confidence, 1e-9)
}

func TestMergeEscalatesSeverityOnly(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme"}

	first := billingCandidate()
	first.Severity = ticket.SeverityHigh
	created, err := merger.Upsert(context.Background(), first, scope)
	require.NoError(t, err)
	require.Equal(t, ticket.SeverityHigh, created.Severity)

	lower := billingCandidate()
	lower.Severity = ticket.SeverityLow
	merged, err := merger.Upsert(context.Background(), lower, scope)
	require.NoError(t, err)
	assert.Equal(t, ticket.SeverityHigh, merged.Severity)

	higher := billingCandidate()
	higher.Severity = ticket.SeverityCritical
	merged, err = merger.Upsert(context.Background(), higher, scope)
	require.NoError(t, err)
	assert.Equal(t, ticket.SeverityCritical, merged.Severity)
	assert.True(t, merged.ActionRequired)
}

func TestMergeCapsKeywordsAtTwenty(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme"}

	first := billingCandidate()
	first.Keywords = make([]string, 15)
	for i := range first.Keywords {
		first.Keywords[i] = "kw" + string(rune('a'+i))
	}
	_, err := merger.Upsert(context.Background(), first, scope)
	require.NoError(t, err)

	second := billingCandidate()
	second.Keywords = append([]string{"kwa"}, "x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8")
	merged, err := merger.Upsert(context.Background(), second, scope)
	require.NoError(t, err)

	assert.Len(t, merged.Keywords, 20)
	assert.Equal(t, "kwa", merged.Keywords[0])
}

func TestUpsertDoesNotMergeAcrossScopes(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))

	a, err := merger.Upsert(context.Background(), billingCandidate(), Scope{Organization: "acme"})
	require.NoError(t, err)
	b, err := merger.Upsert(context.Background(), billingCandidate(), Scope{Organization: "globex"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1, b.Frequency)
}

func TestUpsertRejectsInvalidCandidate(t *testing.T) {
	merger := NewMerger(NewMemoryStore(), nil)

	_, err := merger.Upsert(context.Background(), Candidate{Type: "made_up"}, Scope{})
	assert.Error(t, err)

	noTickets := billingCandidate()
	noTickets.TicketIDs = nil
	_, err = merger.Upsert(context.Background(), noTickets, Scope{})
	assert.Error(t, err)
}

func TestConcurrentUpsertsProduceOneInsight(t *testing.T) {
	store := NewMemoryStore()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	scope := Scope{Organization: "acme"}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := merger.Upsert(context.Background(), billingCandidate(), scope)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.FindWithFilters(context.Background(), ListFilter{Organization: "acme"}, Page{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, workers, all[0].Frequency)
}

func TestCalculateTrend(t *testing.T) {
	start := fixedTime()
	tests := []struct {
		name      string
		frequency int
		elapsed   time.Duration
		want      Trend
	}{
		{"burst on first day", 3, 2 * time.Hour, TrendIncreasing},
		{"steady", 10, 10 * 24 * time.Hour, TrendStable},
		{"fading", 4, 20 * 24 * time.Hour, TrendDecreasing},
		{"exactly two per day", 20, 10 * 24 * time.Hour, TrendStable},
		{"partial day counts as one", 1, 6 * time.Hour, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateTrend(tt.frequency, start, start.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStoreFindOpenMatchesTitleKeywords(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &Insight{
		Type:     TypeProductComplaint,
		Title:    "Billing failures spiking",
		Status:   StatusActive,
		Keywords: []string{"invoice"},
	}))

	// "billing" appears in the title even though not in stored keywords.
	found, err := store.FindOpen(context.Background(), MergeQuery{
		Type:     TypeProductComplaint,
		Keywords: []string{"billing"},
	})
	require.NoError(t, err)
	require.NotNil(t, found)

	miss, err := store.FindOpen(context.Background(), MergeQuery{
		Type:     TypeProductComplaint,
		Keywords: []string{"latency"},
	})
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestMemoryStoreFindOpenSkipsClosedInsights(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &Insight{
		Type:     TypeProductComplaint,
		Title:    "Old billing issue",
		Status:   StatusResolved,
		Keywords: []string{"billing"},
	}))

	found, err := store.FindOpen(context.Background(), MergeQuery{
		Type:     TypeProductComplaint,
		Keywords: []string{"billing"},
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpdateStatusAppendsAction(t *testing.T) {
	store := NewMemoryStore()
	ins := &Insight{Type: TypeChurnRisk, Title: "Churn risk", Status: StatusActive}
	require.NoError(t, store.Create(context.Background(), ins))

	action := Action{
		Type:        "status_change",
		Description: "Escalated to customer success",
		PerformedBy: "oncall",
		PerformedAt: fixedTime(),
	}
	updated, err := store.UpdateStatus(context.Background(), ins.ID, StatusInvestigating, action)
	require.NoError(t, err)
	assert.Equal(t, StatusInvestigating, updated.Status)
	require.Len(t, updated.Actions, 1)
	assert.Equal(t, "oncall", updated.Actions[0].PerformedBy)

	_, err = store.UpdateStatus(context.Background(), "missing", StatusResolved, action)
	assert.ErrorIs(t, err, ErrNotFound)
}
