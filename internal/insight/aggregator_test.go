package insight

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/metrics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

func newTestAggregator(t *testing.T, store Store, analyzers []Analyzer) *Aggregator {
	t.Helper()
	merger := NewMerger(store, nil, WithMergerClock(fixedTime))
	return NewAggregator(merger, nil, metrics.New(prometheus.NewRegistry()),
		WithAggregatorClock(fixedTime),
		WithAnalyzers(analyzers),
	)
}

func staticAnalyzer(name string, out ...Candidate) Analyzer {
	return Analyzer{
		Name: name,
		Run:  func([]ticket.AnalyticsRecord, time.Time) []Candidate { return out },
	}
}

func TestAggregatePersistsSurvivingCandidates(t *testing.T) {
	store := NewMemoryStore()
	agg := newTestAggregator(t, store, []Analyzer{
		staticAnalyzer("billing", billingCandidate()),
	})

	report, err := agg.Aggregate(context.Background(), nil, Scope{Organization: "acme"})
	require.NoError(t, err)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, TypeProductComplaint, report.Insights[0].Type)
	assert.Equal(t, fixedTime(), report.GeneratedAt)
}

func TestAggregateFiltersLowConfidence(t *testing.T) {
	weak := billingCandidate()
	weak.Confidence = 0.2
	store := NewMemoryStore()
	agg := newTestAggregator(t, store, []Analyzer{staticAnalyzer("weak", weak)})

	report, err := agg.Aggregate(context.Background(), nil, Scope{})
	require.NoError(t, err)
	assert.Empty(t, report.Insights)
	assert.Zero(t, report.Confidence)
}

func TestAggregateDropsInvalidCandidates(t *testing.T) {
	invalid := billingCandidate()
	invalid.TicketIDs = nil
	store := NewMemoryStore()
	agg := newTestAggregator(t, store, []Analyzer{
		staticAnalyzer("mixed", invalid, billingCandidate()),
	})

	report, err := agg.Aggregate(context.Background(), nil, Scope{})
	require.NoError(t, err)
	assert.Len(t, report.Insights, 1)
}

func TestAggregateSurvivesAnalyzerPanic(t *testing.T) {
	panicking := Analyzer{
		Name: "broken",
		Run: func([]ticket.AnalyticsRecord, time.Time) []Candidate {
			panic("boom")
		},
	}
	store := NewMemoryStore()
	agg := newTestAggregator(t, store, []Analyzer{
		panicking,
		staticAnalyzer("billing", billingCandidate()),
	})

	report, err := agg.Aggregate(context.Background(), nil, Scope{})
	require.NoError(t, err)
	assert.Len(t, report.Insights, 1)
}

func TestOverallConfidence(t *testing.T) {
	assert.Zero(t, overallConfidence(nil, 50))

	// The volume bonus tracks the record batch, not the candidate count.
	two := []Candidate{{Confidence: 0.6}, {Confidence: 0.8}}
	assert.InDelta(t, 0.80, overallConfidence(two, 10), 1e-9)
	assert.InDelta(t, 0.70, overallConfidence(two, 0), 1e-9)

	// 150 records would add 1.5 but the bonus clamps at 0.2.
	assert.InDelta(t, 0.90, overallConfidence(two, 150), 1e-9)

	// High mean plus a clamped bonus still caps at 0.95.
	one := []Candidate{{Confidence: 0.9}}
	assert.InDelta(t, 0.95, overallConfidence(one, 150), 1e-9)
}

func TestAggregateConfidenceTracksRecordCount(t *testing.T) {
	c := billingCandidate()
	c.Confidence = 0.6
	store := NewMemoryStore()
	agg := newTestAggregator(t, store, []Analyzer{staticAnalyzer("billing", c)})

	records := make([]ticket.AnalyticsRecord, 10)
	report, err := agg.Aggregate(context.Background(), records, Scope{Organization: "acme"})
	require.NoError(t, err)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, 10, report.RecordCount)
	assert.InDelta(t, 0.70, report.Confidence, 1e-9)
}

func TestRecommendationsUnionAndEscalation(t *testing.T) {
	candidates := []Candidate{
		{
			Severity: ticket.SeverityCritical,
			Category: CategoryCustomerRetention,
			Metadata: map[string]interface{}{
				"resourceRecommendations": []string{"hire_senior_engineers"},
			},
		},
		{
			Category: CategoryCustomerRetention,
			Metadata: map[string]interface{}{
				"interventionOpportunities": []string{"retention_campaign", "hire_senior_engineers"},
			},
		},
		{
			Metadata: map[string]interface{}{
				"protectionStrategies": []string{"priority_escalation"},
			},
		},
	}
	got := recommendations(candidates)
	assert.Equal(t, []string{
		"hire_senior_engineers",
		"retention_campaign",
		"priority_escalation",
		"executive_review_required",
		"customer_retention_strategy_review",
	}, got)
}

func TestRecommendationsEmptyWithoutTriggers(t *testing.T) {
	got := recommendations([]Candidate{{Severity: ticket.SeverityMedium}})
	assert.Empty(t, got)
}
