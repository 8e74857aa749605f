package insight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/analytics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

func TestSweepAggregatesPerTenant(t *testing.T) {
	records := analytics.NewMemoryStore()
	now := time.Now()
	for i, org := range []string{"acme", "acme", "globex", "globex"} {
		require.NoError(t, records.Save(context.Background(), ticket.AnalyticsRecord{
			ExternalTicketID: "T-" + string(rune('a'+i)),
			Organization:     org,
			ChurnRisk:        true,
			CustomerSegment:  ticket.SegmentSMB,
			Keywords:         []string{"cancel"},
			CreatedAt:        now.Add(-time.Hour),
		}))
	}

	insights := NewMemoryStore()
	merger := NewMerger(insights, nil)
	agg := NewAggregator(merger, nil, nil, WithAnalyzers([]Analyzer{
		{Name: "churn_risk", Run: analyzeChurnRisk},
	}))
	sched := NewScheduler(SchedulerConfig{}, records, agg, nil)

	require.NoError(t, sched.Sweep(context.Background()))

	acme, err := insights.FindWithFilters(context.Background(), ListFilter{Organization: "acme"}, Page{})
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, TypeChurnRisk, acme[0].Type)

	globex, err := insights.FindWithFilters(context.Background(), ListFilter{Organization: "globex"}, Page{})
	require.NoError(t, err)
	assert.Len(t, globex, 1)
}

func TestSweepNoRecordsIsNoop(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{}, analytics.NewMemoryStore(), nil, nil)
	assert.NoError(t, sched.Sweep(context.Background()))
}

func TestSchedulerStartStop(t *testing.T) {
	records := analytics.NewMemoryStore()
	merger := NewMerger(NewMemoryStore(), nil)
	agg := NewAggregator(merger, nil, nil, WithAnalyzers(nil))
	sched := NewScheduler(SchedulerConfig{Interval: 10 * time.Millisecond}, records, agg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	sched.Stop()
}
