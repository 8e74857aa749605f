package insight

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/metrics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// minCandidateConfidence is the floor below which candidates are discarded
// instead of persisted.
const minCandidateConfidence = 0.3

// Report summarizes one aggregation run.
type Report struct {
	Insights        []Insight `json:"insights"`
	Confidence      float64   `json:"confidence"`
	Recommendations []string  `json:"recommendations"`
	RecordCount     int       `json:"record_count"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Aggregator runs the analyzer suite over a record batch and folds the
// surviving candidates into the insight store.
type Aggregator struct {
	analyzers []Analyzer
	merger    *Merger
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithAggregatorClock overrides the wall clock, for deterministic tests.
func WithAggregatorClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// WithAnalyzers replaces the default analyzer suite.
func WithAnalyzers(analyzers []Analyzer) AggregatorOption {
	return func(a *Aggregator) { a.analyzers = analyzers }
}

func NewAggregator(merger *Merger, logger *zap.Logger, m *metrics.Metrics, opts ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		analyzers: DefaultAnalyzers(),
		merger:    merger,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate analyzes the batch and persists every candidate that clears
// validation and the confidence floor. One failing analyzer or one failing
// persist does not abort the run.
func (a *Aggregator) Aggregate(ctx context.Context, records []ticket.AnalyticsRecord, scope Scope) (*Report, error) {
	now := a.now()

	var candidates []Candidate
	for _, analyzer := range a.analyzers {
		found, err := a.runAnalyzer(analyzer, records, now)
		if err != nil {
			if a.metrics != nil {
				a.metrics.AnalyzerFailures.WithLabelValues(analyzer.Name).Inc()
			}
			a.logger.Error("analyzer failed",
				zap.String("analyzer", analyzer.Name),
				zap.Error(err))
			continue
		}
		candidates = append(candidates, found...)
	}

	var kept []Candidate
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			a.logger.Warn("dropping invalid candidate",
				zap.String("type", string(c.Type)),
				zap.Error(err))
			continue
		}
		if c.Confidence <= minCandidateConfidence {
			if a.metrics != nil {
				a.metrics.InsightsFiltered.Inc()
			}
			continue
		}
		kept = append(kept, c)
	}

	report := &Report{
		Confidence:      overallConfidence(kept, len(records)),
		Recommendations: recommendations(kept),
		RecordCount:     len(records),
		GeneratedAt:     now,
	}

	for _, c := range kept {
		ins, err := a.merger.Upsert(ctx, c, scope)
		if err != nil {
			a.logger.Error("persisting insight failed",
				zap.String("type", string(c.Type)),
				zap.String("title", c.Title),
				zap.Error(err))
			continue
		}
		if a.metrics != nil {
			if ins.Frequency > c.Frequency {
				a.metrics.InsightsMerged.WithLabelValues(string(c.Type)).Inc()
			} else {
				a.metrics.InsightsCreated.WithLabelValues(string(c.Type)).Inc()
			}
		}
		report.Insights = append(report.Insights, *ins)
	}

	if a.metrics != nil {
		a.metrics.AggregationRuns.WithLabelValues("success").Inc()
	}
	a.logger.Info("aggregation run complete",
		zap.Int("records", len(records)),
		zap.Int("candidates", len(candidates)),
		zap.Int("persisted", len(report.Insights)),
		zap.String("organization", scope.Organization))
	return report, nil
}

// runAnalyzer converts an analyzer panic into an error so one bad analyzer
// cannot take down the run.
func (a *Aggregator) runAnalyzer(analyzer Analyzer, records []ticket.AnalyticsRecord, now time.Time) (out []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("analyzer %s panicked: %v", analyzer.Name, r)
		}
	}()
	return analyzer.Run(records, now), nil
}

// overallConfidence is the mean candidate confidence with a small bonus for
// the size of the record batch, capped at 0.95. An empty run scores zero.
func overallConfidence(candidates []Candidate, recordCount int) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.Confidence
	}
	avg := sum / float64(len(candidates))
	bonus := float64(recordCount) / 100
	if bonus > 0.2 {
		bonus = 0.2
	}
	conf := avg + bonus
	if conf > maxCandidateConfidence {
		return maxCandidateConfidence
	}
	return conf
}

// recommendations unions the actionable recommendation lists carried in
// candidate metadata and appends cross-cutting ones for severe batches.
func recommendations(candidates []Candidate) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	anyCritical := false
	retention := 0
	for _, c := range candidates {
		for _, key := range []string{"resourceRecommendations", "interventionOpportunities", "protectionStrategies"} {
			if list, ok := c.Metadata[key].([]string); ok {
				for _, rec := range list {
					add(rec)
				}
			}
		}
		if c.Severity == ticket.SeverityCritical {
			anyCritical = true
		}
		if c.Category == CategoryCustomerRetention {
			retention++
		}
	}
	if anyCritical {
		add("executive_review_required")
	}
	if retention >= 2 {
		add("customer_retention_strategy_review")
	}
	return out
}
