package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

type stubClassifier struct {
	intents []string
	err     error
}

func (s stubClassifier) Classify(_ context.Context, _, _ string) ([]string, error) {
	return s.intents, s.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestExtractUrgentRefundComplaint(t *testing.T) {
	e := NewExtractor(stubClassifier{intents: []string{"complaint"}}, nil, nil,
		WithClock(fixedClock(time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC))))

	rec := e.Extract(context.Background(), ticket.Ticket{
		ExternalID:  "T-1001",
		Subject:     "Refund request",
		Description: "This is urgent! I want a refund, your product is broken and I'm very frustrated",
	})

	assert.Equal(t, ticket.UrgencyHigh, rec.Urgency)
	assert.InDelta(t, 0.7, rec.EscalationRisk, 1e-9)
	assert.True(t, rec.IsComplaint)
	assert.Equal(t, "complaint", rec.Category)
	assert.Equal(t, ticket.SeverityCritical, rec.Severity)
	assert.Equal(t, ticket.SentimentNegative, rec.Sentiment)
	assert.True(t, rec.LikelyToEscalate)
	assert.True(t, rec.ChurnRisk)
	assert.Equal(t, ticket.ExpectImmediate, rec.ResponseExpectation)
}

func TestExtractPasswordQuestion(t *testing.T) {
	e := NewExtractor(stubClassifier{intents: []string{"question"}}, nil, nil)

	rec := e.Extract(context.Background(), ticket.Ticket{
		ExternalID: "T-1002",
		Subject:    "How do I reset my password?",
	})

	assert.Equal(t, "question", rec.Category)
	assert.True(t, rec.HasInformationGap)
	assert.True(t, rec.KnowledgeBaseGap)
	assert.Equal(t, ticket.SeverityMedium, rec.Severity)
	assert.Equal(t, ticket.UrgencyMedium, rec.Urgency)
	assert.Contains(t, rec.Keywords, "password")
	assert.InDelta(t, 60, rec.ResolutionPrediction, 1e-9)
	assert.InDelta(t, 0.8, rec.ResolutionConfidence, 1e-9)
}

func TestExtractUsesTicketTime(t *testing.T) {
	clock := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	e := NewExtractor(stubClassifier{intents: []string{"question"}}, nil, nil,
		WithClock(fixedClock(clock)))

	opened := time.Date(2025, time.December, 15, 9, 30, 0, 0, time.UTC)
	rec := e.Extract(context.Background(), ticket.Ticket{
		ExternalID: "T-2001",
		Subject:    "Cannot log in",
		CreatedAt:  opened,
	})

	assert.Equal(t, opened, rec.CreatedAt)
	assert.Equal(t, clock, rec.UpdatedAt)
	// Seasonality follows the ticket's opening time, not the extraction time.
	assert.Equal(t, "holiday_season", rec.SeasonalPattern)

	undated := e.Extract(context.Background(), ticket.Ticket{
		ExternalID: "T-2002",
		Subject:    "Cannot log in",
	})
	assert.Equal(t, clock, undated.CreatedAt)
}

func TestExtractDefaultsChannelSource(t *testing.T) {
	e := NewExtractor(stubClassifier{intents: []string{"question"}}, nil, nil)

	rec := e.Extract(context.Background(), ticket.Ticket{ExternalID: "T-2003", Subject: "Help"})
	assert.Equal(t, "web", rec.ChannelSource)

	rec = e.Extract(context.Background(), ticket.Ticket{
		ExternalID:    "T-2004",
		Subject:       "Help",
		ChannelSource: "email",
	})
	assert.Equal(t, "email", rec.ChannelSource)
}

func TestExtractIsDeterministic(t *testing.T) {
	now := time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)
	tk := ticket.Ticket{
		ExternalID:   "T-2000",
		Subject:      "Integration webhook failing",
		Description:  "The API webhook integration throws an error every time we sync orders.",
		Organization: "acme-corp",
	}

	a := NewExtractor(stubClassifier{intents: []string{"complaint"}}, nil, nil, WithClock(fixedClock(now)))
	b := NewExtractor(stubClassifier{intents: []string{"complaint"}}, nil, nil, WithClock(fixedClock(now)))

	assert.Equal(t, a.Extract(context.Background(), tk), b.Extract(context.Background(), tk))
}

func TestExtractScoreRanges(t *testing.T) {
	texts := []struct {
		name        string
		subject     string
		description string
	}{
		{"empty", "", ""},
		{"furious escalation", "TERRIBLE service", "This is terrible, awful and horrible. I want a manager, my lawyer will hear about this! Urgent!!!"},
		{"glowing praise", "Love it", "Amazing product, excellent support, love everything about it. Perfect!"},
		{"deep technical", "API integration broken", "The oauth authentication on the api webhook integration fails with an ssl error. Stack trace and logs attached. Database server returns malformed json and xml."},
		{"long rambling", "Question", string(make([]byte, 0)) + "I was wondering, maybe, somehow, if it is possible that sometimes the page might be slow? " + longFiller(1200)},
	}

	e := NewExtractor(stubClassifier{intents: []string{"question", "complaint"}}, nil, nil)
	for _, tc := range texts {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.Extract(context.Background(), ticket.Ticket{
				ExternalID:  "T-range",
				Subject:     tc.subject,
				Description: tc.description,
			})
			assert.GreaterOrEqual(t, rec.EscalationRisk, 0.0)
			assert.LessOrEqual(t, rec.EscalationRisk, 1.0)
			assert.GreaterOrEqual(t, rec.SatisfactionPrediction, 1.0)
			assert.LessOrEqual(t, rec.SatisfactionPrediction, 10.0)
			assert.GreaterOrEqual(t, rec.ComplexityScore, 1.0)
			assert.LessOrEqual(t, rec.ComplexityScore, 10.0)
			assert.GreaterOrEqual(t, rec.EmotionalIntensity, 1.0)
			assert.LessOrEqual(t, rec.EmotionalIntensity, 10.0)
			assert.GreaterOrEqual(t, rec.TechnicalComplexity, 1.0)
			assert.LessOrEqual(t, rec.TechnicalComplexity, 10.0)
			assert.GreaterOrEqual(t, rec.BusinessCriticality, 1.0)
			assert.LessOrEqual(t, rec.BusinessCriticality, 10.0)
			assert.GreaterOrEqual(t, rec.ResolutionConfidence, 0.0)
			assert.LessOrEqual(t, rec.ResolutionConfidence, 1.0)
			assert.Greater(t, rec.ResolutionPrediction, 0.0)
			assert.Equal(t, ticket.AnalyticsVersion, rec.Version)
			assert.NotEmpty(t, rec.Intents)
		})
	}
}

func longFiller(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
		if i%8 == 7 {
			b[i] = ' '
		}
	}
	return string(b)
}

func TestClassifierFailureFallsBack(t *testing.T) {
	e := NewExtractor(stubClassifier{err: errors.New("service unavailable")}, nil, nil)

	rec := e.Extract(context.Background(), ticket.Ticket{
		ExternalID:  "T-3000",
		Description: "the dashboard is slow",
	})

	assert.Equal(t, []string{"general_inquiry"}, rec.Intents)
	assert.Equal(t, "general", rec.Category)
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ticket.Sentiment
	}{
		{"clearly negative", "this is terrible and broken and slow", ticket.SentimentNegative},
		{"clearly positive", "great product, love it, easy to use", ticket.SentimentPositive},
		{"balanced", "great but broken", ticket.SentimentNeutral},
		{"no signal", "the invoice from march", ticket.SentimentNeutral},
		{"phrase match", "the export doesn't work anymore", ticket.SentimentNegative},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, analyzeSentiment(tc.text))
		})
	}
}

func TestSeverityAndUrgencyBuckets(t *testing.T) {
	tests := []struct {
		text     string
		severity ticket.Severity
		urgency  ticket.Urgency
	}{
		{"production is down, total outage", ticket.SeverityCritical, ticket.UrgencyMedium},
		{"please fix asap, checkout is broken", ticket.SeverityHigh, ticket.UrgencyHigh},
		{"minor cosmetic issue with the footer", ticket.SeverityLow, ticket.UrgencyMedium},
		{"the export button moved", ticket.SeverityMedium, ticket.UrgencyMedium},
		{"no rush, whenever you get to it", ticket.SeverityMedium, ticket.UrgencyLow},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.severity, assessSeverity(tc.text))
			assert.Equal(t, tc.urgency, assessUrgency(tc.text))
		})
	}
}

func TestExtractKeywordsRanksByFrequency(t *testing.T) {
	got := extractKeywords("billing billing billing payment payment error refund")
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"billing", "payment", "error", "refund"}, got)
}

func TestExtractKeywordsDropsSensitiveTokens(t *testing.T) {
	got := extractKeywords("error code 123456 in the billing page for AcmeCloud")
	assert.Contains(t, got, "error")
	assert.Contains(t, got, "billing")
	assert.NotContains(t, got, "123456")
	assert.NotContains(t, got, "AcmeCloud")
}

func TestPredictResolutionTime(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		severity ticket.Severity
		urgency  ticket.Urgency
		want     float64
	}{
		{"critical high urgency", "total outage", ticket.SeverityCritical, ticket.UrgencyHigh, 15},
		{"medium baseline", "the button moved", ticket.SeverityMedium, ticket.UrgencyMedium, 60},
		{"low severity low urgency", "whenever you can", ticket.SeverityLow, ticket.UrgencyLow, 240},
		{"integration doubles", "api integration issue", ticket.SeverityMedium, ticket.UrgencyMedium, 120},
		{"simple discounts", "simple question about fonts", ticket.SeverityMedium, ticket.UrgencyMedium, 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, predictResolutionTime(tc.text, tc.severity, tc.urgency), 1e-9)
		})
	}
}

func TestRevenueImpactCheckOrder(t *testing.T) {
	// Direct billing language is checked before the outage cues.
	assert.Equal(t, ticket.ImpactHigh, revenueImpact("billing broken during the outage", []string{"billing"}))
	assert.Equal(t, ticket.ImpactMedium, revenueImpact("cannot update my profile", []string{"account_management"}))
	assert.Equal(t, ticket.ImpactCritical, revenueImpact("production downtime right now", nil))
	assert.Equal(t, ticket.ImpactLow, revenueImpact("the font looks off", nil))
}

func TestRepeatCustomerDetection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, ticket.AnalyticsRecord{
		ExternalTicketID: "T-1",
		Organization:     "acme",
	}))

	e := NewExtractor(stubClassifier{intents: []string{"question"}}, store, nil)

	rec := e.Extract(ctx, ticket.Ticket{ExternalID: "T-2", Organization: "acme", Subject: "billing question"})
	assert.True(t, rec.IsRepeatCustomer)
	assert.Equal(t, ticket.JourneyActive, rec.CustomerJourneyStage)

	// The customer's own record does not make them a repeat customer.
	rec = e.Extract(ctx, ticket.Ticket{ExternalID: "T-1", Organization: "acme", Subject: "billing question"})
	assert.False(t, rec.IsRepeatCustomer)

	rec = e.Extract(ctx, ticket.Ticket{ExternalID: "T-3", Subject: "billing question"})
	assert.False(t, rec.IsRepeatCustomer, "empty organization never counts as repeat")
}

func TestCustomerSegment(t *testing.T) {
	assert.Equal(t, ticket.SegmentEnterprise, customerSegment("Initech Corp"))
	assert.Equal(t, ticket.SegmentEnterprise, customerSegment("enterprise-12"))
	assert.Equal(t, ticket.SegmentTrial, customerSegment("demo-team"))
	assert.Equal(t, ticket.SegmentSMB, customerSegment("corner-bakery"))
	assert.Equal(t, ticket.Segment(""), customerSegment(""))
}

func TestSeasonalPattern(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"december is holiday season", time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), "holiday_season"},
		{"january is holiday season", time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), "holiday_season"},
		{"month end", time.Date(2024, time.July, 30, 0, 0, 0, 0, time.UTC), "month_end"},
		{"month start counts as month end", time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC), "month_end"},
		{"quarter end", time.Date(2024, time.June, 26, 0, 0, 0, 0, time.UTC), "quarter_end"},
		{"mid month", time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, seasonalPattern(tc.at))
		})
	}
}

func TestSimilarTicketPattern(t *testing.T) {
	assert.Equal(t, "login_payment", similarTicketPattern("payment fails after login"))
	assert.Equal(t, "bug_bug", similarTicketPattern("a bug, then the same bug again"))
	assert.Equal(t, "", similarTicketPattern("nothing recognizable here"))
}

func TestProcessPersistsRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := NewExtractor(stubClassifier{intents: []string{"question"}}, store, nil)

	rec, err := e.Process(ctx, ticket.Ticket{ExternalID: "T-10", Organization: "acme", Subject: "billing help"})
	require.NoError(t, err)

	saved, err := store.QueryRecent(ctx, QueryFilter{Organization: "acme"})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, rec.ExternalTicketID, saved[0].ExternalTicketID)
}
