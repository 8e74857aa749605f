// Package insight aggregates ticket analytics into deduplicated, confidence
// scored insights about recurring patterns.
package insight

import (
	"errors"
	"fmt"
	"time"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// Type identifies the pattern an insight describes. The set is closed;
// unknown types are rejected at the aggregation boundary.
type Type string

const (
	TypeProductComplaint Type = "product_complaint"
	TypeInformationGap   Type = "information_gap"
	TypeFeatureRequest   Type = "feature_request"
	TypeBugPattern       Type = "bug_pattern"
	TypeSatisfactionTrend Type = "satisfaction_trend"
	TypeSupportBottleneck Type = "support_bottleneck"
	TypeCustomerBehavior  Type = "customer_behavior"
	TypeSeasonalPattern   Type = "seasonal_pattern"

	TypeChurnRisk             Type = "churn_risk"
	TypeEscalationPattern     Type = "escalation_pattern"
	TypeCustomerJourneyIssue  Type = "customer_journey_issue"
	TypeRepeatCustomerPattern Type = "repeat_customer_pattern"

	TypeAgentWorkloadImbalance Type = "agent_workload_imbalance"
	TypeResolutionTimeAnomaly  Type = "resolution_time_anomaly"
	TypeComplexitySurge        Type = "complexity_surge"
	TypeSpecialistDemand       Type = "specialist_demand"

	TypeRevenueImpactAlert    Type = "revenue_impact_alert"
	TypeFeatureAdoptionIssue  Type = "feature_adoption_issue"
	TypeCompetitorThreat      Type = "competitor_threat"
	TypePricingConcern        Type = "pricing_concern"
	TypeIntegrationBottleneck Type = "integration_bottleneck"
	TypeUpsellOpportunity     Type = "upsell_opportunity"

	TypeDocumentationGap    Type = "documentation_gap"
	TypeKnowledgeBaseGap    Type = "knowledge_base_gap"
	TypeTrainingOpportunity Type = "training_opportunity"
	TypeProcessImprovement  Type = "process_improvement"

	TypeCommunicationMismatch   Type = "communication_mismatch"
	TypeResponseExpectationGap  Type = "response_expectation_gap"
	TypeEmotionalIntensitySpike Type = "emotional_intensity_spike"

	TypeSatisfactionDeclinePrediction Type = "satisfaction_decline_prediction"
	TypeWorkloadForecastAlert         Type = "workload_forecast_alert"
	TypeSeasonalSurgePrediction       Type = "seasonal_surge_prediction"

	TypeMarketFeedback          Type = "market_feedback"
	TypeProductRoadmapSignal    Type = "product_roadmap_signal"
	TypeCompetitiveIntelligence Type = "competitive_intelligence"
)

// knownTypes gates candidate validation.
var knownTypes = map[Type]bool{
	TypeProductComplaint: true, TypeInformationGap: true, TypeFeatureRequest: true,
	TypeBugPattern: true, TypeSatisfactionTrend: true, TypeSupportBottleneck: true,
	TypeCustomerBehavior: true, TypeSeasonalPattern: true, TypeChurnRisk: true,
	TypeEscalationPattern: true, TypeCustomerJourneyIssue: true, TypeRepeatCustomerPattern: true,
	TypeAgentWorkloadImbalance: true, TypeResolutionTimeAnomaly: true, TypeComplexitySurge: true,
	TypeSpecialistDemand: true, TypeRevenueImpactAlert: true, TypeFeatureAdoptionIssue: true,
	TypeCompetitorThreat: true, TypePricingConcern: true, TypeIntegrationBottleneck: true,
	TypeUpsellOpportunity: true, TypeDocumentationGap: true, TypeKnowledgeBaseGap: true,
	TypeTrainingOpportunity: true, TypeProcessImprovement: true, TypeCommunicationMismatch: true,
	TypeResponseExpectationGap: true, TypeEmotionalIntensitySpike: true,
	TypeSatisfactionDeclinePrediction: true, TypeWorkloadForecastAlert: true,
	TypeSeasonalSurgePrediction: true, TypeMarketFeedback: true,
	TypeProductRoadmapSignal: true, TypeCompetitiveIntelligence: true,
}

// Category is the business area an insight belongs to.
type Category string

const (
	CategoryProductQuality       Category = "product_quality"
	CategoryDocumentation        Category = "documentation"
	CategoryUserExperience       Category = "user_experience"
	CategoryTechnicalIssues      Category = "technical_issues"
	CategoryBillingPayment       Category = "billing_payment"
	CategoryFeatureRequests      Category = "feature_requests"
	CategoryCustomerSatisfaction Category = "customer_satisfaction"
	CategoryOperational          Category = "operational"

	CategoryCustomerRetention         Category = "customer_retention"
	CategoryBusinessIntelligence      Category = "business_intelligence"
	CategoryCompetitiveAnalysis       Category = "competitive_analysis"
	CategoryResourceOptimization      Category = "resource_optimization"
	CategoryQualityAssurance          Category = "quality_assurance"
	CategoryCommunicationOptimization Category = "communication_optimization"
	CategoryPredictiveAnalytics       Category = "predictive_analytics"
	CategoryStrategicPlanning         Category = "strategic_planning"
	CategoryRevenueProtection         Category = "revenue_protection"
	CategoryProcessOptimization       Category = "process_optimization"
)

// Status is the lifecycle state of an insight.
type Status string

const (
	StatusActive        Status = "active"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusDismissed     Status = "dismissed"
)

// Trend describes how the pattern's frequency is developing.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendVolatile   Trend = "volatile"
)

// maxInsightKeywords caps the keyword set after merging.
const maxInsightKeywords = 20

// Action records an operator action taken on an insight.
type Action struct {
	Type        string    `json:"type" bson:"type"`
	Description string    `json:"description" bson:"description"`
	PerformedBy string    `json:"performed_by" bson:"performedBy"`
	PerformedAt time.Time `json:"performed_at" bson:"performedAt"`
}

// Insight is one deduplicated recurring pattern. It is the mutable aggregate
// the merge protocol maintains: one logical record per detected pattern.
type Insight struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	Type        Type           `json:"type" bson:"type"`
	Category    Category       `json:"category" bson:"category"`
	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description" bson:"description"`
	Severity    ticket.Severity `json:"severity" bson:"severity"`
	Status      Status         `json:"status" bson:"status"`
	Trend       Trend          `json:"trend" bson:"trend"`

	Confidence float64 `json:"confidence" bson:"confidence"`
	Frequency  int     `json:"frequency" bson:"frequency"`

	Organization string   `json:"organization,omitempty" bson:"organization,omitempty"`
	ProductID    string   `json:"product_id,omitempty" bson:"productId,omitempty"`
	TicketIDs    []string `json:"ticket_ids" bson:"ticketIds"`
	Keywords     []string `json:"keywords" bson:"keywords"`
	Patterns     []string `json:"patterns" bson:"patterns"`
	Tags         []string `json:"tags" bson:"tags"`

	Metadata map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`

	ActionRequired bool     `json:"action_required" bson:"actionRequired"`
	Actions        []Action `json:"actions,omitempty" bson:"actions,omitempty"`

	FirstDetected  time.Time `json:"first_detected" bson:"firstDetected"`
	LastUpdated    time.Time `json:"last_updated" bson:"lastUpdated"`
	DateRangeStart time.Time `json:"date_range_start" bson:"dateRangeStart"`
	DateRangeEnd   time.Time `json:"date_range_end" bson:"dateRangeEnd"`
}

// Candidate is the ephemeral, pre-merge output of one analyzer run.
type Candidate struct {
	Type        Type
	Title       string
	Description string
	Severity    ticket.Severity
	Category    Category
	Confidence  float64
	Frequency   int
	Keywords    []string
	TicketIDs   []string
	Patterns    []string
	Metadata    map[string]interface{}
}

var errInvalidCandidate = errors.New("invalid candidate insight")

// Validate checks the structural invariants a candidate must satisfy before
// entering the merge protocol, including that metadata values have
// store-representable shapes.
func (c Candidate) Validate() error {
	if !knownTypes[c.Type] {
		return fmt.Errorf("%w: unknown type %q", errInvalidCandidate, c.Type)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title required", errInvalidCandidate)
	}
	if len(c.TicketIDs) == 0 {
		return fmt.Errorf("%w: ticket ids required", errInvalidCandidate)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", errInvalidCandidate, c.Confidence)
	}
	if c.Frequency < 1 {
		return fmt.Errorf("%w: frequency %d out of range", errInvalidCandidate, c.Frequency)
	}
	for k, v := range c.Metadata {
		switch v.(type) {
		case string, bool, int, int64, float64, []string, map[string]interface{}, map[string]float64, map[string]int:
		default:
			return fmt.Errorf("%w: metadata key %q has unsupported type %T", errInvalidCandidate, k, v)
		}
	}
	return nil
}

// CategoryFor maps a type to its default category when an analyzer does not
// set one explicitly.
func CategoryFor(t Type) Category {
	switch t {
	case TypeProductComplaint, TypeBugPattern:
		return CategoryProductQuality
	case TypeInformationGap:
		return CategoryDocumentation
	case TypeFeatureRequest:
		return CategoryFeatureRequests
	case TypeSatisfactionTrend:
		return CategoryCustomerSatisfaction
	default:
		return CategoryOperational
	}
}

// RequiresAction reports whether a severity demands operator attention.
func RequiresAction(s ticket.Severity) bool {
	return s == ticket.SeverityHigh || s == ticket.SeverityCritical
}
