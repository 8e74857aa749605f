package ticket

import "time"

// Sentiment is the overall sentiment classification of a ticket.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Severity classifies how severe the reported problem is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the ordinal weight of a severity for comparisons
// (low < medium < high < critical). Unknown severities rank as medium.
func (s Severity) Weight() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 2
	}
}

// Urgency classifies how quickly the customer expects resolution.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// JourneyStage places the customer in their lifecycle with the product.
type JourneyStage string

const (
	JourneyOnboarding JourneyStage = "onboarding"
	JourneyActive     JourneyStage = "active"
	JourneyAtRisk     JourneyStage = "at_risk"
	JourneyChurning   JourneyStage = "churning"
	JourneyUnknown    JourneyStage = "unknown"
)

// Segment is a coarse customer segmentation bucket.
type Segment string

const (
	SegmentEnterprise Segment = "enterprise"
	SegmentSMB        Segment = "smb"
	SegmentIndividual Segment = "individual"
	SegmentTrial      Segment = "trial"
)

// ImpactLevel grades operational or business impact.
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// CommunicationStyle classifies how the customer writes.
type CommunicationStyle string

const (
	StyleFormal    CommunicationStyle = "formal"
	StyleCasual    CommunicationStyle = "casual"
	StyleTechnical CommunicationStyle = "technical"
	StyleEmotional CommunicationStyle = "emotional"
)

// ResponseExpectation classifies how fast the customer expects a reply.
type ResponseExpectation string

const (
	ExpectImmediate ResponseExpectation = "immediate"
	ExpectSameDay   ResponseExpectation = "same_day"
	ExpectFlexible  ResponseExpectation = "flexible"
)

// Tone is the recommended tone for the human-facing reply.
type Tone string

const (
	ToneHelpful    Tone = "helpful"
	ToneApologetic Tone = "apologetic"
	ToneTechnical  Tone = "technical"
	ToneReassuring Tone = "reassuring"
)

// AnalyticsVersion tags records with the extraction ruleset version.
const AnalyticsVersion = "2.0"

// AnalyticsRecord is the structured feature set extracted from one ticket.
//
// A record is immutable once written: later tickets create new records,
// never mutate old ones. All scalar scores are range-bounded; the ranges
// are documented per field and enforced by the extractor.
type AnalyticsRecord struct {
	// Identity.
	ExternalTicketID string `json:"external_ticket_id" bson:"externalTicketId"`
	Organization     string `json:"organization,omitempty" bson:"organization,omitempty"`
	ProductID        string `json:"product_id,omitempty" bson:"productId,omitempty"`

	// Categorical signals.
	Sentiment Sentiment `json:"sentiment" bson:"sentiment"`
	Intents   []string  `json:"intents" bson:"intents"`
	Category  string    `json:"category" bson:"category"`
	Severity  Severity  `json:"severity" bson:"severity"`
	Urgency   Urgency   `json:"urgency" bson:"urgency"`
	Language  string    `json:"language" bson:"language"`

	// Anonymized content analysis.
	Keywords []string `json:"keywords" bson:"keywords"`
	Topics   []string `json:"topics" bson:"topics"`

	HasAttachments bool   `json:"has_attachments" bson:"hasAttachments"`
	ChannelSource  string `json:"channel_source" bson:"channelSource"`

	// Insight flags.
	IsComplaint       bool `json:"is_complaint" bson:"isComplaint"`
	IsFeatureRequest  bool `json:"is_feature_request" bson:"isFeatureRequest"`
	HasQualityIssue   bool `json:"has_quality_issue" bson:"hasQualityIssue"`
	HasInformationGap bool `json:"has_information_gap" bson:"hasInformationGap"`

	// Customer behavior.
	CustomerJourneyStage   JourneyStage `json:"customer_journey_stage" bson:"customerJourneyStage"`
	EscalationRisk         float64      `json:"escalation_risk" bson:"escalationRisk"`                 // [0,1]
	SatisfactionPrediction float64      `json:"satisfaction_prediction" bson:"satisfactionPrediction"` // [1,10]
	IsRepeatCustomer       bool         `json:"is_repeat_customer" bson:"isRepeatCustomer"`
	CustomerSegment        Segment      `json:"customer_segment,omitempty" bson:"customerSegment,omitempty"`

	// Operational intelligence.
	ComplexityScore      float64     `json:"complexity_score" bson:"complexityScore"`           // [1,10]
	ResolutionPrediction float64     `json:"resolution_prediction" bson:"resolutionPrediction"` // minutes
	WorkloadImpact       ImpactLevel `json:"workload_impact" bson:"workloadImpact"`

	// Business intelligence.
	RevenueImpact       ImpactLevel `json:"revenue_impact" bson:"revenueImpact"`
	FeaturesAffected    []string    `json:"features_affected" bson:"featuresAffected"`
	CompetitorMentioned bool        `json:"competitor_mentioned" bson:"competitorMentioned"`
	CompetitorNames     []string    `json:"competitor_names" bson:"competitorNames"`
	PriceRelated        bool        `json:"price_related" bson:"priceRelated"`
	IntegrationRelated  bool        `json:"integration_related" bson:"integrationRelated"`

	// Predictive flags.
	LikelyToEscalate   bool `json:"likely_to_escalate" bson:"likelyToEscalate"`
	ChurnRisk          bool `json:"churn_risk" bson:"churnRisk"`
	UpsellOpportunity  bool `json:"upsell_opportunity" bson:"upsellOpportunity"`
	RequiresSpecialist bool `json:"requires_specialist" bson:"requiresSpecialist"`

	// Quality assurance flags.
	DocumentationGap    bool `json:"documentation_gap" bson:"documentationGap"`
	KnowledgeBaseGap    bool `json:"knowledge_base_gap" bson:"knowledgeBaseGap"`
	TrainingOpportunity bool `json:"training_opportunity" bson:"trainingOpportunity"`
	ProcessImprovement  bool `json:"process_improvement" bson:"processImprovement"`

	// Communication analysis.
	CommunicationStyle  CommunicationStyle  `json:"communication_style" bson:"communicationStyle"`
	ResponseExpectation ResponseExpectation `json:"response_expectation" bson:"responseExpectation"`
	PreferredTone       Tone                `json:"preferred_tone" bson:"preferredTone"`

	// Pattern recognition.
	SimilarTicketPattern string `json:"similar_ticket_pattern,omitempty" bson:"similarTicketPattern,omitempty"`
	SeasonalPattern      string `json:"seasonal_pattern,omitempty" bson:"seasonalPattern,omitempty"`
	BehavioralPattern    string `json:"behavioral_pattern,omitempty" bson:"behavioralPattern,omitempty"`

	// Advanced metrics.
	EmotionalIntensity   float64 `json:"emotional_intensity" bson:"emotionalIntensity"`     // [1,10]
	TechnicalComplexity  float64 `json:"technical_complexity" bson:"technicalComplexity"`   // [1,10]
	BusinessCriticality  float64 `json:"business_criticality" bson:"businessCriticality"`   // [1,10]
	ResolutionConfidence float64 `json:"resolution_confidence" bson:"resolutionConfidence"` // [0,1]

	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`

	Version string `json:"analytics_version" bson:"analyticsVersion"`
}
