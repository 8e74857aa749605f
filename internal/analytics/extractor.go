package analytics

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/normalize"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// IntentClassifier labels a ticket with zero or more intent strings
// (complaint, question, request, ...). Implementations may call out to an
// external model service.
type IntentClassifier interface {
	Classify(ctx context.Context, subject, description string) ([]string, error)
}

// fallbackIntent is used whenever classification fails or yields nothing.
const fallbackIntent = "general_inquiry"

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithClock overrides the time source, making extraction deterministic in
// tests and replays.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) { e.now = now }
}

// Extractor turns raw tickets into AnalyticsRecords. It is safe for
// concurrent use.
type Extractor struct {
	classifier IntentClassifier
	store      Store
	logger     *zap.Logger
	now        func() time.Time
}

// NewExtractor builds an Extractor. classifier and store may be nil; a nil
// classifier always falls back to the general inquiry intent and a nil store
// disables repeat-customer detection.
func NewExtractor(classifier IntentClassifier, store Store, logger *zap.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		classifier: classifier,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full signal-extraction pipeline over one ticket. It never
// fails: degraded sub-steps (intent service down, store unreachable) fall
// back to neutral defaults and the result is always structurally valid.
func (e *Extractor) Extract(ctx context.Context, t ticket.Ticket) ticket.AnalyticsRecord {
	text := normalize.Text(t.Subject, t.Description)

	intents := e.classifyIntents(ctx, t)
	keywords := extractKeywords(text)
	topics := extractTopics(text)
	sentiment := analyzeSentiment(text)
	severity := assessSeverity(text)
	urgency := assessUrgency(text)
	complexity := complexityScore(text, intents)
	repeat := e.isRepeatCustomer(ctx, t)
	now := e.now().UTC()
	created := t.CreatedAt.UTC()
	if t.CreatedAt.IsZero() {
		created = now
	}

	rec := ticket.AnalyticsRecord{
		ExternalTicketID: t.ExternalID,
		Organization:     t.Organization,
		ProductID:        t.ProductID,

		Sentiment: sentiment,
		Intents:   intents,
		Category:  categorize(text, intents),
		Severity:  severity,
		Urgency:   urgency,
		Language:  detectLanguage(text),

		Keywords: keywords,
		Topics:   topics,

		HasAttachments: len(t.Attachments) > 0,
		ChannelSource:  channelOrDefault(t.ChannelSource),

		IsComplaint:       complaintRe.MatchString(text) || contains(intents, "complaint"),
		IsFeatureRequest:  featureRequestRe.MatchString(text),
		HasQualityIssue:   qualityIssueRe.MatchString(text),
		HasInformationGap: infoGapRe.MatchString(text) || (contains(intents, "question") && kbQuestionRe.MatchString(text)),

		CustomerJourneyStage:   journeyStage(text, repeat),
		EscalationRisk:         EscalationRiskRule.Score(text),
		SatisfactionPrediction: SatisfactionRule.Score(text),
		IsRepeatCustomer:       repeat,
		CustomerSegment:        customerSegment(t.Organization),

		ComplexityScore:      complexity,
		ResolutionPrediction: predictResolutionTime(text, severity, urgency),
		WorkloadImpact:       workloadImpact(complexity, severity),

		RevenueImpact:       revenueImpact(text, topics),
		FeaturesAffected:    featuresAffected(text, keywords),
		CompetitorMentioned: containsAny(text, competitorPhrases),
		PriceRelated:        priceRe.MatchString(text) || contains(topics, "billing"),
		IntegrationRelated:  integrationRelatedRe.MatchString(text),

		ChurnRisk:          churnRisk(text, sentiment, intents),
		UpsellOpportunity:  upsellRe.MatchString(text) || contains(intents, "request"),
		RequiresSpecialist: specialistRe.MatchString(text),

		DocumentationGap:    docGapRe.MatchString(text),
		KnowledgeBaseGap:    contains(intents, "question") && kbQuestionRe.MatchString(text),
		TrainingOpportunity: contains(topics, "user_interface") && trainingConfusionRe.MatchString(text),
		ProcessImprovement:  processFrictionRe.MatchString(text),

		CommunicationStyle:  communicationStyle(text),
		ResponseExpectation: responseExpectation(text),
		PreferredTone:       preferredTone(text),

		SimilarTicketPattern: similarTicketPattern(text),
		SeasonalPattern:      seasonalPattern(created),
		BehavioralPattern:    behavioralPattern(text),

		EmotionalIntensity:   emotionalIntensity(text, sentiment),
		TechnicalComplexity:  technicalComplexity(text),
		BusinessCriticality:  businessCriticality(text, intents),
		ResolutionConfidence: resolutionConfidence(text, intents),

		CreatedAt: created,
		UpdatedAt: now,
		Version:   ticket.AnalyticsVersion,
	}
	rec.LikelyToEscalate = predictEscalation(text, sentiment, severity)
	if rec.CompetitorMentioned {
		rec.CompetitorNames = []string{"competitor_mentioned"}
	}
	return rec
}

// Process extracts signals and persists the record.
func (e *Extractor) Process(ctx context.Context, t ticket.Ticket) (ticket.AnalyticsRecord, error) {
	rec := e.Extract(ctx, t)
	if e.store == nil {
		return rec, nil
	}
	if err := e.store.Save(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func (e *Extractor) classifyIntents(ctx context.Context, t ticket.Ticket) []string {
	if e.classifier == nil {
		return []string{fallbackIntent}
	}
	intents, err := e.classifier.Classify(ctx, t.Subject, t.Description)
	if err != nil {
		e.logger.Warn("intent classification failed, using fallback",
			zap.String("ticket_id", t.ExternalID),
			zap.Error(err))
		return []string{fallbackIntent}
	}
	if len(intents) == 0 {
		return []string{fallbackIntent}
	}
	return intents
}

func (e *Extractor) isRepeatCustomer(ctx context.Context, t ticket.Ticket) bool {
	if e.store == nil || t.Organization == "" {
		return false
	}
	n, err := e.store.CountByOrganization(ctx, t.Organization, t.ExternalID)
	if err != nil {
		e.logger.Warn("repeat customer lookup failed",
			zap.String("organization", t.Organization),
			zap.Error(err))
		return false
	}
	return n > 0
}

// extractKeywords tokenizes anonymized text, drops sensitive and irrelevant
// tokens, and keeps the most frequent survivors.
func extractKeywords(text string) []string {
	scrubbed := normalize.ScrubPII(text)

	type entry struct {
		word  string
		count int
		first int
	}
	byWord := make(map[string]*entry)
	order := make([]*entry, 0, 16)
	for i, tok := range normalize.Tokenize(scrubbed) {
		if normalize.IsSensitiveToken(tok) {
			continue
		}
		if !relevantKeywords[strings.ToLower(tok)] && !keywordPrefixRe.MatchString(tok) {
			continue
		}
		if ent, ok := byWord[tok]; ok {
			ent.count++
		} else {
			ent := &entry{word: tok, count: 1, first: i}
			byWord[tok] = ent
			order = append(order, ent)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	keywords := make([]string, len(order))
	for i, ent := range order {
		keywords[i] = ent.word
	}
	return keywords
}

func extractTopics(text string) []string {
	var topics []string
	for _, rule := range topicRules {
		if containsAny(text, rule.Words) {
			topics = append(topics, rule.Topic)
		}
	}
	return topics
}

// analyzeSentiment counts distinct lexicon hits on each side; the majority
// side wins, ties are neutral.
func analyzeSentiment(text string) ticket.Sentiment {
	neg := countContains(text, negativeWords)
	pos := countContains(text, positiveWords)
	switch {
	case neg > pos && neg > 0:
		return ticket.SentimentNegative
	case pos > neg && pos > 0:
		return ticket.SentimentPositive
	default:
		return ticket.SentimentNeutral
	}
}

func assessSeverity(text string) ticket.Severity {
	switch {
	case containsAny(text, criticalSeverityWords):
		return ticket.SeverityCritical
	case containsAny(text, highSeverityWords):
		return ticket.SeverityHigh
	case containsAny(text, lowSeverityWords):
		return ticket.SeverityLow
	default:
		return ticket.SeverityMedium
	}
}

func assessUrgency(text string) ticket.Urgency {
	switch {
	case containsAny(text, highUrgencyWords):
		return ticket.UrgencyHigh
	case containsAny(text, lowUrgencyWords):
		return ticket.UrgencyLow
	default:
		return ticket.UrgencyMedium
	}
}

// categorize prefers classified intents and falls back to keyword cues.
func categorize(text string, intents []string) string {
	for _, c := range []string{"complaint", "question", "request"} {
		if contains(intents, c) {
			return c
		}
	}
	switch {
	case strings.Contains(text, "refund") || strings.Contains(text, "billing"):
		return "billing"
	case strings.Contains(text, "bug") || strings.Contains(text, "error"):
		return "technical_issue"
	case strings.Contains(text, "how to") || strings.Contains(text, "help"):
		return "question"
	default:
		return "general"
	}
}

// detectLanguage is a cheap stopword heuristic; anything ambiguous is English.
func detectLanguage(text string) string {
	fields := strings.Fields(text)
	var es, fr int
	for _, f := range fields {
		if contains(spanishWords, f) {
			es++
		}
		if contains(frenchWords, f) {
			fr++
		}
	}
	switch {
	case es > 2:
		return "es"
	case fr > 2:
		return "fr"
	default:
		return "en"
	}
}

func complexityScore(text string, intents []string) float64 {
	score := 3.0
	technicalTerms := float64(len(technicalTermRe.FindAllString(text, -1)))
	score += math.Min(3, technicalTerms*0.5)
	score += math.Min(2, float64(len(intents))*0.5)
	if len(text) > 500 {
		score++
	}
	if len(text) > 1000 {
		score++
	}
	if errorEvidenceRe.MatchString(text) {
		score += 2
	}
	return clamp(math.Round(score), 1, 10)
}

// predictResolutionTime estimates handling time in minutes from a severity
// baseline scaled by urgency and topic factors.
func predictResolutionTime(text string, severity ticket.Severity, urgency ticket.Urgency) float64 {
	var base float64
	switch severity {
	case ticket.SeverityCritical:
		base = 30
	case ticket.SeverityHigh:
		base = 45
	case ticket.SeverityMedium:
		base = 60
	default:
		base = 120
	}
	switch urgency {
	case ticket.UrgencyHigh:
		base *= 0.5
	case ticket.UrgencyLow:
		base *= 2
	}
	if integrationTimeRe.MatchString(text) {
		base *= 2
	}
	if simpleTimeRe.MatchString(text) {
		base *= 0.7
	}
	return math.Round(base)
}

func workloadImpact(complexity float64, severity ticket.Severity) ticket.ImpactLevel {
	switch {
	case complexity >= 8 || severity == ticket.SeverityCritical:
		return ticket.ImpactHigh
	case complexity >= 6 || severity == ticket.SeverityHigh:
		return ticket.ImpactMedium
	default:
		return ticket.ImpactLow
	}
}

// revenueImpact grades the revenue exposure. Check order matters: direct
// billing language outranks the outage cues.
func revenueImpact(text string, topics []string) ticket.ImpactLevel {
	switch {
	case revenueHighRe.MatchString(text):
		return ticket.ImpactHigh
	case contains(topics, "billing") || contains(topics, "account_management"):
		return ticket.ImpactMedium
	case revenueCriticalRe.MatchString(text):
		return ticket.ImpactCritical
	default:
		return ticket.ImpactLow
	}
}

func featuresAffected(text string, keywords []string) []string {
	var features []string
	for _, f := range featurePatterns {
		if strings.Contains(text, f) || contains(keywords, f) {
			features = append(features, f)
		}
	}
	return features
}

func predictEscalation(text string, sentiment ticket.Sentiment, severity ticket.Severity) bool {
	score := 0
	if sentiment == ticket.SentimentNegative {
		score += 2
	}
	if severity == ticket.SeverityCritical || severity == ticket.SeverityHigh {
		score += 2
	}
	if escalationAuthorityRe.MatchString(text) {
		score += 3
	}
	if outrageRe.MatchString(text) {
		score += 2
	}
	return score >= 4
}

func churnRisk(text string, sentiment ticket.Sentiment, intents []string) bool {
	if sentiment == ticket.SentimentNegative &&
		(churnActionRe.MatchString(text) || contains(intents, "complaint")) {
		return true
	}
	return churnPhraseRe.MatchString(text)
}

func journeyStage(text string, repeat bool) ticket.JourneyStage {
	switch {
	case !repeat && onboardingRe.MatchString(text):
		return ticket.JourneyOnboarding
	case churningRe.MatchString(text):
		return ticket.JourneyChurning
	case atRiskRe.MatchString(text):
		return ticket.JourneyAtRisk
	case repeat:
		return ticket.JourneyActive
	default:
		return ticket.JourneyUnknown
	}
}

func channelOrDefault(channel string) string {
	if channel == "" {
		return "web"
	}
	return channel
}

func customerSegment(organization string) ticket.Segment {
	if organization == "" {
		return ""
	}
	org := strings.ToLower(organization)
	switch {
	case strings.Contains(org, "corp") || strings.Contains(org, "enterprise"):
		return ticket.SegmentEnterprise
	case strings.Contains(org, "trial") || strings.Contains(org, "demo"):
		return ticket.SegmentTrial
	default:
		return ticket.SegmentSMB
	}
}

func communicationStyle(text string) ticket.CommunicationStyle {
	switch {
	case formalStyleRe.MatchString(text):
		return ticket.StyleFormal
	case casualStyleRe.MatchString(text):
		return ticket.StyleCasual
	case technicalStyleRe.MatchString(text):
		return ticket.StyleTechnical
	case emotionalStyleRe.MatchString(text):
		return ticket.StyleEmotional
	default:
		return ticket.StyleCasual
	}
}

func responseExpectation(text string) ticket.ResponseExpectation {
	switch {
	case immediateRe.MatchString(text):
		return ticket.ExpectImmediate
	case sameDayRe.MatchString(text):
		return ticket.ExpectSameDay
	default:
		return ticket.ExpectFlexible
	}
}

func preferredTone(text string) ticket.Tone {
	switch {
	case apologeticToneRe.MatchString(text):
		return ticket.ToneApologetic
	case technicalToneRe.MatchString(text):
		return ticket.ToneTechnical
	case reassuringToneRe.MatchString(text):
		return ticket.ToneReassuring
	default:
		return ticket.ToneHelpful
	}
}

// similarTicketPattern derives a join key from the recurring problem terms in
// the text so that tickets about the same thing collide on the same key.
func similarTicketPattern(text string) string {
	terms := patternTermRe.FindAllString(text, -1)
	if len(terms) == 0 {
		return ""
	}
	sort.Strings(terms)
	return strings.Join(terms, "_")
}

func seasonalPattern(now time.Time) string {
	month, day := now.Month(), now.Day()
	switch {
	case month == time.December || month == time.January:
		return "holiday_season"
	case day <= 3 || day >= 28:
		return "month_end"
	case (month == time.March || month == time.June || month == time.September) && day >= 25:
		return "quarter_end"
	default:
		return ""
	}
}

func behavioralPattern(text string) string {
	switch {
	case frequentUserRe.MatchString(text):
		return "frequent_user"
	case newUserRe.MatchString(text):
		return "new_user"
	case powerUserRe.MatchString(text):
		return "power_user"
	case confusedUserRe.MatchString(text):
		return "confused_user"
	default:
		return ""
	}
}

func emotionalIntensity(text string, sentiment ticket.Sentiment) float64 {
	intensity := 5.0
	switch sentiment {
	case ticket.SentimentPositive:
		switch {
		case elatedRe.MatchString(text):
			intensity = 9
		case pleasedRe.MatchString(text):
			intensity = 7
		default:
			intensity = 6
		}
	case ticket.SentimentNegative:
		switch {
		case outragedRe.MatchString(text):
			intensity = 9
		case annoyedRe.MatchString(text):
			intensity = 7
		default:
			intensity = 6
		}
	}
	exclamations := float64(len(exclamationRe.FindAllString(text, -1)))
	capsWords := float64(len(capsWordRe.FindAllString(text, -1)))
	intensity += math.Min(2, exclamations*0.5+capsWords*0.3)
	return clamp(math.Round(intensity), 1, 10)
}

func technicalComplexity(text string) float64 {
	found := float64(countContains(text, technicalComplexityTerms))
	return math.Round(math.Min(10, 3+found*0.7))
}

func businessCriticality(text string, intents []string) float64 {
	score := BusinessCriticalityRule.Base
	for _, t := range BusinessCriticalityRule.Triggers {
		if t.Match.MatchString(text) {
			score += t.Delta
		}
	}
	if contains(intents, "complaint") {
		score += 2
	}
	return clamp(score, BusinessCriticalityRule.Min, BusinessCriticalityRule.Max)
}

func resolutionConfidence(text string, intents []string) float64 {
	conf := ResolutionConfidenceRule.Base
	for _, t := range ResolutionConfidenceRule.Triggers {
		if t.Match.MatchString(text) {
			conf += t.Delta
		}
	}
	if contains(intents, "question") && len(text) < 200 {
		conf += 0.1
	}
	if strings.Contains(text, "integration") || strings.Contains(text, "api") {
		conf -= 0.1
	}
	return clamp(conf, ResolutionConfidenceRule.Min, ResolutionConfidenceRule.Max)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
