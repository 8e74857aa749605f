// Package analytics implements signal extraction: converting raw ticket text
// into a structured AnalyticsRecord.
//
// All lexicons and scoring constants live in this file as declarative rule
// tables consumed by the extractor. The constants are heuristic and tunable;
// they are package variables rather than literals so deployments can adjust
// them, but the defaults are the contract the tests pin down.
package analytics

import (
	"regexp"
	"strings"
)

// Trigger adds Delta to a score when its pattern matches the text.
type Trigger struct {
	Match *regexp.Regexp
	Delta float64
}

// ScoreRule is an additive, capped heuristic: start from Base, add the Delta
// of every matched trigger, clamp to [Min, Max].
type ScoreRule struct {
	Base     float64
	Min, Max float64
	Triggers []Trigger
}

// Score applies the rule to normalized ticket text.
func (r ScoreRule) Score(text string) float64 {
	s := r.Base
	for _, t := range r.Triggers {
		if t.Match.MatchString(text) {
			s += t.Delta
		}
	}
	return clamp(s, r.Min, r.Max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// words compiles a word-boundary alternation over the given words.
func words(ws ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(ws, "|") + `)\b`)
}

// containsAny reports whether any of the words occurs as a substring.
func containsAny(text string, ws []string) bool {
	for _, w := range ws {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// countContains counts how many distinct lexicon entries occur as substrings.
func countContains(text string, ws []string) int {
	n := 0
	for _, w := range ws {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// Sentiment lexicons. A ticket is negative when strictly more negative than
// positive entries match (and at least one), positive analogously, else
// neutral. Matching is substring-based to catch phrases.
var (
	negativeWords = []string{
		"terrible", "awful", "horrible", "hate", "worst", "disgusting",
		"frustrated", "angry", "disappointed", "annoyed", "upset",
		"broken", "doesn't work", "not working", "failed", "error",
		"slow", "bad", "poor", "useless", "waste",
	}
	positiveWords = []string{
		"great", "excellent", "amazing", "wonderful", "fantastic",
		"love", "perfect", "awesome", "brilliant", "outstanding",
		"helpful", "quick", "fast", "easy", "smooth", "good",
	}
)

// TopicRule maps a topic name to the keywords whose presence signals it.
type TopicRule struct {
	Topic string
	Words []string
}

// topicRules is ordered; topics are emitted in this order.
var topicRules = []TopicRule{
	{"authentication", []string{"login", "password", "signin", "logout", "access"}},
	{"billing", []string{"payment", "billing", "invoice", "charge", "subscription", "refund"}},
	{"technical_issue", []string{"error", "bug", "broken", "not working", "crash", "freeze"}},
	{"performance", []string{"slow", "loading", "timeout", "speed", "performance"}},
	{"feature_request", []string{"feature", "add", "include", "would like", "suggestion"}},
	{"user_interface", []string{"button", "page", "screen", "navigation", "menu", "interface"}},
	{"account_management", []string{"account", "profile", "settings", "preferences"}},
	{"product_quality", []string{"quality", "defective", "damaged", "poor", "excellent"}},
}

// Severity and urgency keyword buckets, substring-matched in bucket order.
var (
	criticalSeverityWords = []string{"critical", "urgent", "emergency", "down", "outage"}
	highSeverityWords     = []string{"important", "asap", "immediately", "broken", "not working"}
	lowSeverityWords      = []string{"minor", "small", "cosmetic", "suggestion"}

	highUrgencyWords = []string{"urgent", "asap", "immediately", "emergency", "critical"}
	lowUrgencyWords  = []string{"whenever", "no rush", "future", "eventually"}
)

// Keyword extraction vocabulary: a token survives if it is in this set or
// carries one of the known prefixes.
var (
	relevantKeywords = map[string]bool{
		// Technical terms.
		"login": true, "password": true, "account": true, "payment": true,
		"billing": true, "subscription": true,
		"feature": true, "function": true, "button": true, "page": true,
		"screen": true, "app": true, "website": true,
		"error": true, "bug": true, "issue": true, "problem": true,
		"loading": true, "slow": true, "fast": true,
		// Product terms.
		"product": true, "service": true, "order": true, "delivery": true,
		"shipping": true, "return": true,
		"refund": true, "cancel": true, "upgrade": true, "downgrade": true,
		// Quality indicators.
		"quality": true, "broken": true, "working": true, "fixed": true,
		"update": true, "improve": true,
	}
	keywordPrefixRe = regexp.MustCompile(`^(un|re|pre|post|sub|over|under)`)
)

// maxKeywords caps the keywords kept per record, ranked by frequency.
const maxKeywords = 10

// EscalationRiskRule scores the probability [0,1] that a ticket escalates.
var EscalationRiskRule = ScoreRule{
	Base: 0.3, Min: 0, Max: 1,
	Triggers: []Trigger{
		{words("terrible", "awful", "horrible", "disgusted", "furious", "livid"), 0.3},
		{words("frustrated", "disappointed", "annoyed", "upset"), 0.2},
		{words("urgent", "asap", "immediately", "emergency", "critical"), 0.2},
		{words("manager", "supervisor", "escalate", "higher", "authority"), 0.4},
		{words("lawyer", "legal", "complaint", "report", "review"), 0.3},
	},
}

// SatisfactionRule predicts a satisfaction score [1,10].
var SatisfactionRule = ScoreRule{
	Base: 5, Min: 1, Max: 10,
	Triggers: []Trigger{
		{words("great", "excellent", "amazing", "wonderful", "love", "perfect"), 2},
		{words("good", "helpful", "quick", "easy", "satisfied"), 1},
		{words("terrible", "awful", "horrible", "hate", "worst"), -3},
		{words("bad", "poor", "slow", "difficult", "frustrated"), -2},
		{words("disappointed", "confused", "annoyed"), -1},
	},
}

// BusinessCriticalityRule scores business impact [1,10]; the extractor adds
// 2 on top for a complaint intent before clamping.
var BusinessCriticalityRule = ScoreRule{
	Base: 3, Min: 1, Max: 10,
	Triggers: []Trigger{
		{words("production", "live", "customer", "revenue", "billing", "payment"), 3},
		{words("downtime", "outage", "broken", "critical", "urgent"), 2},
		{words("enterprise", "business", "commercial"), 1},
	},
}

// ResolutionConfidenceRule scores confidence in resolution [0.1,1]; the
// extractor applies intent- and length-dependent adjustments before clamping.
var ResolutionConfidenceRule = ScoreRule{
	Base: 0.7, Min: 0.1, Max: 1,
	Triggers: []Trigger{
		{words("error", "bug", "not working", "problem with"), 0.1},
		{words("something", "somehow", "sometimes", "might be", "maybe"), -0.2},
	},
}

// Patterns used by complexity, resolution-time, and communication rules.
var (
	technicalTermRe = words("api", "integration", "webhook", "database", "server",
		"authentication", "ssl", "json", "xml", "oauth")
	errorEvidenceRe = words("error", "exception", "stack trace", "logs", "debug")

	integrationTimeRe = words("integration", "api", "custom", "complex")
	simpleTimeRe      = words("simple", "quick", "basic")

	// Flag predicates.
	complaintRe      = words("complaint", "complain", "unhappy", "disappointed", "terrible", "awful")
	featureRequestRe = words("feature", "add", "include", "would like", "wish", "hope", "suggest")
	qualityIssueRe   = words("quality", "defective", "broken", "damaged", "poor", "faulty")
	infoGapRe        = words("how to", "where is", "can't find", "help", "instructions", "guide")

	// Journey stage gates.
	onboardingRe = words("new", "first time", "getting started", "setup", "onboard")
	churningRe   = words("cancel", "refund", "unsubscribe", "leave", "switch", "competitor")
	atRiskRe     = words("frustrated", "disappointed", "considering", "alternatives")

	// Predictive flags.
	escalationAuthorityRe = words("manager", "escalate", "supervisor")
	outrageRe             = words("unacceptable", "ridiculous", "terrible")
	churnActionRe         = words("cancel", "unsubscribe", "refund", "leave", "switch")
	churnPhraseRe         = words("considering alternatives", "looking elsewhere", "not worth it")
	upsellRe              = words("upgrade", "more features", "enterprise", "premium", "additional")
	specialistRe          = words("technical", "complex", "integration", "custom", "advanced", "enterprise")

	// Quality assurance flags.
	docGapRe             = words("how to", "where is", "documentation", "docs", "guide", "tutorial", "instructions")
	kbQuestionRe         = words("how", "what", "where", "when", "why", "can i", "is it possible")
	trainingConfusionRe  = words("confused", "don't understand", "unclear", "difficult")
	processFrictionRe    = words("slow", "inefficient", "cumbersome", "too many steps", "complicated process")
	revenueHighRe        = words("billing", "payment", "charge", "subscription", "revenue", "money", "refund")
	revenueCriticalRe    = words("production", "live", "customer facing", "downtime", "outage")
	priceRe              = words("price", "pricing", "cost", "expensive", "cheap", "budget", "money", "fee", "charge")
	integrationRelatedRe = words("integration", "integrate", "api", "webhook", "connect", "sync", "import", "export")

	// Communication analysis.
	formalStyleRe    = words("please", "thank you", "kindly", "appreciate", "grateful")
	casualStyleRe    = words("hey", "hi", "thanks", "cool", "awesome")
	technicalStyleRe = words("api", "technical", "integration", "code", "debug")
	emotionalStyleRe = words("frustrated", "angry", "upset", "disappointed")

	immediateRe = words("urgent", "asap", "immediately", "emergency", "critical", "now")
	sameDayRe   = words("today", "soon", "quick", "fast")

	apologeticToneRe = words("sorry", "apologize", "disappointed", "upset")
	technicalToneRe  = words("technical", "api", "integration", "code")
	reassuringToneRe = words("worried", "concerned", "anxious")

	// Pattern recognition.
	patternTermRe = words("login", "payment", "integration", "bug", "feature", "account")

	frequentUserRe = words("always", "constantly", "repeatedly", "every time")
	newUserRe      = words("new", "first time", "getting started", "beginner")
	powerUserRe    = words("advanced", "complex", "technical", "api", "integration")
	confusedUserRe = words("confused", "don't understand", "help", "lost")

	// Emotional intensity tiers.
	elatedRe   = words("amazing", "incredible", "fantastic", "outstanding")
	pleasedRe  = words("great", "excellent", "wonderful", "love")
	outragedRe = words("terrible", "awful", "horrible", "hate", "disgusting")
	annoyedRe  = words("bad", "poor", "frustrated", "disappointed")

	exclamationRe = regexp.MustCompile(`!`)
	capsWordRe    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// technicalComplexityTerms are counted as distinct substring hits; the score
// is min(10, 3 + hits*0.7), rounded.
var technicalComplexityTerms = []string{
	"api", "integration", "webhook", "database", "server", "authentication",
	"ssl", "json", "xml", "oauth", "sdk", "framework", "library", "code",
	"debug", "logs", "error", "exception", "stack trace",
}

// featurePatterns are product features worth flagging when mentioned.
var featurePatterns = []string{
	"login", "signup", "dashboard", "reporting", "analytics", "export",
	"integration", "api", "webhook", "notification", "email", "sms",
	"billing", "payment", "subscription", "account", "profile", "settings",
}

// competitorPhrases signal a competitor mention (substring match).
var competitorPhrases = []string{
	"competitor", "alternative", "switch to", "instead of", "compared to",
	"other solution", "different platform", "moving to",
}

// Language detection stopword samples.
var (
	spanishWords = []string{"el", "la", "de", "que", "y", "es", "en", "un", "por"}
	frenchWords  = []string{"le", "de", "et", "à", "un", "il", "être", "et", "en"}
)
