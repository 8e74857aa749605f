package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// Scope narrows an aggregation run to a tenant.
type Scope struct {
	Organization string
	ProductID    string
}

// Analyzer inspects one dimension of a record batch and emits candidate
// insights for groups that clear its minimum size.
type Analyzer struct {
	Name string
	Run  func(records []ticket.AnalyticsRecord, now time.Time) []Candidate
}

// maxCandidateConfidence caps per-ticket confidence growth.
const maxCandidateConfidence = 0.95

// DefaultAnalyzers is the standard analyzer set, covering customer behavior,
// operational, and business dimensions of a batch.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		{Name: "churn_risk", Run: analyzeChurnRisk},
		{Name: "escalation_patterns", Run: analyzeEscalationPatterns},
		{Name: "customer_journey", Run: analyzeCustomerJourney},
		{Name: "workload_imbalance", Run: analyzeWorkloadImbalance},
		{Name: "resolution_anomalies", Run: analyzeResolutionAnomalies},
		{Name: "complexity_surge", Run: analyzeComplexitySurge},
		{Name: "specialist_demand", Run: analyzeSpecialistDemand},
		{Name: "revenue_impact", Run: analyzeRevenueImpact},
		{Name: "competitor_threats", Run: analyzeCompetitorThreats},
		{Name: "pricing_concerns", Run: analyzePricingConcerns},
		{Name: "upsell_opportunities", Run: analyzeUpsellOpportunities},
	}
}

func analyzeChurnRisk(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	atRisk := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.ChurnRisk })
	if len(atRisk) < 2 {
		return nil
	}

	bySegment := groupBy(atRisk, func(r ticket.AnalyticsRecord) string {
		if r.CustomerSegment == "" {
			return "unknown"
		}
		return string(r.CustomerSegment)
	})

	var out []Candidate
	for _, segment := range sortedKeys(bySegment) {
		group := bySegment[segment]
		if len(group) < 2 {
			continue
		}
		avgSatisfaction := average(group, func(r ticket.AnalyticsRecord) float64 { return r.SatisfactionPrediction })
		reasons := commonKeywords(group)

		severity := ticket.SeverityHigh
		if len(group) >= 5 {
			severity = ticket.SeverityCritical
		}
		out = append(out, Candidate{
			Type:        TypeChurnRisk,
			Title:       fmt.Sprintf("High churn risk detected in %s segment", segment),
			Description: fmt.Sprintf("%d customers at risk of churning. Common issues: %s", len(group), joinFirst(reasons, 3)),
			Severity:    severity,
			Category:    CategoryCustomerRetention,
			Confidence:  cappedConfidence(0.8, len(group)),
			Frequency:   len(group),
			Keywords:    reasons,
			TicketIDs:   ticketIDs(group),
			Patterns:    []string{"churn_risk_" + segment},
			Metadata: map[string]interface{}{
				"customerSegment":           segment,
				"avgSatisfactionPrediction": avgSatisfaction,
				"riskFactors": map[string]float64{
					"negativeSentiment": float64(countRecords(group, func(r ticket.AnalyticsRecord) bool { return r.Sentiment == ticket.SentimentNegative })),
					"escalation":        float64(countRecords(group, func(r ticket.AnalyticsRecord) bool { return r.LikelyToEscalate })),
					"satisfaction":      avgSatisfaction,
					"complexity":        average(group, func(r ticket.AnalyticsRecord) float64 { return r.ComplexityScore }),
				},
			},
		})
	}
	return out
}

func analyzeEscalationPatterns(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	escalating := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.LikelyToEscalate })
	if len(escalating) < 3 {
		return nil
	}

	n := float64(len(escalating))
	var triggers []string
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.Sentiment == ticket.SentimentNegative })) > n*0.6 {
		triggers = append(triggers, "negative_sentiment")
	}
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.BusinessCriticality >= 7 })) > n*0.4 {
		triggers = append(triggers, "business_critical")
	}
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.ComplexityScore >= 8 })) > n*0.3 {
		triggers = append(triggers, "high_complexity")
	}

	var prevention []string
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.ResponseExpectation == ticket.ExpectImmediate })) > n*0.5 {
		prevention = append(prevention, "faster_response_times")
	}
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.DocumentationGap })) > n*0.3 {
		prevention = append(prevention, "improved_documentation")
	}
	if float64(countRecords(escalating, func(r ticket.AnalyticsRecord) bool { return r.RequiresSpecialist })) > n*0.4 {
		prevention = append(prevention, "specialist_routing")
	}

	avgRisk := average(escalating, func(r ticket.AnalyticsRecord) float64 { return r.EscalationRisk })
	severity := ticket.SeverityMedium
	if avgRisk > 0.7 {
		severity = ticket.SeverityHigh
	}
	return []Candidate{{
		Type:        TypeEscalationPattern,
		Title:       "Escalation pattern detected",
		Description: fmt.Sprintf("%d tickets showing escalation patterns. Key triggers: %s", len(escalating), joinFirst(triggers, len(triggers))),
		Severity:    severity,
		Category:    CategoryOperational,
		Confidence:  cappedConfidence(0.75, len(escalating)),
		Frequency:   len(escalating),
		Keywords:    triggers,
		TicketIDs:   ticketIDs(escalating),
		Patterns:    []string{"escalation_risk"},
		Metadata: map[string]interface{}{
			"avgEscalationRisk":       avgRisk,
			"triggers":                triggers,
			"preventionOpportunities": prevention,
		},
	}}
}

func analyzeCustomerJourney(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	byStage := groupBy(records, func(r ticket.AnalyticsRecord) string {
		if r.CustomerJourneyStage == "" {
			return "unknown"
		}
		return string(r.CustomerJourneyStage)
	})

	var out []Candidate
	for _, stage := range sortedKeys(byStage) {
		group := byStage[stage]
		if len(group) < 3 {
			continue
		}
		issues := commonKeywords(group)
		avgSatisfaction := average(group, func(r ticket.AnalyticsRecord) float64 { return r.SatisfactionPrediction })

		severity := ticket.SeverityMedium
		if stage == string(ticket.JourneyChurning) || avgSatisfaction < 4 {
			severity = ticket.SeverityHigh
		}
		if stage == string(ticket.JourneyOnboarding) && len(group) >= 5 {
			severity = ticket.SeverityHigh
		}

		var interventions []string
		switch stage {
		case string(ticket.JourneyOnboarding):
			interventions = []string{"improved_onboarding_docs", "customer_success_intervention"}
		case string(ticket.JourneyAtRisk):
			interventions = []string{"customer_success_intervention", "retention_campaign"}
		case string(ticket.JourneyChurning):
			interventions = []string{"retention_campaign"}
		}

		out = append(out, Candidate{
			Type:        TypeCustomerJourneyIssue,
			Title:       fmt.Sprintf("Issues detected in %s customer journey stage", stage),
			Description: fmt.Sprintf("%d customers experiencing issues during %s. Common problems: %s", len(group), stage, joinFirst(issues, 3)),
			Severity:    severity,
			Category:    CategoryUserExperience,
			Confidence:  cappedConfidence(0.7, len(group)),
			Frequency:   len(group),
			Keywords:    issues,
			TicketIDs:   ticketIDs(group),
			Patterns:    []string{"journey_" + stage},
			Metadata: map[string]interface{}{
				"journeyStage":              stage,
				"avgSatisfaction":           avgSatisfaction,
				"interventionOpportunities": interventions,
			},
		})
	}
	return out
}

func analyzeWorkloadImbalance(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	heavy := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.WorkloadImpact == ticket.ImpactHigh })
	if len(heavy) < 5 {
		return nil
	}

	avgComplexity := average(heavy, func(r ticket.AnalyticsRecord) float64 { return r.ComplexityScore })

	var recommendations []string
	if avgComplexity >= 8 {
		recommendations = append(recommendations, "hire_senior_engineers")
	}
	if float64(countRecords(heavy, func(r ticket.AnalyticsRecord) bool { return r.RequiresSpecialist })) > float64(len(heavy))*0.5 {
		recommendations = append(recommendations, "specialist_team_expansion")
	}

	severity := ticket.SeverityMedium
	if len(heavy) >= 10 {
		severity = ticket.SeverityHigh
	}
	return []Candidate{{
		Type:        TypeAgentWorkloadImbalance,
		Title:       "High workload impact detected",
		Description: fmt.Sprintf("%d tickets requiring high workload impact. Average complexity: %.1f", len(heavy), avgComplexity),
		Severity:    severity,
		Category:    CategoryResourceOptimization,
		Confidence:  0.8,
		Frequency:   len(heavy),
		Keywords:    commonKeywords(heavy),
		TicketIDs:   ticketIDs(heavy),
		Patterns:    []string{"high_workload"},
		Metadata: map[string]interface{}{
			"avgComplexity":           avgComplexity,
			"peakTimes":               peakHours(heavy),
			"resourceRecommendations": recommendations,
		},
	}}
}

func analyzeResolutionAnomalies(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	estimated := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.ResolutionPrediction > 0 })
	if len(estimated) < 10 {
		return nil
	}

	avg := average(estimated, func(r ticket.AnalyticsRecord) float64 { return r.ResolutionPrediction })
	anomalies := filterRecords(estimated, func(r ticket.AnalyticsRecord) bool {
		return r.ResolutionPrediction > avg*2 || r.ResolutionPrediction < avg*0.3
	})
	if len(anomalies) < 3 {
		return nil
	}

	n := float64(len(anomalies))
	var factors []string
	if float64(countRecords(anomalies, func(r ticket.AnalyticsRecord) bool { return r.ComplexityScore >= 8 })) > n*0.4 {
		factors = append(factors, "high_complexity")
	}
	if float64(countRecords(anomalies, func(r ticket.AnalyticsRecord) bool { return r.Category == "technical_issue" })) > n*0.5 {
		factors = append(factors, "technical_issues")
	}
	if float64(countRecords(anomalies, func(r ticket.AnalyticsRecord) bool { return r.RequiresSpecialist })) > n*0.3 {
		factors = append(factors, "specialist_required")
	}

	return []Candidate{{
		Type:        TypeResolutionTimeAnomaly,
		Title:       "Resolution time anomalies detected",
		Description: fmt.Sprintf("%d tickets with unusual resolution times (avg: %.0f min)", len(anomalies), avg),
		Severity:    ticket.SeverityMedium,
		Category:    CategoryOperational,
		Confidence:  0.75,
		Frequency:   len(anomalies),
		Keywords:    commonKeywords(anomalies),
		TicketIDs:   ticketIDs(anomalies),
		Patterns:    []string{"resolution_anomaly"},
		Metadata: map[string]interface{}{
			"avgResolutionTime": avg,
			"anomalyFactors":    factors,
		},
	}}
}

func analyzeComplexitySurge(records []ticket.AnalyticsRecord, now time.Time) []Candidate {
	complexTickets := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.ComplexityScore >= 8 })
	if len(complexTickets) < 5 {
		return nil
	}

	// A surge requires at least half the high-complexity tickets within the
	// last 24 hours.
	oneDayAgo := now.Add(-24 * time.Hour)
	recent := countRecords(complexTickets, func(r ticket.AnalyticsRecord) bool { return r.CreatedAt.After(oneDayAgo) })
	if float64(recent) < float64(len(complexTickets))*0.5 {
		return nil
	}

	n := float64(len(complexTickets))
	var factors []string
	if float64(countRecords(complexTickets, func(r ticket.AnalyticsRecord) bool { return r.IntegrationRelated })) > n*0.5 {
		factors = append(factors, "integration_issues")
	}
	if float64(countRecords(complexTickets, func(r ticket.AnalyticsRecord) bool { return r.TechnicalComplexity >= 8 })) > n*0.4 {
		factors = append(factors, "technical_complexity")
	}

	specialists := countRecords(complexTickets, func(r ticket.AnalyticsRecord) bool { return r.RequiresSpecialist })
	return []Candidate{{
		Type:        TypeComplexitySurge,
		Title:       "Complexity surge detected",
		Description: fmt.Sprintf("Surge in high-complexity tickets: %d tickets with complexity 8+", len(complexTickets)),
		Severity:    ticket.SeverityHigh,
		Category:    CategoryResourceOptimization,
		Confidence:  0.8,
		Frequency:   len(complexTickets),
		Keywords:    commonKeywords(complexTickets),
		TicketIDs:   ticketIDs(complexTickets),
		Patterns:    []string{"complexity_surge"},
		Metadata: map[string]interface{}{
			"surgeFactors": factors,
			"resourceNeeds": map[string]float64{
				"additionalAgents": math.Ceil(n / 10),
				"specialistHours":  float64(specialists * 2),
				"trainingHours":    n * 0.5,
			},
		},
	}}
}

func analyzeSpecialistDemand(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	specialist := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.RequiresSpecialist })
	if len(specialist) < 3 {
		return nil
	}

	// A ticket contributes to every topic area it touches.
	byArea := make(map[string][]ticket.AnalyticsRecord)
	for _, r := range specialist {
		if len(r.Topics) == 0 {
			byArea["unknown"] = append(byArea["unknown"], r)
			continue
		}
		for _, topic := range r.Topics {
			byArea[topic] = append(byArea[topic], r)
		}
	}

	var out []Candidate
	for _, area := range sortedKeys(byArea) {
		group := byArea[area]
		if len(group) < 2 {
			continue
		}
		severity := ticket.SeverityMedium
		if len(group) >= 5 {
			severity = ticket.SeverityHigh
		}
		avgTechnical := average(group, func(r ticket.AnalyticsRecord) float64 { return r.TechnicalComplexity })
		skillGap := "low"
		switch {
		case avgTechnical >= 8:
			skillGap = "high"
		case avgTechnical >= 6:
			skillGap = "medium"
		}

		out = append(out, Candidate{
			Type:        TypeSpecialistDemand,
			Title:       fmt.Sprintf("Specialist demand in %s", area),
			Description: fmt.Sprintf("%d tickets requiring specialist expertise in %s", len(group), area),
			Severity:    severity,
			Category:    CategoryResourceOptimization,
			Confidence:  0.8,
			Frequency:   len(group),
			Keywords:    append([]string{area}, commonKeywords(group)...),
			TicketIDs:   ticketIDs(group),
			Patterns:    []string{"specialist_" + area},
			Metadata: map[string]interface{}{
				"specialistArea":          area,
				"skillGap":                skillGap,
				"trainingRecommendations": []string{area + "_training", "technical_skills_development", "certification_programs"},
			},
		})
	}
	return out
}

func analyzeRevenueImpact(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	impacted := filterRecords(records, func(r ticket.AnalyticsRecord) bool {
		return r.RevenueImpact == ticket.ImpactHigh || r.RevenueImpact == ticket.ImpactCritical
	})
	if len(impacted) < 3 {
		return nil
	}

	critical := countRecords(impacted, func(r ticket.AnalyticsRecord) bool { return r.RevenueImpact == ticket.ImpactCritical })
	severity := ticket.SeverityHigh
	if critical > 0 {
		severity = ticket.SeverityCritical
	}

	return []Candidate{{
		Type:        TypeRevenueImpactAlert,
		Title:       "Revenue impact alerts detected",
		Description: fmt.Sprintf("%d tickets with significant revenue impact (%d critical)", len(impacted), critical),
		Severity:    severity,
		Category:    CategoryRevenueProtection,
		Confidence:  0.85,
		Frequency:   len(impacted),
		Keywords:    commonKeywords(impacted),
		TicketIDs:   ticketIDs(impacted),
		Patterns:    []string{"revenue_impact"},
		Metadata: map[string]interface{}{
			"criticalCount": int64(critical),
			"impactAreas":   topFeatures(impacted, 5),
			"protectionStrategies": []string{
				"priority_escalation",
				"customer_success_intervention",
				"technical_deep_dive",
				"executive_communication",
			},
		},
	}}
}

func analyzeCompetitorThreats(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	mentions := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.CompetitorMentioned })
	if len(mentions) < 2 {
		return nil
	}

	severity := ticket.SeverityMedium
	if len(mentions) >= 5 {
		severity = ticket.SeverityHigh
	}
	keywords := commonKeywords(mentions)

	return []Candidate{{
		Type:        TypeCompetitorThreat,
		Title:       "Competitor threats identified",
		Description: fmt.Sprintf("%d tickets mentioning competitors or alternatives", len(mentions)),
		Severity:    severity,
		Category:    CategoryCompetitiveAnalysis,
		Confidence:  0.8,
		Frequency:   len(mentions),
		Keywords:    keywords,
		TicketIDs:   ticketIDs(mentions),
		Patterns:    []string{"competitor_threat"},
		Metadata: map[string]interface{}{
			"threatAreas":          firstN(keywords, 3),
			"competitorAdvantages": []string{"feature_gaps", "pricing_comparison", "user_experience"},
			"retentionStrategies": []string{
				"competitive_analysis",
				"feature_roadmap_acceleration",
				"pricing_review",
				"customer_success_outreach",
			},
		},
	}}
}

func analyzePricingConcerns(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	pricing := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.PriceRelated })
	if len(pricing) < 3 {
		return nil
	}

	avgSatisfaction := average(pricing, func(r ticket.AnalyticsRecord) float64 { return r.SatisfactionPrediction })
	severity := ticket.SeverityMedium
	if avgSatisfaction < 5 {
		severity = ticket.SeverityHigh
	}

	return []Candidate{{
		Type:        TypePricingConcern,
		Title:       "Pricing concerns identified",
		Description: fmt.Sprintf("%d tickets related to pricing (avg satisfaction: %.1f)", len(pricing), avgSatisfaction),
		Severity:    severity,
		Category:    CategoryBusinessIntelligence,
		Confidence:  0.8,
		Frequency:   len(pricing),
		Keywords:    commonKeywords(pricing),
		TicketIDs:   ticketIDs(pricing),
		Patterns:    []string{"pricing_concern"},
		Metadata: map[string]interface{}{
			"avgSatisfaction": avgSatisfaction,
			"optimizationOpportunities": []string{
				"pricing_tier_review",
				"value_communication",
				"competitive_pricing_analysis",
				"discount_programs",
			},
		},
	}}
}

func analyzeUpsellOpportunities(records []ticket.AnalyticsRecord, _ time.Time) []Candidate {
	upsell := filterRecords(records, func(r ticket.AnalyticsRecord) bool { return r.UpsellOpportunity })
	if len(upsell) < 2 {
		return nil
	}

	var opportunities []string
	if countRecords(upsell, func(r ticket.AnalyticsRecord) bool { return containsString(r.FeaturesAffected, "enterprise") }) > 0 {
		opportunities = append(opportunities, "enterprise_upgrade")
	}
	if countRecords(upsell, func(r ticket.AnalyticsRecord) bool { return r.IntegrationRelated }) > 0 {
		opportunities = append(opportunities, "integration_services")
	}

	return []Candidate{{
		Type:        TypeUpsellOpportunity,
		Title:       "Upsell opportunities identified",
		Description: fmt.Sprintf("%d tickets showing upsell potential", len(upsell)),
		Severity:    ticket.SeverityLow,
		Category:    CategoryBusinessIntelligence,
		Confidence:  0.7,
		Frequency:   len(upsell),
		Keywords:    commonKeywords(upsell),
		TicketIDs:   ticketIDs(upsell),
		Patterns:    []string{"upsell_opportunity"},
		Metadata: map[string]interface{}{
			"opportunityTypes": opportunities,
			"revenueEstimate":  float64(len(upsell)) * 500,
			"conversionStrategies": []string{
				"targeted_outreach",
				"feature_demonstrations",
				"trial_extensions",
				"custom_proposals",
			},
		},
	}}
}

// Batch helpers shared by the analyzers.

func filterRecords(records []ticket.AnalyticsRecord, keep func(ticket.AnalyticsRecord) bool) []ticket.AnalyticsRecord {
	var out []ticket.AnalyticsRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func countRecords(records []ticket.AnalyticsRecord, match func(ticket.AnalyticsRecord) bool) int {
	n := 0
	for _, r := range records {
		if match(r) {
			n++
		}
	}
	return n
}

func groupBy(records []ticket.AnalyticsRecord, key func(ticket.AnalyticsRecord) string) map[string][]ticket.AnalyticsRecord {
	groups := make(map[string][]ticket.AnalyticsRecord)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

func average(records []ticket.AnalyticsRecord, value func(ticket.AnalyticsRecord) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += value(r)
	}
	return sum / float64(len(records))
}

// commonKeywords returns the ten most frequent keywords across the group,
// ties broken by first appearance for determinism.
func commonKeywords(records []ticket.AnalyticsRecord) []string {
	counts := make(map[string]int)
	first := make(map[string]int)
	i := 0
	for _, r := range records {
		for _, kw := range r.Keywords {
			if _, seen := counts[kw]; !seen {
				first[kw] = i
				i++
			}
			counts[kw]++
		}
	}
	keywords := make([]string, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, kw)
	}
	sort.SliceStable(keywords, func(a, b int) bool {
		if counts[keywords[a]] != counts[keywords[b]] {
			return counts[keywords[a]] > counts[keywords[b]]
		}
		return first[keywords[a]] < first[keywords[b]]
	})
	return firstN(keywords, 10)
}

func topFeatures(records []ticket.AnalyticsRecord, n int) []string {
	counts := make(map[string]int)
	first := make(map[string]int)
	i := 0
	for _, r := range records {
		for _, f := range r.FeaturesAffected {
			if _, seen := counts[f]; !seen {
				first[f] = i
				i++
			}
			counts[f]++
		}
	}
	features := make([]string, 0, len(counts))
	for f := range counts {
		features = append(features, f)
	}
	sort.SliceStable(features, func(a, b int) bool {
		if counts[features[a]] != counts[features[b]] {
			return counts[features[a]] > counts[features[b]]
		}
		return first[features[a]] < first[features[b]]
	})
	return firstN(features, n)
}

// peakHours returns the three busiest creation hours formatted as "15:00".
func peakHours(records []ticket.AnalyticsRecord) []string {
	counts := make(map[int]int)
	for _, r := range records {
		counts[r.CreatedAt.Hour()]++
	}
	hours := make([]int, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(a, b int) bool {
		if counts[hours[a]] != counts[hours[b]] {
			return counts[hours[a]] > counts[hours[b]]
		}
		return hours[a] < hours[b]
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}
	out := make([]string, len(hours))
	for i, h := range hours {
		out[i] = fmt.Sprintf("%d:00", h)
	}
	return out
}

func ticketIDs(records []ticket.AnalyticsRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ExternalTicketID
	}
	return ids
}

func cappedConfidence(base float64, groupSize int) float64 {
	c := base + float64(groupSize)*0.02
	if c > maxCandidateConfidence {
		return maxCandidateConfidence
	}
	return c
}

func sortedKeys(m map[string][]ticket.AnalyticsRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func joinFirst(list []string, n int) string {
	out := ""
	for i, s := range firstN(list, n) {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
