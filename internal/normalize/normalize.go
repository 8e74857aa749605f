// Package normalize provides text normalization for ticket content.
//
// Ticket text passes through normalization before any analysis: HTML is
// stripped, the text is lowercased, and personally identifiable information
// is replaced with placeholder tokens. Tokenization and sensitive-token
// checks are shared by keyword extraction and topic detection.
package normalize

import (
	"regexp"
	"strings"
)

// Placeholder tokens substituted for scrubbed PII.
const (
	EmailPlaceholder = "[EMAIL]"
	PhonePlaceholder = "[PHONE]"
	CardPlaceholder  = "[CARD]"
	NamePlaceholder  = "[NAME]"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)

	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	cardRe  = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	nameRe  = regexp.MustCompile(`\b[A-Z][a-z]+\s[A-Z][a-z]+\b`)

	wordRe = regexp.MustCompile(`\b\w{3,}\b`)

	// Token shapes that may carry identifying information: long digit runs,
	// CamelCase compounds, and lone capitalized words.
	digitRunRe    = regexp.MustCompile(`\d{4,}`)
	camelCaseRe   = regexp.MustCompile(`[A-Z]{2,}[a-z]+[A-Z]`)
	capitalizedRe = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

// StripHTML removes HTML tags from text.
func StripHTML(text string) string {
	return htmlTagRe.ReplaceAllString(text, " ")
}

// ScrubPII replaces emails, phone numbers, card numbers, and
// two-capitalized-word name sequences with placeholder tokens.
//
// Name detection is case-sensitive; run ScrubPII before lowercasing when
// name scrubbing matters.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, EmailPlaceholder)
	text = phoneRe.ReplaceAllString(text, PhonePlaceholder)
	text = cardRe.ReplaceAllString(text, CardPlaceholder)
	text = nameRe.ReplaceAllString(text, NamePlaceholder)
	return text
}

// Text joins a ticket's subject and description into the normalized form
// used by all downstream lexicon matching: HTML stripped, lowercased.
func Text(subject, description string) string {
	joined := subject + " " + description
	return strings.ToLower(StripHTML(joined))
}

// Tokenize splits text into word tokens of at least 3 characters.
func Tokenize(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// IsSensitiveToken reports whether a token's shape suggests it carries
// identifying information and should be dropped from keyword extraction.
func IsSensitiveToken(token string) bool {
	return digitRunRe.MatchString(token) ||
		camelCaseRe.MatchString(token) ||
		capitalizedRe.MatchString(token)
}
