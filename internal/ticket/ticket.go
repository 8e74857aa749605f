// Package ticket defines the core data model shared across the analytics
// pipeline: inbound support tickets and the per-ticket AnalyticsRecord
// produced by signal extraction.
package ticket

import "time"

// Ticket is an inbound support ticket as supplied by the upstream
// ticketing system. Only the fields the core consumes are modeled here.
type Ticket struct {
	// ExternalID is the canonical ticket identifier in the upstream system.
	ExternalID string `json:"external_id" bson:"externalId"`

	Subject     string `json:"subject" bson:"subject"`
	Description string `json:"description" bson:"description"`

	// Organization identifies the customer organization, when known.
	Organization string `json:"organization,omitempty" bson:"organization,omitempty"`

	// ProductID identifies the product the ticket concerns, when known.
	ProductID string `json:"product_id,omitempty" bson:"productId,omitempty"`

	// ChannelSource is the ingestion channel: email, chat, phone, web.
	ChannelSource string `json:"channel_source,omitempty" bson:"channelSource,omitempty"`

	// Attachments lists attachment identifiers; only presence matters to
	// the analytics pipeline.
	Attachments []string `json:"attachments,omitempty" bson:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// SimilarTicket pairs a historical ticket with its re-ranked similarity
// score relative to a query ticket.
type SimilarTicket struct {
	Ticket     Ticket  `json:"ticket"`
	Similarity float64 `json:"similarity"`
}
