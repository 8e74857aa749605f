// Package vectorindex stores ticket embeddings and serves nearest-neighbor
// queries over them.
package vectorindex

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidCollectionName indicates an unsafe collection name.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrConnectionFailed indicates the index backend is unreachable.
	ErrConnectionFailed = errors.New("vector index connection failed")
)

// Point is one ticket embedding plus the payload needed to rebuild a
// candidate without a second store round-trip.
type Point struct {
	// ID is the external ticket ID.
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// Match is a scored query hit. Vector is returned so callers can re-rank.
type Match struct {
	ID      string
	Score   float32
	Vector  []float32
	Payload map[string]interface{}
}

// Filter narrows a query to a tenant scope. Empty fields match everything.
type Filter struct {
	Organization string
	ProductID    string
}

// Index is the nearest-neighbor store for ticket embeddings.
type Index interface {
	// EnsureCollection creates the backing collection if it does not exist.
	EnsureCollection(ctx context.Context, vectorSize int) error
	// Upsert writes points, replacing any with the same ID.
	Upsert(ctx context.Context, points []Point) error
	// Query returns up to k matches above scoreThreshold, best first.
	Query(ctx context.Context, vector []float32, k int, f Filter, scoreThreshold float32) ([]Match, error)
	// Close releases backend connections.
	Close() error
}

// Payload keys shared by all Index implementations.
const (
	PayloadTicketID     = "external_ticket_id"
	PayloadSubject      = "subject"
	PayloadDescription  = "description"
	PayloadOrganization = "organization"
	PayloadProductID    = "product_id"
)
