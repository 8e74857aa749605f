// Package ingest consumes inbound tickets and drives them through the
// analytics pipeline: persistence, signal extraction, and vector indexing.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/analytics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/embeddings"
	"github.com/itaysc/foozool-ai-support-sub000/internal/similarity"
	"github.com/itaysc/foozool-ai-support-sub000/internal/storage"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
	"github.com/itaysc/foozool-ai-support-sub000/internal/vectorindex"
)

// Result is the outcome of processing one ticket.
type Result struct {
	Record  ticket.AnalyticsRecord
	Similar []ticket.SimilarTicket
}

// Pipeline processes one ticket end to end.
type Pipeline struct {
	tickets   storage.TicketStore
	extractor *analytics.Extractor
	embedder  embeddings.Embedder
	index     vectorindex.Index
	retriever *similarity.Retriever
	logger    *zap.Logger
}

func NewPipeline(
	tickets storage.TicketStore,
	extractor *analytics.Extractor,
	embedder embeddings.Embedder,
	index vectorindex.Index,
	retriever *similarity.Retriever,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		tickets:   tickets,
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		retriever: retriever,
		logger:    logger,
	}
}

// Handle persists the ticket, extracts its analytics record, resolves
// similar historical tickets, and indexes the new ticket's embedding.
// Similarity lookup runs before indexing so a ticket never matches itself.
// Indexing and retrieval are best effort: their failures are logged and the
// record still lands, so similarity quality degrades without blocking
// ingestion.
func (p *Pipeline) Handle(ctx context.Context, t ticket.Ticket) (Result, error) {
	if t.ExternalID == "" {
		return Result{}, fmt.Errorf("ticket missing external id")
	}

	if err := p.tickets.Save(ctx, t); err != nil {
		return Result{}, fmt.Errorf("saving ticket %s: %w", t.ExternalID, err)
	}

	record, err := p.extractor.Process(ctx, t)
	if err != nil {
		return Result{}, fmt.Errorf("extracting analytics for %s: %w", t.ExternalID, err)
	}
	result := Result{Record: record}

	if p.retriever != nil {
		result.Similar = p.retriever.FindSimilar(ctx, t, similarity.DefaultK)
	}

	if err := p.indexTicket(ctx, t); err != nil {
		p.logger.Warn("vector indexing failed, similarity degraded for this ticket",
			zap.String("external_id", t.ExternalID),
			zap.Error(err))
	}
	return result, nil
}

func (p *Pipeline) indexTicket(ctx context.Context, t ticket.Ticket) error {
	if p.embedder == nil || p.index == nil {
		return nil
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, []string{t.Subject + " " + t.Description})
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	point := vectorindex.Point{
		ID:     t.ExternalID,
		Vector: vectors[0],
		Payload: map[string]interface{}{
			vectorindex.PayloadTicketID:    t.ExternalID,
			vectorindex.PayloadSubject:     t.Subject,
			vectorindex.PayloadDescription: t.Description,
		},
	}
	if t.Organization != "" {
		point.Payload[vectorindex.PayloadOrganization] = t.Organization
	}
	if t.ProductID != "" {
		point.Payload[vectorindex.PayloadProductID] = t.ProductID
	}
	if err := p.index.Upsert(ctx, []vectorindex.Point{point}); err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}
