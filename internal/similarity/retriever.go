package similarity

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/embeddings"
	"github.com/itaysc/foozool-ai-support-sub000/internal/metrics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
	"github.com/itaysc/foozool-ai-support-sub000/internal/vectorindex"
)

// Boost weights applied on top of cosine similarity during re-ranking.
const (
	subjectBoost     = 0.2
	descriptionBoost = 0.1
)

// DefaultK is the result count when the caller passes k <= 0.
const DefaultK = 5

// TicketStore resolves candidate IDs to full tickets.
type TicketStore interface {
	FindByExternalIDs(ctx context.Context, ids []string) ([]ticket.Ticket, error)
}

// Retriever finds tickets similar to a query ticket. Retrieval is best
// effort: any failing dependency degrades to an empty result instead of an
// error, because similar tickets are advisory context, never a hard
// requirement.
type Retriever struct {
	embedder embeddings.Embedder
	index    vectorindex.Index
	tickets  TicketStore
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewRetriever builds a Retriever. tickets and m may be nil; without a
// TicketStore candidates are rebuilt from index payloads.
func NewRetriever(embedder embeddings.Embedder, index vectorindex.Index, tickets TicketStore, logger *zap.Logger, m *metrics.Metrics) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		tickets:  tickets,
		logger:   logger,
		metrics:  m,
	}
}

// FindSimilar returns up to k tickets similar to t, most similar first.
func (r *Retriever) FindSimilar(ctx context.Context, t ticket.Ticket, k int) []ticket.SimilarTicket {
	if k <= 0 {
		k = DefaultK
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, t.Subject+" "+t.Description)
	if err != nil {
		r.logger.Warn("embedding query ticket failed, returning no similar tickets",
			zap.String("ticket_id", t.ExternalID),
			zap.Error(err))
		r.countSearch("embedding_error")
		return []ticket.SimilarTicket{}
	}

	matches, err := r.index.Query(ctx, queryVec, k, vectorindex.Filter{
		Organization: t.Organization,
		ProductID:    t.ProductID,
	}, 0)
	if err != nil {
		r.logger.Warn("vector index query failed, returning no similar tickets",
			zap.String("ticket_id", t.ExternalID),
			zap.Error(err))
		r.countSearch("index_error")
		return []ticket.SimilarTicket{}
	}
	if len(matches) == 0 {
		r.countSearch("empty")
		return []ticket.SimilarTicket{}
	}

	candidates := r.resolve(ctx, matches)

	// Re-rank: exact cosine against the query vector, boosted when the
	// candidate text contains the query text verbatim.
	ranked := make([]ticket.SimilarTicket, 0, len(candidates))
	for _, c := range candidates {
		sim := Cosine(queryVec, c.vector)
		if strings.Contains(c.ticket.Subject, t.Subject) {
			sim += subjectBoost
		}
		if strings.Contains(c.ticket.Description, t.Description) {
			sim += descriptionBoost
		}
		ranked = append(ranked, ticket.SimilarTicket{Ticket: c.ticket, Similarity: sim})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	r.countSearch("ok")
	return ranked
}

type candidate struct {
	ticket ticket.Ticket
	vector []float32
}

// resolve maps index matches to tickets. With a TicketStore, matches that no
// longer resolve to a stored ticket are dropped; without one, tickets are
// rebuilt from the index payload.
func (r *Retriever) resolve(ctx context.Context, matches []vectorindex.Match) []candidate {
	byID := make(map[string]ticket.Ticket)
	if r.tickets != nil {
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		resolved, err := r.tickets.FindByExternalIDs(ctx, ids)
		if err != nil {
			r.logger.Warn("resolving similar tickets failed, using index payloads", zap.Error(err))
		} else {
			for _, t := range resolved {
				byID[t.ExternalID] = t
			}
			out := make([]candidate, 0, len(matches))
			for _, m := range matches {
				t, ok := byID[m.ID]
				if !ok {
					continue
				}
				out = append(out, candidate{ticket: t, vector: m.Vector})
			}
			return out
		}
	}

	out := make([]candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidate{
			ticket: ticket.Ticket{
				ExternalID:   m.ID,
				Subject:      payloadString(m.Payload, vectorindex.PayloadSubject),
				Description:  payloadString(m.Payload, vectorindex.PayloadDescription),
				Organization: payloadString(m.Payload, vectorindex.PayloadOrganization),
				ProductID:    payloadString(m.Payload, vectorindex.PayloadProductID),
			},
			vector: m.Vector,
		})
	}
	return out
}

func (r *Retriever) countSearch(outcome string) {
	if r.metrics != nil {
		r.metrics.SimilaritySearches.WithLabelValues(outcome).Inc()
	}
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}
