package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/analytics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/similarity"
	"github.com/itaysc/foozool-ai-support-sub000/internal/storage"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
	"github.com/itaysc/foozool-ai-support-sub000/internal/vectorindex"
)

type stubClassifier struct {
	intents []string
	err     error
}

func (s stubClassifier) Classify(context.Context, string, string) ([]string, error) {
	return s.intents, s.err
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func (s stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return s.vector, s.err
}

func testTicket() ticket.Ticket {
	return ticket.Ticket{
		ExternalID:   "T-1",
		Subject:      "Cannot log in",
		Description:  "Getting an error on the login page",
		Organization: "acme",
		ProductID:    "prod-1",
	}
}

func TestHandlePersistsExtractsAndIndexes(t *testing.T) {
	tickets := storage.NewMemoryTicketStore()
	records := analytics.NewMemoryStore()
	index := vectorindex.NewMemoryIndex()
	extractor := analytics.NewExtractor(stubClassifier{intents: []string{"question"}}, records, nil)

	p := NewPipeline(tickets, extractor, stubEmbedder{vector: []float32{0.6, 0.8}}, index, nil, nil)
	result, err := p.Handle(context.Background(), testTicket())
	require.NoError(t, err)
	assert.Equal(t, "T-1", result.Record.ExternalTicketID)

	saved, err := tickets.FindByExternalIDs(context.Background(), []string{"T-1"})
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	stored, err := records.QueryRecent(context.Background(), analytics.QueryFilter{Organization: "acme"})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	matches, err := index.Query(context.Background(), []float32{0.6, 0.8}, 5, vectorindex.Filter{Organization: "acme"}, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Cannot log in", matches[0].Payload[vectorindex.PayloadSubject])
}

func TestHandleSurvivesEmbeddingFailure(t *testing.T) {
	tickets := storage.NewMemoryTicketStore()
	records := analytics.NewMemoryStore()
	index := vectorindex.NewMemoryIndex()
	extractor := analytics.NewExtractor(stubClassifier{}, records, nil)

	p := NewPipeline(tickets, extractor, stubEmbedder{err: errors.New("embedding service down")}, index, nil, nil)
	_, err := p.Handle(context.Background(), testTicket())
	require.NoError(t, err)

	matches, err := index.Query(context.Background(), []float32{0.6, 0.8}, 5, vectorindex.Filter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestHandleResolvesSimilarTickets(t *testing.T) {
	tickets := storage.NewMemoryTicketStore()
	records := analytics.NewMemoryStore()
	index := vectorindex.NewMemoryIndex()
	embedder := stubEmbedder{vector: []float32{0.6, 0.8}}
	extractor := analytics.NewExtractor(stubClassifier{}, records, nil)
	retriever := similarity.NewRetriever(embedder, index, tickets, nil, nil)

	p := NewPipeline(tickets, extractor, embedder, index, retriever, nil)

	old := testTicket()
	old.ExternalID = "T-0"
	old.Subject = "Cannot log in either"
	_, err := p.Handle(context.Background(), old)
	require.NoError(t, err)

	result, err := p.Handle(context.Background(), testTicket())
	require.NoError(t, err)
	require.Len(t, result.Similar, 1)
	assert.Equal(t, "T-0", result.Similar[0].Ticket.ExternalID)
}

func TestHandleRejectsMissingExternalID(t *testing.T) {
	p := NewPipeline(storage.NewMemoryTicketStore(), analytics.NewExtractor(stubClassifier{}, analytics.NewMemoryStore(), nil), nil, nil, nil, nil)
	_, err := p.Handle(context.Background(), ticket.Ticket{Subject: "no id"})
	assert.Error(t, err)
}

func TestConsumerConfigValidate(t *testing.T) {
	assert.Error(t, ConsumerConfig{}.Validate())
	assert.Error(t, ConsumerConfig{Subject: "tickets.created"}.Validate())
	assert.NoError(t, ConsumerConfig{Subject: "tickets.created", Queue: "insightd"}.Validate())
}
