package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

func TestMemoryTicketStoreRoundTrip(t *testing.T) {
	store := NewMemoryTicketStore()
	require.NoError(t, store.Save(context.Background(), ticket.Ticket{ExternalID: "T-1", Subject: "Login broken"}))
	require.NoError(t, store.Save(context.Background(), ticket.Ticket{ExternalID: "T-2", Subject: "Billing question"}))

	found, err := store.FindByExternalIDs(context.Background(), []string{"T-2", "T-404"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Billing question", found[0].Subject)
}

func TestMemoryTicketStoreSaveReplaces(t *testing.T) {
	store := NewMemoryTicketStore()
	require.NoError(t, store.Save(context.Background(), ticket.Ticket{ExternalID: "T-1", Subject: "old"}))
	require.NoError(t, store.Save(context.Background(), ticket.Ticket{ExternalID: "T-1", Subject: "new"}))

	found, err := store.FindByExternalIDs(context.Background(), []string{"T-1"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "new", found[0].Subject)
}
