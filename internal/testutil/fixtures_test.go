package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
)

func TestOpenStore_IsEmpty(t *testing.T) {
	s := OpenStore(t)
	handles, err := s.ContactHandles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestNewNotifier_RecordsWithFixedSource(t *testing.T) {
	n, rec := NewNotifier(t)
	n.ContactsAdded(context.Background(), []contact.Handle{2})

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "contactdb.source_"+SourceID, events[0].Source)
}

func TestPerson(t *testing.T) {
	p := Person("Ada", "Lovelace", contact.Tag{Tag: "x"})
	assert.Equal(t, "Ada Lovelace", p.DisplayLabel)
	assert.Equal(t, contact.Handle(0), p.ID)
	assert.Len(t, p.Details, 1)
	assert.Equal(t, "Ada", Person("Ada", "").DisplayLabel)

	assert.Equal(t, []contact.Handle{3, 0}, Handles([]contact.Contact{{ID: 3}, {}}))
}
