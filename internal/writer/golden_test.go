package writer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/testutil"
)

// TestEventStream_Golden pins the events published by a reference
// sequence of writes.
func TestEventStream_Golden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	people := []contact.Contact{
		testutil.Person("Ada", "Lovelace", contact.Presence{State: contact.PresenceAvailable}),
		testutil.Person("Bob", "Babbage"),
	}
	f.create(t, people...)

	_, err := f.w.SaveRelationships(ctx, []contact.Relationship{
		contact.NewRelationship(people[0].ID, contact.RelationshipHasSpouse, people[1].ID),
	})
	require.NoError(t, err)

	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, people[0].ID))

	people[1].Details = []contact.Detail{contact.Presence{State: contact.PresenceAway}}
	_, err = f.w.SaveContacts(ctx, people[1:], []contact.Kind{contact.KindPresence})
	require.NoError(t, err)

	_, err = f.w.RemoveContacts(ctx, []contact.Handle{people[1].ID})
	require.NoError(t, err)

	data, err := json.MarshalIndent(f.rec.Events(), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "event_stream", append(data, '\n'))
}
