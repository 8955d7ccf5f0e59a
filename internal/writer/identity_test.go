package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/testutil"
)

func TestSetIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hs := f.create(t, testutil.Person("Me", ""), testutil.Person("Other", ""))
	f.rec.Reset()

	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, hs[0]))
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, hs[0]))
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, hs[1]))
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, 0))

	self, err := f.store.SelfContact(ctx)
	require.NoError(t, err)
	assert.Zero(t, self)

	var keys [][]uint32
	for _, ev := range f.rec.Named(notify.SelfContactIDChanged) {
		keys = append(keys, ev.Keys)
	}
	assert.Equal(t, [][]uint32{
		{0, uint32(hs[0].Key())},
		{uint32(hs[0].Key()), uint32(hs[1].Key())},
		{uint32(hs[1].Key()), 0},
	}, keys, "rebinding the same contact publishes nothing")
}

func TestSetIdentity_MissingContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.create(t, testutil.Person("Me", ""))[0]
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, h))
	f.rec.Reset()

	err := f.w.SetIdentity(ctx, contact.SelfContact, 42)

	assert.Equal(t, contact.DoesNotExist, contact.CodeOf(err))
	self, err := f.store.SelfContact(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, self)
	assert.Empty(t, f.rec.Events())
}

func TestSetIdentity_RemovedSelfCanBeRebound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hs := f.create(t, testutil.Person("Me", ""), testutil.Person("New", ""))
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, hs[0]))
	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, 0))

	errs, err := f.w.RemoveContacts(ctx, hs[:1])
	require.NoError(t, err)
	assert.Empty(t, errs)

	require.NoError(t, f.w.SetIdentity(ctx, contact.SelfContact, hs[1]))
	self, err := f.store.SelfContact(ctx)
	require.NoError(t, err)
	assert.Equal(t, hs[1], self)
}
