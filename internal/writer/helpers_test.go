package writer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/store"
	"github.com/roach88/contactdb/internal/testutil"
)

type fixture struct {
	w     *Writer
	store *store.Store
	rec   *notify.Recorder
	clock *testutil.DeterministicClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := testutil.OpenStore(t)
	n, rec := testutil.NewNotifier(t)
	clock := testutil.NewDeterministicClock()

	opts = append([]Option{
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	w, err := New(context.Background(), s, n, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	return &fixture{w: w, store: s, rec: rec, clock: clock}
}

// create saves contacts that must all succeed and returns their handles.
func (f *fixture) create(t *testing.T, cs ...contact.Contact) []contact.Handle {
	t.Helper()
	errs, err := f.w.SaveContacts(context.Background(), cs, nil)
	require.NoError(t, err)
	require.Empty(t, errs)
	return testutil.Handles(cs)
}

func (f *fixture) read(t *testing.T, h contact.Handle) *contact.Contact {
	t.Helper()
	c, err := f.store.ReadContact(context.Background(), h)
	require.NoError(t, err)
	return &c
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func keysOf(hs ...contact.Handle) []uint32 {
	out := make([]uint32, len(hs))
	for i, h := range hs {
		out[i] = uint32(h.Key())
	}
	return out
}
