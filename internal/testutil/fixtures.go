package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/store"
)

// SourceID is the notifier source identifier used by NewNotifier.
const SourceID = "test"

// OpenStore opens a fresh store under t.TempDir and closes it on cleanup.
func OpenStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "contacts.db"), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewNotifier returns a notifier with a fixed source that records every
// event it publishes.
func NewNotifier(t testing.TB) (*notify.Notifier, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	n := notify.New(rec, notify.WithSourceID(SourceID))
	t.Cleanup(func() { n.Close() })
	return n, rec
}

// Person builds an unsaved contact with the given name and details.
func Person(first, last string, details ...contact.Detail) contact.Contact {
	label := first
	if last != "" {
		label += " " + last
	}
	return contact.Contact{
		DisplayLabel: label,
		Name:         contact.Name{First: first, Last: last},
		Details:      details,
	}
}

// Handles returns the IDs of cs in order.
func Handles(cs []contact.Contact) []contact.Handle {
	out := make([]contact.Handle, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
