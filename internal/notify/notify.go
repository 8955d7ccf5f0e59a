// Package notify publishes change events for committed writes.
//
// A Notifier is created once per process and handed to the writer. Every
// method takes the set of affected handles, converts them to storage keys
// and publishes a single event. An empty set publishes nothing. Publishing
// is fire-and-forget: failures are logged and never reported to the caller,
// since the write they describe has already been committed.
package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/contactdb/internal/contact"
)

// Event names.
const (
	ContactsAdded             = "contactsAdded"
	ContactsChanged           = "contactsChanged"
	ContactsRemoved           = "contactsRemoved"
	ContactsPresenceChanged   = "contactsPresenceChanged"
	CollectionsAdded          = "collectionsAdded"
	CollectionsChanged        = "collectionsChanged"
	CollectionsRemoved        = "collectionsRemoved"
	CollectionContactsChanged = "collectionContactsChanged"
	RelationshipsAdded        = "relationshipsAdded"
	RelationshipsRemoved      = "relationshipsRemoved"
	SelfContactIDChanged      = "selfContactIdChanged"
	DisplayLabelGroupsChanged = "displayLabelGroupsChanged"
)

// Interface is the namespace events are published under.
const Interface = "org.roach88.contactdb.Changes"

// nonPrivilegedSuffix marks the interface of a store without access to
// privileged details.
const nonPrivilegedSuffix = ".np"

// ErrClosed is returned by publishers used after Close.
var ErrClosed = errors.New("notify: publisher closed")

// Event is one published change.
type Event struct {
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	Interface string   `json:"interface"`
	Keys      []uint32 `json:"keys,omitempty"`
}

// Publisher delivers events to a transport.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger used for registration and publish failures.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// NonPrivileged publishes on the non-privileged interface.
func NonPrivileged() Option {
	return func(n *Notifier) { n.nonPrivileged = true }
}

// WithSourceID fixes the source identifier instead of generating one.
func WithSourceID(id string) Option {
	return func(n *Notifier) { n.sourceID = id }
}

// Notifier publishes change events to a Publisher.
type Notifier struct {
	pub           Publisher
	logger        *slog.Logger
	nonPrivileged bool

	mu         sync.Mutex
	sourceID   string
	source     string
	iface      string
	registered bool
	closed     bool
}

// New creates a Notifier publishing to pub.
func New(pub Publisher, opts ...Option) *Notifier {
	n := &Notifier{pub: pub, logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Source returns the source name events are published under, registering
// it on first use.
func (n *Notifier) Source() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registerLocked()
	return n.source
}

// Interface returns the interface events are published on.
func (n *Notifier) Interface() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registerLocked()
	return n.iface
}

func (n *Notifier) registerLocked() {
	if n.registered {
		return
	}
	if n.sourceID == "" {
		n.sourceID = strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	}
	n.source = "contactdb.source_" + n.sourceID
	n.iface = Interface
	if n.nonPrivileged {
		n.iface += nonPrivilegedSuffix
	}
	n.registered = true
	n.logger.Debug("notifier registered", "source", n.source, "interface", n.iface)
}

// Close releases the publisher. Later events are dropped.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	if c, ok := n.pub.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (n *Notifier) publish(ctx context.Context, name string, keys []uint32) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.logger.Warn("event dropped after close", "event", name)
		return
	}
	n.registerLocked()
	ev := Event{Name: name, Source: n.source, Interface: n.iface, Keys: keys}
	n.mu.Unlock()

	if err := n.pub.Publish(ctx, ev); err != nil {
		n.logger.Warn("publish failed", "event", name, "keys", len(keys), "error", err)
	}
}

func contactKeys(handles []contact.Handle) []uint32 {
	keys := make([]uint32, len(handles))
	for i, h := range handles {
		keys[i] = uint32(h.Key())
	}
	return keys
}

func collectionKeys(handles []contact.CollectionHandle) []uint32 {
	keys := make([]uint32, len(handles))
	for i, h := range handles {
		keys[i] = uint32(h.Key())
	}
	return keys
}

func (n *Notifier) contacts(ctx context.Context, name string, handles []contact.Handle) {
	if len(handles) == 0 {
		return
	}
	n.publish(ctx, name, contactKeys(handles))
}

func (n *Notifier) collections(ctx context.Context, name string, handles []contact.CollectionHandle) {
	if len(handles) == 0 {
		return
	}
	n.publish(ctx, name, collectionKeys(handles))
}

// ContactsAdded publishes newly created contacts.
func (n *Notifier) ContactsAdded(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, ContactsAdded, ids)
}

// ContactsChanged publishes updated contacts.
func (n *Notifier) ContactsChanged(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, ContactsChanged, ids)
}

// ContactsRemoved publishes removed contacts.
func (n *Notifier) ContactsRemoved(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, ContactsRemoved, ids)
}

// ContactsPresenceChanged publishes contacts whose presence alone was
// updated.
func (n *Notifier) ContactsPresenceChanged(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, ContactsPresenceChanged, ids)
}

// CollectionsAdded publishes newly created collections.
func (n *Notifier) CollectionsAdded(ctx context.Context, ids []contact.CollectionHandle) {
	n.collections(ctx, CollectionsAdded, ids)
}

// CollectionsChanged publishes updated collections.
func (n *Notifier) CollectionsChanged(ctx context.Context, ids []contact.CollectionHandle) {
	n.collections(ctx, CollectionsChanged, ids)
}

// CollectionsRemoved publishes removed collections.
func (n *Notifier) CollectionsRemoved(ctx context.Context, ids []contact.CollectionHandle) {
	n.collections(ctx, CollectionsRemoved, ids)
}

// CollectionContactsChanged publishes collections whose membership
// changed.
func (n *Notifier) CollectionContactsChanged(ctx context.Context, ids []contact.CollectionHandle) {
	n.collections(ctx, CollectionContactsChanged, ids)
}

// RelationshipsAdded publishes the contacts whose relationships gained
// edges.
func (n *Notifier) RelationshipsAdded(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, RelationshipsAdded, ids)
}

// RelationshipsRemoved publishes the contacts whose relationships lost
// edges.
func (n *Notifier) RelationshipsRemoved(ctx context.Context, ids []contact.Handle) {
	n.contacts(ctx, RelationshipsRemoved, ids)
}

// SelfContactIDChanged publishes the old and new self contact. An unset
// side is sent as key 0, which storage never assigns to a contact.
func (n *Notifier) SelfContactIDChanged(ctx context.Context, prev, next contact.Handle) {
	if prev == next {
		return
	}
	n.publish(ctx, SelfContactIDChanged, []uint32{optionalKey(prev), optionalKey(next)})
}

func optionalKey(h contact.Handle) uint32 {
	if h == 0 {
		return 0
	}
	return uint32(h.Key())
}

// DisplayLabelGroupsChanged publishes that the set of display-label groups
// changed. The event has no payload.
func (n *Notifier) DisplayLabelGroupsChanged(ctx context.Context) {
	n.publish(ctx, DisplayLabelGroupsChanged, nil)
}
