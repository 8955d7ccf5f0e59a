package relationship

import "github.com/roach88/contactdb/internal/contact"

// Edge is a relationship row as stored.
type Edge struct {
	First  contact.StorageKey
	Second contact.StorageKey
	Type   string
}

// Relationship converts the stored row back to a caller-facing edge.
func (e Edge) Relationship() contact.Relationship {
	return contact.NewRelationship(contact.ToHandle(e.First), e.Type, contact.ToHandle(e.Second))
}

type target struct {
	typ    string
	second contact.StorageKey
}

// Index maps a first endpoint to the set of (type, second) pairs leaving it.
type Index map[contact.StorageKey]map[target]struct{}

// Add inserts e. It reports false if e was already present.
func (ix Index) Add(e Edge) bool {
	set, ok := ix[e.First]
	if !ok {
		set = make(map[target]struct{})
		ix[e.First] = set
	}
	t := target{typ: e.Type, second: e.Second}
	if _, dup := set[t]; dup {
		return false
	}
	set[t] = struct{}{}
	return true
}

// Has reports whether e is present.
func (ix Index) Has(e Edge) bool {
	_, ok := ix[e.First][target{typ: e.Type, second: e.Second}]
	return ok
}

// Snapshot is the stored state a batch is validated against.
type Snapshot struct {
	managerURI string
	contacts   map[contact.StorageKey]struct{}
	edges      Index
}

// NewSnapshot builds a snapshot from the stored contact keys and edges.
// managerURI is the qualifier that identifies this store on endpoints.
func NewSnapshot(managerURI string, contacts []contact.StorageKey, edges []Edge) *Snapshot {
	s := &Snapshot{
		managerURI: managerURI,
		contacts:   make(map[contact.StorageKey]struct{}, len(contacts)),
		edges:      make(Index),
	}
	for _, k := range contacts {
		s.contacts[k] = struct{}{}
	}
	for _, e := range edges {
		s.edges.Add(e)
	}
	return s
}

// HasContact reports whether the contact with key k exists.
func (s *Snapshot) HasContact(k contact.StorageKey) bool {
	_, ok := s.contacts[k]
	return ok
}

// HasEdge reports whether e is stored.
func (s *Snapshot) HasEdge(e Edge) bool {
	return s.edges.Has(e)
}

func (s *Snapshot) localManager(uri string) bool {
	return uri == "" || uri == s.managerURI
}
