package relationship

import (
	"github.com/roach88/contactdb/internal/contact"
)

// Plan is the outcome of validating a batch.
type Plan struct {
	// Edges are the rows to insert (PlanSave) or delete (PlanRemove), in
	// input order.
	Edges []Edge

	// Errors holds the per-index failures of the batch.
	Errors contact.ErrorMap

	// Touched lists every endpoint of Edges once, in order of first
	// appearance.
	Touched []contact.Handle
}

// Err returns the aggregate outcome of the batch.
func (p *Plan) Err() contact.Code {
	return p.Errors.Worst()
}

func (p *Plan) accept(e Edge, seen map[contact.StorageKey]struct{}) {
	p.Edges = append(p.Edges, e)
	for _, k := range []contact.StorageKey{e.First, e.Second} {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		p.Touched = append(p.Touched, contact.ToHandle(k))
	}
}

// wellFormed reports whether r carries two endpoints and a type.
func wellFormed(r contact.Relationship) bool {
	return r.First.ID != 0 && r.Second.ID != 0 && r.Type != ""
}

func toEdge(r contact.Relationship) Edge {
	return Edge{First: r.First.ID.Key(), Second: r.Second.ID.Key(), Type: r.Type}
}

// PlanSave validates batch against s.
//
// An edge is rejected with InvalidRelationship when it lacks an endpoint or
// type, names a contact that does not exist, carries a foreign manager
// qualifier, or links a contact to itself. An edge that is already stored,
// or was accepted earlier in the same batch, is skipped without error.
func PlanSave(s *Snapshot, batch []contact.Relationship) *Plan {
	p := &Plan{Errors: make(contact.ErrorMap)}
	proposed := make(Index)
	seen := make(map[contact.StorageKey]struct{})

	for i, r := range batch {
		if !wellFormed(r) {
			p.Errors.Set(i, contact.InvalidRelationship)
			continue
		}
		e := toEdge(r)
		if !s.HasContact(e.First) || !s.HasContact(e.Second) ||
			!s.localManager(r.First.ManagerURI) || !s.localManager(r.Second.ManagerURI) ||
			e.First == e.Second {
			p.Errors.Set(i, contact.InvalidRelationship)
			continue
		}
		if s.HasEdge(e) || !proposed.Add(e) {
			continue
		}
		p.accept(e, seen)
	}
	return p
}

// PlanRemove validates a removal batch against s.
//
// A malformed edge is InvalidRelationship. An edge that is not stored, or
// carries a foreign manager qualifier, is DoesNotExist. An edge removed
// earlier in the same batch is skipped without error.
func PlanRemove(s *Snapshot, batch []contact.Relationship) *Plan {
	p := &Plan{Errors: make(contact.ErrorMap)}
	removed := make(Index)
	seen := make(map[contact.StorageKey]struct{})

	for i, r := range batch {
		if !wellFormed(r) {
			p.Errors.Set(i, contact.InvalidRelationship)
			continue
		}
		e := toEdge(r)
		if removed.Has(e) {
			continue
		}
		if !s.localManager(r.First.ManagerURI) || !s.localManager(r.Second.ManagerURI) || !s.HasEdge(e) {
			p.Errors.Set(i, contact.DoesNotExist)
			continue
		}
		removed.Add(e)
		p.accept(e, seen)
	}
	return p
}
