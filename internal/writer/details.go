package writer

import (
	"fmt"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/presence"
	"github.com/roach88/contactdb/internal/tables"
)

// fieldMask selects the detail kinds written on save. The zero value
// writes every kind.
type fieldMask map[contact.Kind]struct{}

func newFieldMask(kinds []contact.Kind) fieldMask {
	if len(kinds) == 0 {
		return nil
	}
	m := make(fieldMask, len(kinds))
	for _, k := range kinds {
		m[k] = struct{}{}
	}
	return m
}

func (m fieldMask) allows(k contact.Kind) bool {
	if m == nil {
		return true
	}
	_, ok := m[k]
	return ok
}

// allowsPresence reports whether the presence path runs. The global
// presence is derived from presences, so either kind enables it.
func (m fieldMask) allowsPresence() bool {
	return m.allows(contact.KindPresence) || m.allows(contact.KindGlobalPresence)
}

// presenceOnly reports whether the mask names nothing but presence kinds.
func (m fieldMask) presenceOnly() bool {
	if m == nil {
		return false
	}
	for k := range m {
		if k != contact.KindPresence && k != contact.KindGlobalPresence {
			return false
		}
	}
	return true
}

// detailResult is what writing the details of one contact produced.
type detailResult struct {
	presenceWritten bool
	global          contact.GlobalPresence
	hasGlobal       bool
}

// validate checks that every detail on c is a kind the engine stores.
func validate(c *contact.Contact) error {
	for _, d := range c.Details {
		if !tables.Recognized(d) {
			kind := "<nil>"
			if d != nil {
				kind = string(d.Kind())
			}
			return contact.NewError(contact.InvalidDetail, "write details",
				fmt.Errorf("unsupported detail kind %q", kind))
		}
	}
	return nil
}

// writeDetails validates c and replaces the stored details of every kind
// the mask allows. Each kind is deleted and reinserted in full.
//
// A *contact.Error is a per-item failure that left no detail rows
// touched; any other error is a storage failure.
func (cl *call) writeDetails(key contact.StorageKey, c *contact.Contact, mask fieldMask) (detailResult, error) {
	var res detailResult
	if err := validate(c); err != nil {
		return res, err
	}

	for _, t := range tables.Writable() {
		if t.Kind() == contact.KindPresence {
			if !mask.allowsPresence() {
				continue
			}
			global, ok, err := cl.writePresences(key, c)
			if err != nil {
				return res, err
			}
			res.presenceWritten, res.global, res.hasGlobal = true, global, ok
			continue
		}
		if !mask.allows(t.Kind()) {
			continue
		}
		ts := cl.stmts.details[t.Kind()]
		if err := cl.clearKind(ts, key); err != nil {
			return res, err
		}
		for _, d := range c.DetailsOf(t.Kind()) {
			if err := cl.insertDetail(ts, key, d); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// clearKind removes every row of one kind for a contact along with the
// common metadata of those rows.
func (cl *call) clearKind(ts *tableStmts, key contact.StorageKey) error {
	if _, err := cl.exec(ts.delete, int64(key)); err != nil {
		return fmt.Errorf("delete %s: %w", ts.table.Name(), err)
	}
	if _, err := cl.exec(cl.stmts.deleteCommon, int64(key), ts.table.DefinitionName()); err != nil {
		return fmt.Errorf("delete %s details: %w", ts.table.Name(), err)
	}
	return nil
}

// insertDetail inserts one detail row and, when d carries metadata, its
// row in the Details side table.
func (cl *call) insertDetail(ts *tableStmts, key contact.StorageKey, d contact.Detail) error {
	vals, err := ts.table.Values(d)
	if err != nil {
		return err
	}
	res, err := cl.exec(ts.insert, append([]any{int64(key)}, vals...)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", ts.table.Name(), err)
	}
	detailID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s: last insert id: %w", ts.table.Name(), err)
	}
	common, ok := tables.CommonValues(key, detailID, d)
	if !ok {
		return nil
	}
	if _, err := cl.exec(cl.stmts.insertCommon, common...); err != nil {
		return fmt.Errorf("insert %s details: %w", ts.table.Name(), err)
	}
	return nil
}

// writePresences replaces the presences of a contact and recomputes its
// global presence. The existing global presence row is always removed;
// a new one is written only when the contact has at least one presence.
func (cl *call) writePresences(key contact.StorageKey, c *contact.Contact) (contact.GlobalPresence, bool, error) {
	ts := cl.stmts.details[contact.KindPresence]
	if err := cl.clearKind(ts, key); err != nil {
		return contact.GlobalPresence{}, false, err
	}
	gp := cl.stmts.globalPresence
	if _, err := cl.exec(gp.delete, int64(key)); err != nil {
		return contact.GlobalPresence{}, false, fmt.Errorf("delete %s: %w", gp.table.Name(), err)
	}

	presences := contact.Typed[contact.Presence](c)
	for _, p := range presences {
		if err := cl.insertDetail(ts, key, p); err != nil {
			return contact.GlobalPresence{}, false, err
		}
	}

	global, ok := presence.Select(presences)
	if !ok {
		return contact.GlobalPresence{}, false, nil
	}
	vals, err := gp.table.Values(global)
	if err != nil {
		return contact.GlobalPresence{}, false, err
	}
	if _, err := cl.exec(gp.insert, append([]any{int64(key)}, vals...)...); err != nil {
		return contact.GlobalPresence{}, false, fmt.Errorf("insert %s: %w", gp.table.Name(), err)
	}
	return global, true, nil
}
