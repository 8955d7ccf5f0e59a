package writer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/store"
)

// maxDeleteBatch bounds the IN list of a batched contact delete.
const maxDeleteBatch = 500

// saved is a contact written in the current call. Its effects are applied
// to the caller's aggregate only after commit.
type saved struct {
	index    int
	id       contact.Handle
	created  bool
	stamp    time.Time
	birth    time.Time
	presence detailResult
}

// SaveContacts creates or updates contacts in one transaction.
//
// A contact with a zero ID is created; any other contact is updated. When
// mask is non-empty only the named detail kinds are written and every
// other kind is left as stored. Per-item failures are returned in the
// ErrorMap and do not stop the batch; the returned error carries the
// highest precedence code.
//
// After commit the created contacts receive their new IDs and every saved
// contact receives its timestamps and derived global presence. Created
// contacts are published as contactsAdded and updated ones as
// contactsChanged, or contactsPresenceChanged when mask names only
// presence kinds.
func (w *Writer) SaveContacts(ctx context.Context, contacts []contact.Contact, mask []contact.Kind) (contact.ErrorMap, error) {
	const op = "save contacts"
	ctx, span := w.startSpan(ctx, "SaveContacts")
	span.SetAttributes(attribute.Int("contacts.count", len(contacts)), attribute.Int("mask.size", len(mask)))

	w.mu.Lock()
	defer w.mu.Unlock()

	m := newFieldMask(mask)
	errs := make(contact.ErrorMap)
	var done []saved
	var groupsBefore, groupsAfter []string

	err := w.inTx(ctx, op, func(cl *call) error {
		var err error
		done = done[:0]
		if groupsBefore, err = store.LoadDisplayLabelGroups(cl.ctx, cl.tx); err != nil {
			return err
		}
		for i := range contacts {
			c := &contacts[i]
			var s saved
			if c.ID == 0 {
				s, err = cl.create(i, c, m, w.now())
			} else {
				s, err = cl.update(i, c, m, w.now())
			}
			var itemErr *contact.Error
			if errors.As(err, &itemErr) {
				errs.Set(i, itemErr.Code)
				w.logger.Debug("contact not saved", "index", i, "id", c.ID, "code", itemErr.Code, "error", err)
				continue
			}
			if err != nil {
				return err
			}
			done = append(done, s)
		}
		groupsAfter, err = store.LoadDisplayLabelGroups(cl.ctx, cl.tx)
		return err
	})
	if err != nil {
		w.logger.Error("save contacts failed", "contacts", len(contacts), "error", err)
		endSpan(span, err)
		return nil, err
	}

	var added, changed []contact.Handle
	for _, s := range done {
		c := &contacts[s.index]
		if s.created {
			c.ID = s.id
			c.Created = s.birth
			added = append(added, s.id)
		} else if !slices.Contains(changed, s.id) {
			changed = append(changed, s.id)
		}
		c.Modified = s.stamp
		if s.presence.presenceWritten {
			if s.presence.hasGlobal {
				c.SetDetails(contact.KindGlobalPresence, s.presence.global)
			} else {
				c.SetDetails(contact.KindGlobalPresence)
			}
		}
	}

	w.notifier.ContactsAdded(ctx, added)
	if m.presenceOnly() {
		w.notifier.ContactsPresenceChanged(ctx, changed)
	} else {
		w.notifier.ContactsChanged(ctx, changed)
	}
	if groupsChanged(groupsBefore, groupsAfter) {
		w.notifier.DisplayLabelGroupsChanged(ctx)
	}

	w.logger.Info("contacts saved",
		"created", len(added),
		"updated", len(changed),
		"failed", len(errs),
	)
	err = outcome(op, errs)
	endSpan(span, err)
	return errs, err
}

// create inserts the core row of c and writes its details. If the details
// cannot be written the core row is removed again.
func (cl *call) create(i int, c *contact.Contact, m fieldMask, now time.Time) (saved, error) {
	row := *c
	if row.Created.IsZero() {
		row.Created = now
	}
	row.Modified = now

	res, err := cl.exec(cl.stmts.insertContact, store.ContactValues(&row)...)
	if err != nil {
		return saved{}, fmt.Errorf("insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return saved{}, fmt.Errorf("insert contact: last insert id: %w", err)
	}
	key := contact.StorageKey(id)

	pres, err := cl.writeDetails(key, &row, m)
	var itemErr *contact.Error
	if errors.As(err, &itemErr) {
		if _, cleanupErr := cl.exec(cl.stmts.deleteContact, int64(key)); cleanupErr != nil {
			return saved{}, fmt.Errorf("remove failed contact: %w", cleanupErr)
		}
		return saved{}, err
	}
	if err != nil {
		return saved{}, err
	}
	return saved{
		index:    i,
		id:       contact.ToHandle(key),
		created:  true,
		stamp:    now,
		birth:    row.Created,
		presence: pres,
	}, nil
}

// update rewrites the core row of an existing contact and its details.
func (cl *call) update(i int, c *contact.Contact, m fieldMask, now time.Time) (saved, error) {
	key := c.ID.Key()
	exists, err := store.ContactExists(cl.ctx, cl.tx, key)
	if err != nil {
		return saved{}, err
	}
	if !exists {
		return saved{}, contact.NewError(contact.DoesNotExist, "update contact",
			fmt.Errorf("contact %d", c.ID))
	}
	// Reject bad details before the core row is touched.
	if err := validate(c); err != nil {
		return saved{}, err
	}

	row := *c
	row.Modified = now
	if _, err := cl.exec(cl.stmts.updateContact, append(store.ContactValues(&row), int64(key))...); err != nil {
		return saved{}, fmt.Errorf("update contact %d: %w", c.ID, err)
	}
	pres, err := cl.writeDetails(key, &row, m)
	if err != nil {
		return saved{}, err
	}
	return saved{index: i, id: c.ID, stamp: now, presence: pres}, nil
}

// RemoveContacts removes contacts and every relationship naming them.
//
// The self contact is rejected with BadArgument and an unknown or zero ID
// with DoesNotExist; the remaining IDs are still removed. A repeated ID is
// removed once. Published events are contactsRemoved with the removed IDs
// and relationshipsRemoved with every endpoint of a removed edge.
func (w *Writer) RemoveContacts(ctx context.Context, ids []contact.Handle) (contact.ErrorMap, error) {
	const op = "remove contacts"
	ctx, span := w.startSpan(ctx, "RemoveContacts")
	span.SetAttributes(attribute.Int("contacts.count", len(ids)))

	w.mu.Lock()
	defer w.mu.Unlock()

	errs := make(contact.ErrorMap)
	var removed, touched []contact.Handle
	var groupsBefore, groupsAfter []string

	err := w.inTx(ctx, op, func(cl *call) error {
		removed, touched = nil, nil
		self, err := store.LoadSelfContact(cl.ctx, cl.tx)
		if err != nil {
			return err
		}
		keys, err := store.LoadContactKeys(cl.ctx, cl.tx)
		if err != nil {
			return err
		}
		if groupsBefore, err = store.LoadDisplayLabelGroups(cl.ctx, cl.tx); err != nil {
			return err
		}
		existing := make(map[contact.StorageKey]struct{}, len(keys))
		for _, k := range keys {
			existing[k] = struct{}{}
		}

		queued := make(map[contact.Handle]struct{})
		for i, id := range ids {
			if id == 0 {
				errs.Set(i, contact.DoesNotExist)
				continue
			}
			if id == self {
				errs.Set(i, contact.BadArgument)
				continue
			}
			if _, ok := existing[id.Key()]; !ok {
				errs.Set(i, contact.DoesNotExist)
				continue
			}
			if _, dup := queued[id]; dup {
				continue
			}
			queued[id] = struct{}{}
			removed = append(removed, id)
		}
		if len(removed) == 0 {
			groupsAfter = groupsBefore
			return nil
		}

		if touched, err = cl.removeEdgesOf(queued); err != nil {
			return err
		}
		if err := cl.deleteContacts(removed); err != nil {
			return err
		}
		groupsAfter, err = store.LoadDisplayLabelGroups(cl.ctx, cl.tx)
		return err
	})
	if err != nil {
		w.logger.Error("remove contacts failed", "contacts", len(ids), "error", err)
		endSpan(span, err)
		return nil, err
	}

	w.notifier.ContactsRemoved(ctx, removed)
	w.notifier.RelationshipsRemoved(ctx, touched)
	if groupsChanged(groupsBefore, groupsAfter) {
		w.notifier.DisplayLabelGroupsChanged(ctx)
	}

	w.logger.Info("contacts removed",
		"removed", len(removed),
		"relationships_touched", len(touched),
		"failed", len(errs),
	)
	err = outcome(op, errs)
	endSpan(span, err)
	return errs, err
}

// removeEdgesOf deletes every relationship with an endpoint in ids and
// returns the endpoints of the deleted edges in order of first appearance.
func (cl *call) removeEdgesOf(ids map[contact.Handle]struct{}) ([]contact.Handle, error) {
	edges, err := store.LoadRelationships(cl.ctx, cl.tx)
	if err != nil {
		return nil, err
	}
	var touched []contact.Handle
	seen := make(map[contact.Handle]struct{})
	for _, e := range edges {
		first, second := contact.ToHandle(e.First), contact.ToHandle(e.Second)
		_, a := ids[first]
		_, b := ids[second]
		if !a && !b {
			continue
		}
		for _, h := range []contact.Handle{first, second} {
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				touched = append(touched, h)
			}
		}
	}
	if len(touched) == 0 {
		return nil, nil
	}
	for id := range ids {
		if _, ok := seen[id]; !ok {
			continue
		}
		if _, err := cl.exec(cl.stmts.deleteContactEdges, int64(id.Key()), int64(id.Key())); err != nil {
			return nil, fmt.Errorf("delete relationships of %d: %w", id, err)
		}
	}
	return touched, nil
}

// deleteContacts removes contacts in batches. Detail rows, their metadata
// and the global presence cascade.
func (cl *call) deleteContacts(ids []contact.Handle) error {
	for start := 0; start < len(ids); start += maxDeleteBatch {
		chunk := ids[start:min(start+maxDeleteBatch, len(ids))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = int64(id.Key())
		}
		query := "DELETE FROM Contacts WHERE contactId IN (" +
			strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ") + ")"
		if _, err := cl.execSQL(query, args...); err != nil {
			return fmt.Errorf("delete contacts: %w", err)
		}
	}
	return nil
}
