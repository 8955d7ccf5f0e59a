package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/relationship"
	"github.com/roach88/contactdb/internal/tables"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadContactKeys returns the storage keys of every contact in key order.
func LoadContactKeys(ctx context.Context, q Querier) ([]contact.StorageKey, error) {
	rows, err := q.QueryContext(ctx, `SELECT contactId FROM Contacts ORDER BY contactId`)
	if err != nil {
		return nil, fmt.Errorf("query contact ids: %w", err)
	}
	defer rows.Close()

	var keys []contact.StorageKey
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contact id: %w", err)
		}
		keys = append(keys, contact.StorageKey(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact ids: %w", err)
	}
	return keys, nil
}

// LoadRelationships returns every stored edge in deterministic order.
func LoadRelationships(ctx context.Context, q Querier) ([]relationship.Edge, error) {
	rows, err := q.QueryContext(ctx, relationship.SelectSQL)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var edges []relationship.Edge
	for rows.Next() {
		var first, second int64
		var e relationship.Edge
		if err := rows.Scan(&first, &second, &e.Type); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		e.First, e.Second = contact.StorageKey(first), contact.StorageKey(second)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return edges, nil
}

// LoadIdentity returns the handle bound to an identity slot, or zero when
// the slot is empty.
func LoadIdentity(ctx context.Context, q Querier, identity contact.Identity) (contact.Handle, error) {
	var id int64
	err := q.QueryRowContext(ctx, selectIdentitySQL, int(identity)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query identity %d: %w", identity, err)
	}
	return contact.ToHandle(contact.StorageKey(id)), nil
}

// LoadSelfContact returns the self contact handle, or zero when unset.
func LoadSelfContact(ctx context.Context, q Querier) (contact.Handle, error) {
	return LoadIdentity(ctx, q, contact.SelfContact)
}

// LoadDisplayLabelGroups returns the distinct non-empty display-label
// groups in use, sorted.
func LoadDisplayLabelGroups(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT displayLabelGroup FROM Contacts
		WHERE displayLabelGroup IS NOT NULL AND displayLabelGroup != ''
		ORDER BY displayLabelGroup COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("query display label groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan display label group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate display label groups: %w", err)
	}
	return groups, nil
}

// ContactExists reports whether a contact with key k is stored.
func ContactExists(ctx context.Context, q Querier, k contact.StorageKey) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, ContactExistsSQL, int64(k)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query contact %d: %w", k, err)
	}
	return true, nil
}

// ContactHandles returns the handle of every stored contact.
func (s *Store) ContactHandles(ctx context.Context) ([]contact.Handle, error) {
	keys, err := LoadContactKeys(ctx, s.db)
	if err != nil {
		return nil, err
	}
	handles := make([]contact.Handle, len(keys))
	for i, k := range keys {
		handles[i] = contact.ToHandle(k)
	}
	return handles, nil
}

// Relationships returns the stored edges that name h as either endpoint.
// A zero h returns every edge.
func (s *Store) Relationships(ctx context.Context, h contact.Handle) ([]contact.Relationship, error) {
	edges, err := LoadRelationships(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := []contact.Relationship{}
	for _, e := range edges {
		if h != 0 && e.First != h.Key() && e.Second != h.Key() {
			continue
		}
		out = append(out, e.Relationship())
	}
	return out, nil
}

// SelfContact returns the self contact handle, or zero if unset.
func (s *Store) SelfContact(ctx context.Context) (contact.Handle, error) {
	return LoadSelfContact(ctx, s.db)
}

// DisplayLabelGroups returns the display-label groups in use.
func (s *Store) DisplayLabelGroups(ctx context.Context) ([]string, error) {
	return LoadDisplayLabelGroups(ctx, s.db)
}

// ReadContact loads the contact with handle h as stored.
// Details are returned grouped by kind in write order, followed by the
// derived GlobalPresence. Returns an error wrapping sql.ErrNoRows if the
// contact does not exist.
func (s *Store) ReadContact(ctx context.Context, h contact.Handle) (contact.Contact, error) {
	if h == 0 {
		return contact.Contact{}, fmt.Errorf("read contact 0: %w", sql.ErrNoRows)
	}
	key := int64(h.Key())

	c, err := scanContact(s.db.QueryRowContext(ctx, selectContactSQL, key))
	if err != nil {
		return contact.Contact{}, fmt.Errorf("read contact %d: %w", h, err)
	}

	meta, err := readCommon(ctx, s.db, key)
	if err != nil {
		return contact.Contact{}, err
	}

	all := append(tables.Writable(), tables.GlobalPresences())
	for _, tbl := range all {
		details, err := readDetails(ctx, s.db, tbl, key, meta)
		if err != nil {
			return contact.Contact{}, err
		}
		c.Details = append(c.Details, details...)
	}
	return c, nil
}

func scanContact(row *sql.Row) (contact.Contact, error) {
	var c contact.Contact
	var id, gender int64
	var label, first, last, middle, prefix, suffix, custom sql.NullString
	var created, modified sql.NullInt64
	var favorite bool
	if err := row.Scan(&id, &label, &first, &last, &middle, &prefix, &suffix, &custom,
		&created, &modified, &gender, &favorite); err != nil {
		return contact.Contact{}, err
	}
	c.ID = contact.ToHandle(contact.StorageKey(id))
	c.DisplayLabel = label.String
	c.Name = contact.Name{
		First:       first.String,
		Last:        last.String,
		Middle:      middle.String,
		Prefix:      prefix.String,
		Suffix:      suffix.String,
		CustomLabel: custom.String,
	}
	if created.Valid {
		c.Created = tables.FromMillis(created.Int64)
	}
	if modified.Valid {
		c.Modified = tables.FromMillis(modified.Int64)
	}
	c.Gender = contact.Gender(gender)
	c.Favorite = favorite
	return c, nil
}

type commonKey struct {
	kind     string
	detailID int64
}

func readCommon(ctx context.Context, q Querier, key int64) (map[commonKey]contact.Common, error) {
	rows, err := q.QueryContext(ctx, tables.SelectCommonSQL, key)
	if err != nil {
		return nil, fmt.Errorf("query details: %w", err)
	}
	defer rows.Close()

	meta := make(map[commonKey]contact.Common)
	for rows.Next() {
		var (
			k                  commonKey
			uri, linked, ctxts sql.NullString
		)
		if err := rows.Scan(&k.detailID, &k.kind, &uri, &linked, &ctxts); err != nil {
			return nil, fmt.Errorf("scan details: %w", err)
		}
		meta[k] = contact.Common{
			DetailURI:        uri.String,
			LinkedDetailURIs: tables.DecodeSet(linked.String),
			Contexts:         tables.DecodeSet(ctxts.String),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate details: %w", err)
	}
	return meta, nil
}

func readDetails(ctx context.Context, q Querier, tbl tables.Table, key int64, meta map[commonKey]contact.Common) ([]contact.Detail, error) {
	rows, err := q.QueryContext(ctx, tbl.SelectSQL(), key)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tbl.Name(), err)
	}
	defer rows.Close()

	var details []contact.Detail
	for rows.Next() {
		row := tbl.NewRow()
		if err := rows.Scan(row.Dest()...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl.Name(), err)
		}
		m := meta[commonKey{kind: tbl.DefinitionName(), detailID: row.DetailID}]
		details = append(details, tbl.Build(row, m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", tbl.Name(), err)
	}
	return details, nil
}
