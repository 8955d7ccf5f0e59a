package tables

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/contactdb/internal/contact"
)

type colType int

const (
	colText colType = iota
	colInt
	colBool
	colTime
	colSet
)

type column struct {
	name string
	typ  colType
}

// Table describes how one detail kind is stored.
type Table struct {
	kind    contact.Kind
	name    string
	columns []column
	values  func(contact.Detail) []any
	build   func(r *Row, meta contact.Common) contact.Detail
}

// Kind returns the detail kind stored in the table.
func (t Table) Kind() contact.Kind { return t.kind }

// Name returns the table name.
func (t Table) Name() string { return t.name }

// DefinitionName returns the stable tag used in field masks and in the
// common-detail side table.
func (t Table) DefinitionName() string { return string(t.kind) }

// Columns returns the value columns in bind order, excluding contactId.
func (t Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Values extracts the bind values of d aligned with Columns.
func (t Table) Values(d contact.Detail) ([]any, error) {
	if !Recognized(d) || d.Kind() != t.kind {
		return nil, fmt.Errorf("table %s: cannot bind %T", t.name, d)
	}
	return t.values(d), nil
}

// InsertSQL returns the insert statement. The first placeholder is the
// contact's storage key, followed by Columns.
func (t Table) InsertSQL() string {
	cols := append([]string{"contactId"}, t.Columns()...)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), placeholders(len(cols)))
}

// DeleteSQL returns the statement removing every row of a contact.
func (t Table) DeleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE contactId = ?", t.name)
}

// SelectSQL returns the statement reading a contact's rows in insertion
// order. The first selected column is the row's detailId.
func (t Table) SelectSQL() string {
	id := "detailId"
	if t.kind == contact.KindGlobalPresence {
		id = "contactId"
	}
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE contactId = ? ORDER BY %s",
		id, strings.Join(t.Columns(), ", "), t.name, id)
}

// NewRow allocates scan destinations matching SelectSQL.
func (t Table) NewRow() *Row {
	r := &Row{dest: make([]any, len(t.columns)+1)}
	r.dest[0] = &r.DetailID
	for i, c := range t.columns {
		switch c.typ {
		case colText, colSet:
			r.dest[i+1] = new(sql.NullString)
		default:
			r.dest[i+1] = new(sql.NullInt64)
		}
	}
	return r
}

// Build decodes a scanned row into a detail carrying meta.
func (t Table) Build(r *Row, meta contact.Common) contact.Detail {
	return t.build(r, meta)
}

// Row holds one scanned detail row.
type Row struct {
	DetailID int64
	dest     []any
}

// Dest returns the scan destinations.
func (r *Row) Dest() []any { return r.dest }

func (r *Row) textAt(i int) string {
	return r.dest[i+1].(*sql.NullString).String
}

func (r *Row) intAt(i int) int64 {
	return r.dest[i+1].(*sql.NullInt64).Int64
}

func (r *Row) boolAt(i int) bool {
	return r.intAt(i) != 0
}

func (r *Row) timeAt(i int) time.Time {
	v := r.dest[i+1].(*sql.NullInt64)
	if !v.Valid {
		return time.Time{}
	}
	return FromMillis(v.Int64)
}

func (r *Row) setAt(i int) []string {
	return DecodeSet(r.textAt(i))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ToMillis converts t to the stored representation. The zero time is stored
// as NULL.
func ToMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixMilli()
}

// FromMillis converts a stored timestamp back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
