// Package tables maps contact detail kinds onto their relational tables.
//
// Each detail kind has exactly one Table describing the target table name,
// the ordered column list and how bind values are extracted from (and rows
// decoded back into) a detail. The mapping is pure data: no Table holds a
// database handle.
//
// Set-valued fields (sub-types, capabilities, departments, linked detail
// URIs, contexts) are stored as JSON array text and decode back to the same
// ordered set.
package tables
