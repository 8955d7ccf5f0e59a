// Package contact defines the contact aggregate persisted by contactdb.
//
// A Contact is a core identity (display label, name parts, timestamps,
// gender, favorite flag) plus an open multiset of typed Detail records.
// Relationships between contacts are modelled separately as typed,
// directed edges.
//
// # Identifiers
//
// Contacts are addressed externally by a Handle. The zero Handle means
// "not yet created". Storage uses a zero-based StorageKey; the two are
// related by an offset of one so that the natural row key of the storage
// layer never collides with the unset sentinel:
//
//	ToStorageKey(h) == StorageKey(h - 1)
//	ToHandle(k)     == Handle(k + 1)
//
// # Details
//
// Detail is a closed set of concrete record types (Address, PhoneNumber,
// Presence, ...). Every detail embeds Common, which carries the optional
// detail URI, linked detail URIs and context tags.
//
// # Errors
//
// Batch operations report a per-index ErrorMap together with an aggregate
// *Error whose Code is the worst code observed (see Worst).
package contact
