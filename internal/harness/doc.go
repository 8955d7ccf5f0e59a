// Package harness runs write scenarios against a fresh contact store.
//
// A scenario is a YAML file describing a sequence of writer calls, the
// outcome expected from each, and assertions on the published events and
// the final database state.
//
// # Scenario Format
//
//	name: spouse_then_remove
//	description: "Removing a contact drops its relationships"
//	setup:
//	  contacts:
//	    - label: Ada
//	    - label: Bob
//	steps:
//	  - op: relate
//	    relationships:
//	      - {first: 2, type: HasSpouse, second: 3}
//	  - op: remove
//	    ids: [3]
//	    expect:
//	      code: NO_ERROR
//	assertions:
//	  - type: event_order
//	    events: [relationshipsAdded, contactsRemoved, relationshipsRemoved]
//	  - type: row_count
//	    table: Relationships
//	    count: 0
//
// Steps use the ops save, remove, relate, unrelate and self. Contacts and
// relationships are written in the batch document form (see package
// batch). An expect clause checks the aggregate code and, optionally, the
// per-index codes of the call.
//
// # Assertion Types
//
//   - event_count: an event name is published exactly count times
//   - event_order: event names first appear in the given order
//   - event_keys: some event with the name carries exactly keys
//   - final_state: exactly one row of a table matches where and has expect
//   - row_count: a table holds count rows matching where
//
// # Deterministic Testing
//
// Every run uses a new database, a stepping clock starting at
// testutil.Epoch and the fixed notifier source "contactdb.source_harness".
// Handles are therefore stable across runs: the first contact created in a
// scenario, setup included, is handle 2.
package harness
