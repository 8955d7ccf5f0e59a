// Package relationship validates batches of relationship edges against a
// snapshot of stored state and plans the rows to insert or delete.
//
// Planning is pure: callers load a Snapshot inside their transaction, run
// PlanSave or PlanRemove, and execute the resulting statements in the same
// transaction. Duplicate detection is O(1) per edge through an index keyed
// by the first endpoint.
package relationship
