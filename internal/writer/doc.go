// Package writer is the contact write engine.
//
// A Writer applies batches of contacts and relationships to a store inside
// one transaction per call and publishes change events once the
// transaction has committed.
//
// Every mutating call follows the same shape:
//
//  1. take the access guard
//  2. begin a transaction and snapshot the state the batch is validated
//     against
//  3. apply items in input order, recording per-item failures in an
//     ErrorMap without aborting siblings
//  4. commit
//  5. publish one event per non-empty set of affected contacts
//
// A storage failure at any step rolls the whole call back, returns an error
// with code Unspecified and publishes nothing. Changes to caller-owned
// aggregates (new IDs, timestamps, derived presence) are applied only after
// a successful commit.
//
// The aggregate error of a batch is the highest precedence code among its
// items:
//
//	Unspecified > InvalidRelationship > InvalidDetail > DoesNotExist > BadArgument
package writer
