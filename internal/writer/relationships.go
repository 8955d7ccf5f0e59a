package writer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/relationship"
	"github.com/roach88/contactdb/internal/store"
)

// SaveRelationships stores a batch of relationship edges.
//
// Edges with an invalid endpoint fail with InvalidRelationship while the
// valid edges of the batch still commit. Edges that already exist, or
// repeat an earlier edge of the batch, are skipped without error.
func (w *Writer) SaveRelationships(ctx context.Context, rels []contact.Relationship) (contact.ErrorMap, error) {
	const op = "save relationships"
	ctx, span := w.startSpan(ctx, "SaveRelationships")
	span.SetAttributes(attribute.Int("relationships.count", len(rels)))

	w.mu.Lock()
	defer w.mu.Unlock()

	var plan *relationship.Plan
	err := w.inTx(ctx, op, func(cl *call) error {
		snap, err := cl.snapshot(w.managerURI)
		if err != nil {
			return err
		}
		plan = relationship.PlanSave(snap, rels)
		for _, stmt := range relationship.InsertStatements(plan.Edges, 0) {
			if _, err := cl.execSQL(stmt.SQL, stmt.Args...); err != nil {
				return fmt.Errorf("insert relationships: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		w.logger.Error("save relationships failed", "relationships", len(rels), "error", err)
		endSpan(span, err)
		return nil, err
	}

	w.notifier.RelationshipsAdded(ctx, plan.Touched)
	w.logger.Info("relationships saved",
		"inserted", len(plan.Edges),
		"failed", len(plan.Errors),
	)
	err = outcome(op, plan.Errors)
	endSpan(span, err)
	return plan.Errors, err
}

// RemoveRelationships deletes a batch of relationship edges.
//
// An edge that is not stored fails with DoesNotExist; the other edges are
// still removed. An edge repeated within the batch is removed once.
func (w *Writer) RemoveRelationships(ctx context.Context, rels []contact.Relationship) (contact.ErrorMap, error) {
	const op = "remove relationships"
	ctx, span := w.startSpan(ctx, "RemoveRelationships")
	span.SetAttributes(attribute.Int("relationships.count", len(rels)))

	w.mu.Lock()
	defer w.mu.Unlock()

	var plan *relationship.Plan
	err := w.inTx(ctx, op, func(cl *call) error {
		snap, err := cl.snapshot(w.managerURI)
		if err != nil {
			return err
		}
		plan = relationship.PlanRemove(snap, rels)
		for _, e := range plan.Edges {
			if _, err := cl.exec(cl.stmts.deleteRelationship, int64(e.First), int64(e.Second), e.Type); err != nil {
				return fmt.Errorf("delete relationship: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		w.logger.Error("remove relationships failed", "relationships", len(rels), "error", err)
		endSpan(span, err)
		return nil, err
	}

	w.notifier.RelationshipsRemoved(ctx, plan.Touched)
	w.logger.Info("relationships removed",
		"removed", len(plan.Edges),
		"failed", len(plan.Errors),
	)
	err = outcome(op, plan.Errors)
	endSpan(span, err)
	return plan.Errors, err
}

// snapshot loads the contacts and edges a relationship batch is validated
// against.
func (cl *call) snapshot(managerURI string) (*relationship.Snapshot, error) {
	keys, err := store.LoadContactKeys(cl.ctx, cl.tx)
	if err != nil {
		return nil, err
	}
	edges, err := store.LoadRelationships(cl.ctx, cl.tx)
	if err != nil {
		return nil, err
	}
	return relationship.NewSnapshot(managerURI, keys, edges), nil
}
