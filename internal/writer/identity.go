package writer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/store"
)

// SetIdentity binds an identity slot to a contact. A zero handle clears
// the slot. Binding a contact that does not exist fails with DoesNotExist.
// A change of the self contact is published as selfContactIdChanged.
func (w *Writer) SetIdentity(ctx context.Context, identity contact.Identity, h contact.Handle) error {
	const op = "set identity"
	ctx, span := w.startSpan(ctx, "SetIdentity")
	span.SetAttributes(attribute.Int("identity", int(identity)), attribute.Int64("contact.id", int64(h)))

	w.mu.Lock()
	defer w.mu.Unlock()

	var old contact.Handle
	var missing bool
	err := w.inTx(ctx, op, func(cl *call) error {
		var err error
		if old, err = store.LoadIdentity(cl.ctx, cl.tx, identity); err != nil {
			return err
		}
		if h == 0 {
			if _, err := cl.exec(cl.stmts.clearIdentity, int(identity)); err != nil {
				return fmt.Errorf("clear identity: %w", err)
			}
			return nil
		}
		exists, err := store.ContactExists(cl.ctx, cl.tx, h.Key())
		if err != nil {
			return err
		}
		if !exists {
			missing = true
			return nil
		}
		if _, err := cl.exec(cl.stmts.setIdentity, int(identity), int64(h.Key())); err != nil {
			return fmt.Errorf("set identity: %w", err)
		}
		return nil
	})
	if err == nil && missing {
		err = contact.NewError(contact.DoesNotExist, op, fmt.Errorf("contact %d", h))
	}
	if err != nil {
		w.logger.Warn("set identity failed", "identity", identity, "id", h, "error", err)
		endSpan(span, err)
		return err
	}

	if identity == contact.SelfContact {
		w.notifier.SelfContactIDChanged(ctx, old, h)
	}
	w.logger.Info("identity set", "identity", identity, "old", old, "new", h)
	endSpan(span, nil)
	return nil
}
