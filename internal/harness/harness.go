package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/contactdb/internal/batch"
	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/store"
	"github.com/roach88/contactdb/internal/testutil"
	"github.com/roach88/contactdb/internal/writer"
)

// SourceID is the notifier source identifier of every run.
const SourceID = "harness"

// Harness holds the state of one scenario execution.
type Harness struct {
	store    *store.Store
	writer   *writer.Writer
	recorder *notify.Recorder
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*config)

type config struct {
	driver string
	logger *slog.Logger
}

// WithDriver runs the scenario on the given store driver.
func WithDriver(name string) Option {
	return func(c *config) { c.driver = name }
}

// WithLogger sets the logger passed to the writer. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a new database under a temporary directory that is
// removed afterwards. An error is returned only when the scenario cannot be
// executed at all, e.g. when its setup fails; failed expectations and
// assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		driver: store.DriverCGO,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dir, err := os.MkdirTemp("", "contactdb-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "contacts.db"), store.WithDriver(cfg.driver))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	rec := &notify.Recorder{}
	n := notify.New(rec, notify.WithSourceID(SourceID), notify.WithLogger(cfg.logger))
	defer n.Close()

	clock := testutil.NewDeterministicClock()
	w, err := writer.New(ctx, st, n, writer.WithClock(clock.Now), writer.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}
	defer w.Close()

	h := &Harness{
		store:    st,
		writer:   w,
		recorder: rec,
		logger:   cfg.logger,
	}

	if err := h.executeSetup(ctx, &scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSetup saves the setup document. Any per-item failure is an error.
func (h *Harness) executeSetup(ctx context.Context, doc *batch.Document) error {
	contacts, err := doc.ContactList()
	if err != nil {
		return err
	}
	if len(contacts) > 0 {
		if _, err := h.writer.SaveContacts(ctx, contacts, nil); err != nil {
			return fmt.Errorf("save contacts: %w", err)
		}
	}
	if rels := doc.RelationshipList(); len(rels) > 0 {
		if _, err := h.writer.SaveRelationships(ctx, rels); err != nil {
			return fmt.Errorf("save relationships: %w", err)
		}
	}
	h.recorder.Reset()
	h.logger.Debug("setup completed",
		"contacts", len(contacts),
		"relationships", len(doc.Relationships),
	)
	return nil
}

// executeSteps runs the steps in order and checks their expect clauses.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		h.recorder.Reset()

		trace := TraceEvent{Seq: i + 1, Op: step.Op}
		errs, err := h.execute(ctx, &step, &trace)
		if err != nil && contact.CodeOf(err) == contact.Unspecified {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		trace.Code = contact.CodeOf(err).String()
		if len(errs) > 0 {
			trace.Errors = make(map[int]string, len(errs))
			for idx, code := range errs {
				trace.Errors[idx] = code.String()
			}
		}
		trace.Events = h.recorder.Events()
		result.Trace = append(result.Trace, trace)

		checkExpect(i, &step, &trace, result)

		h.logger.Info("step completed",
			"step", i,
			"op", step.Op,
			"code", trace.Code,
			"events", len(trace.Events),
		)
	}
	return nil
}

// execute performs one writer call.
func (h *Harness) execute(ctx context.Context, step *Step, trace *TraceEvent) (contact.ErrorMap, error) {
	switch step.Op {
	case OpSave:
		contacts, err := (&batch.Document{Contacts: step.Contacts}).ContactList()
		if err != nil {
			return nil, contact.NewError(contact.Unspecified, "load step", err)
		}
		mask := make([]contact.Kind, len(step.Mask))
		for i, k := range step.Mask {
			mask[i] = contact.Kind(k)
		}
		errs, err := h.writer.SaveContacts(ctx, contacts, mask)
		for _, c := range contacts {
			trace.IDs = append(trace.IDs, uint32(c.ID))
		}
		return errs, err
	case OpRemove:
		ids := make([]contact.Handle, len(step.IDs))
		for i, id := range step.IDs {
			ids[i] = contact.Handle(id)
		}
		return h.writer.RemoveContacts(ctx, ids)
	case OpRelate:
		doc := batch.Document{Relationships: step.Relationships}
		return h.writer.SaveRelationships(ctx, doc.RelationshipList())
	case OpUnrelate:
		doc := batch.Document{Relationships: step.Relationships}
		return h.writer.RemoveRelationships(ctx, doc.RelationshipList())
	case OpSelf:
		return nil, h.writer.SetIdentity(ctx, contact.SelfContact, contact.Handle(step.ID))
	default:
		return nil, contact.NewError(contact.Unspecified, "run step", fmt.Errorf("unknown op %q", step.Op))
	}
}

// checkExpect compares a step outcome with its expect clause. A step
// without one must succeed.
func checkExpect(index int, step *Step, trace *TraceEvent, result *Result) {
	want := ExpectClause{Code: contact.NoError.String()}
	if step.Expect != nil {
		want = *step.Expect
	}
	if trace.Code != want.Code {
		result.AddError(fmt.Sprintf("step %d (%s): expected code %s, got %s (errors %v)",
			index, step.Op, want.Code, trace.Code, trace.Errors))
	}
	if want.Errors == nil {
		return
	}

	indexes := make([]int, 0, len(want.Errors)+len(trace.Errors))
	for i := range want.Errors {
		indexes = append(indexes, i)
	}
	for i := range trace.Errors {
		if _, ok := want.Errors[i]; !ok {
			indexes = append(indexes, i)
		}
	}
	slices.Sort(indexes)
	for _, i := range indexes {
		if want.Errors[i] != trace.Errors[i] {
			result.AddError(fmt.Sprintf("step %d (%s): item %d: expected %q, got %q",
				index, step.Op, i, want.Errors[i], trace.Errors[i]))
		}
	}
}
