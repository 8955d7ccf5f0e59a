package writer

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/store"
)

const tracerName = "github.com/roach88/contactdb/internal/writer"

// Writer applies contact and relationship batches to a store.
//
// Thread-safety: all mutating methods serialize on an internal mutex held
// from the start of the transaction until events have been published.
type Writer struct {
	store      *store.Store
	notifier   *notify.Notifier
	managerURI string
	now        func() time.Time
	logger     *slog.Logger
	tracer     trace.Tracer

	mu    sync.Mutex
	stmts *statements

	// beforeCommit runs just before commit. Tests use it to inject
	// storage faults.
	beforeCommit func() error
}

// Option configures a Writer.
type Option func(*Writer)

// WithManagerURI sets the manager qualifier accepted on relationship
// endpoints. The default is contact.DefaultManagerURI.
func WithManagerURI(uri string) Option {
	return func(w *Writer) { w.managerURI = uri }
}

// WithClock sets the clock used for Created and Modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithTracerProvider sets the tracer provider used for operation spans.
// The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(w *Writer) { w.tracer = tp.Tracer(tracerName) }
}

// New creates a Writer and prepares its statements against s.
// Events are published to n, which may be shared with other writers.
func New(ctx context.Context, s *store.Store, n *notify.Notifier, opts ...Option) (*Writer, error) {
	w := &Writer{
		store:      s,
		notifier:   n,
		managerURI: contact.DefaultManagerURI,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.tracer == nil {
		w.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	stmts, err := prepare(ctx, s)
	if err != nil {
		return nil, err
	}
	w.stmts = stmts
	return w, nil
}

// Close releases the prepared statements. It does not close the store or
// the notifier.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stmts == nil {
		return nil
	}
	err := w.stmts.close()
	w.stmts = nil
	return err
}

// call is the state of one transaction.
type call struct {
	ctx   context.Context
	tx    *sql.Tx
	stmts *statements
}

func (c *call) exec(stmt *sql.Stmt, args ...any) (sql.Result, error) {
	return c.tx.StmtContext(c.ctx, stmt).ExecContext(c.ctx, args...)
}

func (c *call) execSQL(query string, args ...any) (sql.Result, error) {
	return c.tx.ExecContext(c.ctx, query, args...)
}

// errClosed is returned by calls on a closed Writer.
var errClosed = errors.New("writer closed")

// inTx runs fn inside a transaction and commits it. Any error from fn, or
// from beginning or committing, rolls back and is reported as Unspecified.
// The caller must hold w.mu.
func (w *Writer) inTx(ctx context.Context, op string, fn func(c *call) error) error {
	if w.stmts == nil {
		return contact.NewError(contact.Unspecified, op, errClosed)
	}
	tx, err := w.store.BeginTx(ctx)
	if err != nil {
		return contact.NewError(contact.Unspecified, op, err)
	}
	defer tx.Rollback()

	if err := fn(&call{ctx: ctx, tx: tx, stmts: w.stmts}); err != nil {
		return contact.NewError(contact.Unspecified, op, err)
	}
	if w.beforeCommit != nil {
		if err := w.beforeCommit(); err != nil {
			return contact.NewError(contact.Unspecified, op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return contact.NewError(contact.Unspecified, op, err)
	}
	return nil
}

// outcome converts the per-item errors of a batch to the returned error.
func outcome(op string, errs contact.ErrorMap) error {
	if worst := errs.Worst(); worst != contact.NoError {
		return contact.NewError(worst, op, nil)
	}
	return nil
}

// startSpan starts the span of one writer operation.
func (w *Writer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return w.tracer.Start(ctx, "writer."+name)
}

// endSpan records the outcome of an operation on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, contact.CodeOf(err).String())
	}
	span.End()
}

// groupsChanged reports whether two sorted group lists differ.
func groupsChanged(before, after []string) bool {
	return !slices.Equal(before, after)
}
