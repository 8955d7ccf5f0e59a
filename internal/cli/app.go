package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/contactdb/internal/notify"
	"github.com/roach88/contactdb/internal/store"
	"github.com/roach88/contactdb/internal/telemetry"
	"github.com/roach88/contactdb/internal/writer"
)

// app is the wired process: store, notifier, writer and tracing.
type app struct {
	logger   *slog.Logger
	store    *store.Store
	notifier *notify.Notifier
	writer   *writer.Writer
	shutdown func(context.Context) error
}

func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level, err := opts.Config.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured database without the write path.
func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.Config.Path, store.WithDriver(opts.Config.Driver))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// openApp wires a writer over the configured database. Events are logged
// and, when CONTACTDB_EVENT_LOG is set, appended to that file.
func openApp(ctx context.Context, opts *RootOptions, stderr io.Writer) (*app, error) {
	cfg := opts.Config
	a := &app{logger: newLogger(opts, stderr)}

	shutdown, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	a.shutdown = shutdown

	pubs := notify.Multi{notify.LogPublisher{Logger: a.logger}}
	if cfg.EventLog != "" {
		jl, err := notify.OpenJSONLines(cfg.EventLog)
		if err != nil {
			_ = a.Close(ctx)
			return nil, WrapExitError(ExitCommandError, "failed to open event log", err)
		}
		pubs = append(pubs, jl)
	}
	nopts := []notify.Option{notify.WithLogger(a.logger)}
	if cfg.NonPrivileged {
		nopts = append(nopts, notify.NonPrivileged())
	}
	a.notifier = notify.New(pubs, nopts...)

	a.logger.Debug("opening database", "path", cfg.Path, "driver", cfg.Driver)
	a.store, err = openStore(opts)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.writer, err = writer.New(ctx, a.store, a.notifier,
		writer.WithManagerURI(cfg.ManagerURI),
		writer.WithLogger(a.logger),
	)
	if err != nil {
		_ = a.Close(ctx)
		return nil, WrapExitError(ExitCommandError, "failed to prepare writer", err)
	}
	return a, nil
}

// Close tears down in reverse order of construction.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.writer != nil {
		errs = append(errs, a.writer.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.notifier != nil {
		errs = append(errs, a.notifier.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}
