package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/contactdb/internal/batch"
	"github.com/roach88/contactdb/internal/contact"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Mask []string
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save contacts from a YAML or CUE batch file",
		Long: `Save the contacts of a batch file. Contacts without an id are created;
contacts with an id replace the stored contact.

With --mask only the named detail kinds are rewritten; every other
detail kind keeps its stored rows.

Examples:
  contactdb save people.yaml
  contactdb save presence.cue --mask Presence`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			contacts, err := doc.ContactList()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid batch file", err)
			}
			mask := make([]contact.Kind, len(opts.Mask))
			for i, k := range opts.Mask {
				mask[i] = contact.Kind(k)
			}
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app) (WriteReport, error) {
				errs, err := a.writer.SaveContacts(ctx, contacts, mask)
				r, err := reportOf("save", errs, err)
				if err != nil {
					return WriteReport{}, err
				}
				for _, c := range contacts {
					r.Handles = append(r.Handles, c.ID)
				}
				return r, nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.Mask, "mask", nil, "detail kinds to write (e.g. Presence,Nickname)")

	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <handle>...",
		Short: "Remove contacts by handle",
		Long: `Remove contacts and every relationship that names them.
The self contact cannot be removed.

Example:
  contactdb remove 2 3`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]contact.Handle, len(args))
			for i, arg := range args {
				h, err := parseHandle(arg)
				if err != nil {
					return err
				}
				ids[i] = h
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) (WriteReport, error) {
				errs, err := a.writer.RemoveContacts(ctx, ids)
				return reportOf("remove", errs, err)
			})
		},
	}
}

// NewRelateCommand creates the relate command.
func NewRelateCommand(rootOpts *RootOptions) *cobra.Command {
	return newRelationshipCommand(rootOpts, "relate", "Save relationships from a batch file",
		func(ctx context.Context, a *app, rels []contact.Relationship) (contact.ErrorMap, error) {
			return a.writer.SaveRelationships(ctx, rels)
		})
}

// NewUnrelateCommand creates the unrelate command.
func NewUnrelateCommand(rootOpts *RootOptions) *cobra.Command {
	return newRelationshipCommand(rootOpts, "unrelate", "Remove relationships listed in a batch file",
		func(ctx context.Context, a *app, rels []contact.Relationship) (contact.ErrorMap, error) {
			return a.writer.RemoveRelationships(ctx, rels)
		})
}

type relationshipOp func(ctx context.Context, a *app, rels []contact.Relationship) (contact.ErrorMap, error)

func newRelationshipCommand(rootOpts *RootOptions, name, short string, op relationshipOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <file>",
		Short: short,
		Long: short + `.

The file lists relationships by handle:

  relationships:
    - first: 2
      type: Spouse
      second: 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			rels := doc.RelationshipList()
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) (WriteReport, error) {
				errs, err := op(ctx, a, rels)
				return reportOf(name, errs, err)
			})
		},
	}
}

// NewSelfCommand creates the self command.
func NewSelfCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "self <handle>",
		Short: "Bind the self contact (0 clears it)",
		Example: `  contactdb self 2
  contactdb self 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) (WriteReport, error) {
				err := a.writer.SetIdentity(ctx, contact.SelfContact, h)
				if code := contact.CodeOf(err); code != contact.Unspecified {
					return WriteReport{Op: "self", Code: code.String()}, nil
				}
				return WriteReport{}, err
			})
		},
	}
}

// withApp opens the write path, runs fn and reports its outcome. A fatal
// writer error exits with ExitCommandError.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) (WriteReport, error)) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	a, err := openApp(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			a.logger.Error("error closing contactdb", "error", err)
		}
	}()

	r, err := fn(ctx, a)
	if err != nil {
		code := contact.CodeOf(err).String()
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write failed", err)
	}
	return emitWrite(f, r)
}

// reportOf builds the report of a batch call. Per-item rejections come
// back from the writer as an error carrying their aggregate code; only an
// Unspecified error is fatal.
func reportOf(op string, errs contact.ErrorMap, err error) (WriteReport, error) {
	if contact.CodeOf(err) == contact.Unspecified {
		return WriteReport{}, err
	}
	return newWriteReport(op, errs), nil
}

func loadDocument(path string) (*batch.Document, error) {
	doc, err := batch.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load batch file", err)
	}
	return doc, nil
}

func parseHandle(arg string) (contact.Handle, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid handle %q", arg))
	}
	return contact.Handle(n), nil
}
