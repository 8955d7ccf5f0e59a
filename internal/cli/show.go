package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/contactdb/internal/batch"
	"github.com/roach88/contactdb/internal/contact"
)

// ContactView is a stored contact with its relationships, in the batch
// document layout so it can be edited and saved back.
type ContactView batch.Document

func (v ContactView) String() string {
	data, err := yaml.Marshal(batch.Document(v))
	if err != nil {
		return fmt.Sprintf("marshal contact: %v", err)
	}
	return strings.TrimRight(string(data), "\n")
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <handle>",
		Short: "Print a stored contact",
		Long: `Print a contact as stored, including derived fields and the
relationships that name it. Text output is a batch document that
"contactdb save" accepts.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			c, err := st.ReadContact(ctx, h)
			if errors.Is(err, sql.ErrNoRows) {
				msg := fmt.Sprintf("contact %d does not exist", h)
				_ = f.Error(contact.DoesNotExist.String(), msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read contact", err)
			}
			rels, err := st.Relationships(ctx, h)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read relationships", err)
			}

			view := ContactView{Contacts: []batch.ContactDoc{batch.FromContact(c)}}
			for _, r := range rels {
				view.Relationships = append(view.Relationships, batch.FromRelationship(r))
			}
			return f.Success(view)
		},
	}
}
