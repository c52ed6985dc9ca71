package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// SaveResult is the JSON payload of the save command.
type SaveResult struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <event.yaml>",
		Short: "Insert or update an event from a YAML document",
		Long: `Save an event described by a YAML document ("-" reads stdin).

The event is inserted when no event with its id exists, updated when the
stored event differs, and left untouched otherwise. The outcome is printed
as one of: inserted, updated, unchanged.

Exit codes:
  0 - Event saved (or already up to date)
  1 - Save failed
  2 - Command error (unreadable document, database not reachable, etc.)

Examples:
  datastore save event.yaml --db ./events.db
  cat event.yaml | datastore save - --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSave(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd)

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeBadDocument, "failed to read event document", err)
		}
		defer file.Close()
		in = file
	}

	doc, err := ReadEventDocument(in)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeBadDocument, "failed to read event document", err)
	}
	event, err := doc.Event()
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeBadDocument, "invalid event document", err)
	}

	svc, st, err := openService(ctx, opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter.VerboseLog("Saving event %s", event.ID)
	outcome, err := svc.Save(ctx, event)
	if err != nil {
		return failOperation(formatter, "save failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(SaveResult{ID: event.ID.String(), Outcome: outcome.String()})
	}
	fmt.Fprintln(formatter.Writer, outcome)
	return nil
}
