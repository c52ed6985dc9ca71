package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored event",
		Long: `Print the event with the given id as a YAML document (or JSON with
--format json). The output can be edited and fed back to "datastore save".

Exit codes:
  0 - Event printed
  1 - Event not found or could not be read
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored event and its slots",
		Long: `Delete the event with the given id.

Exit codes:
  0 - Event deleted
  1 - Event not found or delete failed
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the ids of stored events",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runGet(opts *RootOptions, arg string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd)

	id, err := uuid.Parse(arg)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("invalid event id %q", arg), err)
	}

	svc, st, err := openService(ctx, opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	event, found, err := svc.Get(ctx, id)
	if err != nil {
		return failOperation(formatter, "get failed", err)
	}
	if !found {
		return fail(formatter, ExitFailure, ErrCodeNotFound, fmt.Sprintf("event %s not found", id), nil)
	}

	doc := DocumentFor(event)
	if opts.Format == "json" {
		return formatter.Success(doc)
	}
	out, err := doc.YAML()
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeGeneric, "failed to render event", err)
	}
	_, err = formatter.Writer.Write(out)
	return err
}

func runDelete(opts *RootOptions, arg string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd)

	id, err := uuid.Parse(arg)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("invalid event id %q", arg), err)
	}

	svc, st, err := openService(ctx, opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := svc.Delete(ctx, id)
	if err != nil {
		return failOperation(formatter, "delete failed", err)
	}
	if !deleted {
		return fail(formatter, ExitFailure, ErrCodeNotFound, fmt.Sprintf("event %s not found", id), nil)
	}

	if opts.Format == "json" {
		return formatter.Success(DeleteResult{ID: id.String(), Deleted: true})
	}
	fmt.Fprintf(formatter.Writer, "deleted %s\n", id)
	return nil
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd)

	svc, st, err := openService(ctx, opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := svc.List(ctx)
	if err != nil {
		return failOperation(formatter, "list failed", err)
	}

	if opts.Format == "json" {
		result := ListResult{IDs: make([]string, len(ids)), Total: len(ids)}
		for i, id := range ids {
			result.IDs[i] = id.String()
		}
		return formatter.Success(result)
	}
	if len(ids) == 0 {
		fmt.Fprintln(formatter.Writer, "No events stored.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(formatter.Writer, id)
	}
	return nil
}
