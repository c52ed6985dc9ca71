package cli

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/datastore/internal/codec"
)

// CodecResult is the JSON payload of the codec subcommands.
type CodecResult struct {
	Kind   string   `json:"kind"`
	Column any      `json:"column,omitempty"`
	Values []string `json:"values,omitempty"`
}

// NewCodecCommand creates the codec command and its encode and decode
// subcommands.
func NewCodecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codec",
		Short: "Convert values to and from their column format",
		Long: `Inspect the column formats used to store scalar values.

Kinds: ` + strings.Join(codec.Keys(), ", ") + `

Examples:
  datastore codec encode --kind duration 1h30m
  datastore codec encode --kind string-list "a,b" c
  datastore codec decode --kind zoned-date-time "2026-03-01T12:00+01:00[Europe/Paris]"`,
	}
	cmd.AddCommand(newCodecEncodeCommand(rootOpts))
	cmd.AddCommand(newCodecDecodeCommand(rootOpts))
	return cmd
}

func newCodecEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:           "encode --kind <kind> <value>...",
		Short:         "Encode native values into a column value",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodecEncode(rootOpts, kind, args, cmd)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "codec kind (required)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newCodecDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:           "decode --kind <kind> <column>",
		Short:         "Decode a column value into native values",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodecDecode(rootOpts, kind, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "codec kind (required)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func lookupKind(f *OutputFormatter, key string) (codec.TextKind, error) {
	kind, ok := codec.Lookup(key)
	if !ok {
		return codec.TextKind{}, fail(f, ExitCommandError, ErrCodeBadArgument,
			fmt.Sprintf("unknown kind %q (want one of %s)", key, strings.Join(codec.Keys(), ", ")), nil)
	}
	return kind, nil
}

func runCodecEncode(opts *RootOptions, key string, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	kind, err := lookupKind(formatter, key)
	if err != nil {
		return err
	}

	column, err := kind.Encode(args)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeBadArgument, "encode failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(CodecResult{Kind: kind.Key, Column: column})
	}
	fmt.Fprintln(formatter.Writer, renderColumn(column))
	return nil
}

func runCodecDecode(opts *RootOptions, key, column string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	kind, err := lookupKind(formatter, key)
	if err != nil {
		return err
	}

	values, err := kind.Decode(column)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeCodec, "decode failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(CodecResult{Kind: kind.Key, Values: values})
	}
	for _, v := range values {
		fmt.Fprintln(formatter.Writer, v)
	}
	return nil
}

// renderColumn prints a column value the way it would appear in a query
// result. Local dates are stored as midnight UTC timestamps.
func renderColumn(v driver.Value) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
