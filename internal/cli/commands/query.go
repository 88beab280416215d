package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storescope/storescope/pkg/database"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <store> [SQL]",
		Short: "Execute SQL against a store",
		Long: `Execute free-form SQL against one of the host's database stores.

Updates and deletes report the affected row count, inserts report the id
of the inserted row, and everything else is run as a read returning rows.

When invoked without SQL on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  storescope query app.db "SELECT * FROM users"

  # Mutations report a labeled scalar
  storescope query app.db "DELETE FROM users WHERE id = 5"

  # Output as JSON
  storescope query app.db "SELECT * FROM users" --format json

  # Interactive mode
  storescope query app.db`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext()
	store := args[0]
	format := resolveFormat(opts.Format, cmdCtx.Cfg)

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 1:
		sqlQuery = args[1]
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, store, format)
	}

	if strings.TrimSpace(sqlQuery) == "" {
		return fmt.Errorf("no SQL to execute")
	}

	return executeAndRender(cmd, cmdCtx, store, sqlQuery, format)
}

func executeAndRender(cmd *cobra.Command, cmdCtx *CommandContext, store, sqlQuery, format string) error {
	result, err := database.Execute(cmd.Context(), cmdCtx.Executor, store, sqlQuery, database.Collect{})
	if err != nil {
		return err
	}
	return renderResult(cmd.OutOrStdout(), result, format)
}
