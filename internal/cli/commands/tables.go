package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <store>",
		Short: "List the tables in a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext()

			tables, err := cmdCtx.Executor.Tables(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(tables) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no tables)")
				return nil
			}
			for _, table := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), table)
			}
			return nil
		},
	}
}
