package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStoresCommand creates the stores command.
func NewStoresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List the host's database stores",
		Long: `List the database stores in the data directory.

Shadow artifacts such as journal files are hidden when the store they
belong to is present; an orphaned artifact with no live sibling is shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext()

			stores, err := cmdCtx.Executor.Stores()
			if err != nil {
				return err
			}

			if len(stores) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no stores)")
				return nil
			}
			for _, store := range stores {
				fmt.Fprintln(cmd.OutOrStdout(), store)
			}
			return nil
		},
	}
}
