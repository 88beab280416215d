package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/storescope/storescope/pkg/domstorage"
)

// kvOptions holds shared flags for the kv subcommands.
type kvOptions struct {
	Session bool
}

func (o *kvOptions) storageID(origin string) domstorage.StorageID {
	return domstorage.StorageID{Origin: origin, IsLocalStorage: !o.Session}
}

// NewKVCommand creates the kv command and its subcommands.
func NewKVCommand() *cobra.Command {
	opts := &kvOptions{}

	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Inspect and edit typed key/value entries",
		Long: `Inspect and edit the host's typed key/value preference entries.

Values travel as text but keep their stored type: a write converts the
text into the type of the key's existing value. A key that does not
exist cannot be created because there is no value to infer a type from.`,
	}

	cmd.PersistentFlags().BoolVar(&opts.Session, "session", false,
		"Target the session scope instead of local storage (operations are no-ops)")

	cmd.AddCommand(newKVListCommand(opts))
	cmd.AddCommand(newKVGetCommand(opts))
	cmd.AddCommand(newKVSetCommand(opts))
	cmd.AddCommand(newKVRemoveCommand(opts))

	return cmd
}

func newKVListCommand(opts *kvOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <origin>",
		Short: "List all entries in a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext()

			entries, err := cmdCtx.Storage.Entries(opts.storageID(args[0]))
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no entries)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Value"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.Key, e.Value})
			}
			t.Render()
			return nil
		},
	}
}

func newKVGetCommand(opts *kvOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <origin> <key>",
		Short: "Print one entry's text value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext()

			entries, err := cmdCtx.Storage.Entries(opts.storageID(args[0]))
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Key == args[1] {
					fmt.Fprintln(cmd.OutOrStdout(), e.Value)
					return nil
				}
			}
			return fmt.Errorf("no entry %q in %s", args[1], args[0])
		},
	}
}

func newKVSetCommand(opts *kvOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <origin> <key> <value>",
		Short: "Set an existing entry from its text representation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext()

			if err := cmdCtx.Storage.SetEntry(opts.storageID(args[0]), args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[1], args[2])
			return nil
		},
	}
}

func newKVRemoveCommand(opts *kvOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <origin> <key>",
		Short: "Remove an entry (a no-op when absent)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext()

			if err := cmdCtx.Storage.RemoveEntry(opts.storageID(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[1])
			return nil
		},
	}
}
