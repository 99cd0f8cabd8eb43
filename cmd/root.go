package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"animalitos/config"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the animalitos command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "animalitos",
		Short:         "Animalitos lottery pot ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Init()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return loaded.SetupLogging()
		},
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newPotsCommand(),
		newTransferCommand(),
		newWithdrawCommand(),
		newReconcileCommand(),
		newSyncCommand(),
	)
	return root
}

// Execute runs the command tree with ctx as the base context
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// printJSON writes v as indented JSON to out
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
