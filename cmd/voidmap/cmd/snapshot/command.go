// Package snapshot implements the command that writes a point-in-time
// copy of the store.
package snapshot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
)

// NewCommand creates the snapshot command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "snapshot <file.db>",
		GroupID: "management",
		Short:   "Write a point-in-time copy of the store",
		Long: `Snapshot writes a consistent copy of the database to the given path.
The target file must not already exist; snapshots are never
overwritten.`,
		Example: `  voidmap snapshot backups/voidmap-2025-03-08.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			if err := tracker.Snapshot(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", args[0])
			return nil
		},
	}
}
