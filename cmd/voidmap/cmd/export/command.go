// Package export implements the command that writes the tracked
// population to an Excel workbook.
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
)

// NewCommand creates the export command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "export <file.xlsx>",
		GroupID: "management",
		Short:   "Export the tracked population to an Excel workbook",
		Long: `Export writes every tracked element, soft-deleted ones included, to an
xlsx workbook. Fixed columns carry identity, provenance, status, and
approvals; one extra column is added per attribute key present in the
population.`,
		Example: `  voidmap export voids.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			if err := tracker.Export(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "population exported to %s\n", args[0])
			return nil
		},
	}
}
