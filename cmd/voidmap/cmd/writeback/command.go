// Package writeback implements the command that annotates an IFC file
// with tracked status and approvals.
package writeback

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
	"github.com/buildstation/voidmap/internal/ifc"
)

// Flags holds the writeback command's flags.
type Flags struct {
	Pset string
}

// NewCommand creates the writeback command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "writeback <src.ifc> <dst.ifc>",
		GroupID: "management",
		Short:   "Annotate an IFC file with tracked status and approvals",
		Long: `Writeback attaches a property set carrying lifecycle status and both
approval decisions to every tracked element present in the source
file, and writes the annotated copy to the destination. The source is
never modified; tracked elements absent from the file are skipped. An
element already carrying a property set with the configured name fails
the run before anything is written.`,
		Example: `  voidmap writeback hvac_r2.ifc hvac_r2_annotated.ifc
  voidmap writeback hvac_r2.ifc out.ifc --pset Pset_VoidReview`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := app.Logger()

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			pset := flags.Pset
			if pset == "" {
				pset = app.PsetName()
			}

			result, err := tracker.Writeback(ctx, args[0], args[1], ifc.WritebackConfig{
				PsetName: pset,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d element(s) annotated, written to %s\n", result.Annotated, args[1])
			if len(result.Missing) > 0 {
				logger.Warn().
					Int("count", len(result.Missing)).
					Msg("tracked elements absent from file were skipped")
				fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", strings.Join(result.Missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Pset, "pset", "", "property set name to write (default Pset_VoidTracking)")

	return cmd
}
