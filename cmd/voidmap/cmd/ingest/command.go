// Package ingest implements the command that reconciles an IFC file
// revision into the tracked population.
package ingest

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
	"github.com/buildstation/voidmap/internal/report"
	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/errors"
)

// Flags holds the ingest command's flags.
type Flags struct {
	Lineage string
	Report  string
}

// NewCommand creates the ingest command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "ingest <file.ifc>",
		GroupID: "core",
		Short:   "Reconcile an IFC file revision into the tracker",
		Args:    cobra.ExactArgs(1),
		Long: `Ingest decodes an IFC file, extracts its provision-for-void elements,
and reconciles them against the tracked population as one revision of
the given lineage.

Elements new to the lineage enter tracking with pending approvals.
Elements already tracked are refreshed; their approval decisions are
never touched by an upload. Elements missing from their lineage are
soft-deleted and can be resurrected by a later revision.`,
		Example: `  voidmap ingest hvac_r2.ifc --lineage hvac
  voidmap ingest hvac_r2.ifc --lineage hvac --report changes.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := app.Logger()

			lineage := flags.Lineage
			if lineage == "" {
				lineage = app.DefaultLineage()
			}
			if lineage == "" {
				return errors.NewValidationError("lineage", "", "--lineage is required")
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			result, err := tracker.Ingest(ctx, args[0], lineage)
			if err != nil {
				return err
			}

			logger.Info().
				Str("batch_id", result.BatchID.String()).
				Msg("revision ingested")
			fmt.Fprintln(cmd.OutOrStdout(), result.String())

			if flags.Report != "" {
				f, err := os.OpenFile(flags.Report, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
				if err != nil {
					return errors.WrapIO("create", flags.Report, err)
				}
				defer f.Close()
				if err := report.WriteChangeReport(f, result); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "change report written to %s\n", flags.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Lineage, "lineage", "l", "", "revision lineage this file belongs to (required)")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write a markdown change report to this path")

	return cmd
}
