// Package approve implements the commands that record approval
// decisions, one element at a time or in bulk from a workbook.
package approve

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
	"github.com/buildstation/voidmap/internal/report"
	"github.com/buildstation/voidmap/pkg/elements"
)

// Flags holds the approve command's flags, shared with the import
// subcommand.
type Flags struct {
	Role     string
	Decision string
}

func (f *Flags) parse() (elements.Role, elements.Approval, error) {
	role, err := elements.ParseRole(f.Role)
	if err != nil {
		return "", "", err
	}
	decision, err := elements.ParseApproval(f.Decision)
	if err != nil {
		return "", "", err
	}
	return role, decision, nil
}

// NewCommand creates the approve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "approve <global-id>...",
		GroupID: "core",
		Short:   "Record an approval decision for tracked elements",
		Long: `Approve records a role's decision for one or more elements by their
IFC GlobalId. Decisions survive later file revisions; only an explicit
approve call or a bulk import changes them.`,
		Example: `  voidmap approve 1kTvXnbbzCWw8lcMd1dR4o --role architect --decision approved
  voidmap approve 1kTvXnbbzCWw8lcMd1dR4o 0EvVH4yDf5egsLyQpSeGdr --role structural --decision rejected`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			role, decision, err := flags.parse()
			if err != nil {
				return err
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			updated, err := tracker.Approve(ctx, role, decision, args...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d element(s) updated\n", role, decision, updated)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.Role, "role", "r", "", "deciding role (architect, structural)")
	cmd.PersistentFlags().StringVarP(&flags.Decision, "decision", "d", "", "decision to record (approved, rejected)")

	cmd.AddCommand(newImportCommand(app, flags))
	cmd.AddCommand(newSummaryCommand(app))

	return cmd
}

func newSummaryCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Short:   "Print the approval standing of the live population",
		Example: `  voidmap approve summary`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			set, err := tracker.Elements(ctx)
			if err != nil {
				return err
			}

			return report.WriteApprovalSummary(cmd.OutOrStdout(), set)
		},
	}
}

func newImportCommand(app appcontext.Interface, flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Apply approval decisions in bulk from an Excel workbook",
		Long: `Import reads GlobalIds from the first column of the workbook's first
sheet and records the decision for each matching element. IDs that
match no tracked element are reported, never created.`,
		Example: `  voidmap approve import decisions.xlsx --role architect --decision approved`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := app.Logger()

			role, decision, err := flags.parse()
			if err != nil {
				return err
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			result, err := tracker.ImportApprovals(ctx, args[0], role, decision)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) read, %d element(s) updated\n", result.RowsRead, result.Updated)
			if len(result.Unmatched) > 0 {
				logger.Warn().
					Int("count", len(result.Unmatched)).
					Msg("workbook rows matched no tracked element")
				fmt.Fprintf(cmd.OutOrStdout(), "unmatched: %s\n", strings.Join(result.Unmatched, ", "))
			}
			return nil
		},
	}
}
