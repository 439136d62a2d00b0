// Package list implements the command that prints tracked elements.
package list

import (
	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
	"github.com/buildstation/voidmap/internal/cmd/output"
	"github.com/buildstation/voidmap/pkg/elements"
)

// Flags holds the list command's flags.
type Flags struct {
	Status  string
	Lineage string
	Type    string
	Deleted bool
	Wide    bool
}

// NewCommand creates the list command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "list",
		GroupID: "core",
		Short:   "List tracked provision-for-void elements",
		Long: `List prints the tracked elements. Soft-deleted elements are hidden
unless --deleted or an explicit --status filter is given.`,
		Example: `  voidmap list
  voidmap list --status new --lineage hvac
  voidmap list --type proxy --wide -o json`,
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

			if flags.Status != "" {
				status, err := elements.ParseStatus(flags.Status)
				if err != nil {
					return err
				}
				set = set.Filter(func(e *elements.Element) bool { return e.Status == status })
			} else if !flags.Deleted {
				set = set.Live()
			}
			if flags.Lineage != "" {
				set = set.Filter(func(e *elements.Element) bool { return e.Lineage == flags.Lineage })
			}
			if flags.Type != "" {
				typ, err := elements.ParseType(flags.Type)
				if err != nil {
					return err
				}
				set = set.Filter(func(e *elements.Element) bool { return e.Type == typ })
			}

			format := output.DetectFormat(app.OutputFormat())
			if flags.Wide && format == output.FormatTable {
				format = output.FormatWide
			}
			return output.FormatElements(cmd.OutOrStdout(), set.List(), format)
		},
	}

	cmd.Flags().StringVar(&flags.Status, "status", "", "filter by status (new, active, deleted)")
	cmd.Flags().StringVarP(&flags.Lineage, "lineage", "l", "", "filter by revision lineage")
	cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "filter by element type (virtual_element, proxy)")
	cmd.Flags().BoolVar(&flags.Deleted, "deleted", false, "include soft-deleted elements")
	cmd.Flags().BoolVarP(&flags.Wide, "wide", "w", false, "show provenance and attribute columns")

	return cmd
}
