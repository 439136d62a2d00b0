// Package inspect implements the command that summarizes an IFC file
// without touching the tracked population.
package inspect

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
	"github.com/buildstation/voidmap/internal/cmd/output"
	"github.com/buildstation/voidmap/internal/ifc"
	"github.com/buildstation/voidmap/pkg/elements"
)

// Flags holds the inspect command's flags.
type Flags struct {
	Elements bool
}

// NewCommand creates the inspect command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "inspect <file.ifc>",
		GroupID: "core",
		Short:   "Summarize an IFC file without ingesting it",
		Long: `Inspect decodes an IFC file and prints its header metadata and how
many provision-for-void elements of each type it carries. With
--elements the extracted elements are listed instead.`,
		Example: `  voidmap inspect hvac_r2.ifc
  voidmap inspect hvac_r2.ifc --elements -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ifc.DecodeFile(args[0])
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())

			if flags.Elements {
				return output.FormatElements(cmd.OutOrStdout(), ifc.Extract(file), format)
			}

			info := file.Info()
			switch format {
			case output.FormatTable, output.FormatWide:
				return output.NewFormatter(output.FormatTable).Format(cmd.OutOrStdout(), infoTableData(info))
			default:
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), info)
			}
		},
	}

	cmd.Flags().BoolVar(&flags.Elements, "elements", false, "list the extracted elements instead of the summary")

	return cmd
}

func infoTableData(info *ifc.Info) output.Data {
	rows := [][]string{
		{"Schema", info.Schema},
		{"Name", info.Name},
		{"Timestamp", info.Timestamp.Format("2006-01-02 15:04:05")},
		{"Statements", strconv.Itoa(info.Statements)},
	}
	for _, typ := range elements.Types() {
		rows = append(rows, []string{typ.Entity(), strconv.Itoa(info.Tracked[typ])})
	}
	return output.Data{Headers: []string{"Field", "Value"}, Rows: rows}
}
