// Package purge implements the command that permanently removes
// soft-deleted elements.
package purge

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/internal/appcontext"
)

// Flags holds the purge command's flags.
type Flags struct {
	Yes bool
}

// NewCommand creates the purge command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "purge",
		GroupID: "management",
		Short:   "Permanently remove soft-deleted elements",
		Long: `Purge erases every soft-deleted element from the store. Purged
elements cannot be resurrected; re-uploading a file that contains them
tracks them as brand-new with pending approvals.`,
		Example: `  voidmap purge --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := app.Logger()

			if !flags.Yes {
				fmt.Fprint(cmd.OutOrStdout(), "permanently erase all soft-deleted elements? [y/N] ")
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			purged, err := tracker.PurgeDeleted(ctx)
			if err != nil {
				return err
			}

			logger.Info().Int("purged", purged).Msg("deleted elements purged")
			fmt.Fprintf(cmd.OutOrStdout(), "%d element(s) purged\n", purged)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
