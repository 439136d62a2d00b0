package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildstation/voidmap/cmd/voidmap/cmd/approve"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/export"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/inspect"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/ingest"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/list"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/purge"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/snapshot"
	"github.com/buildstation/voidmap/cmd/voidmap/cmd/writeback"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(ingest.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(approve.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(export.NewCommand(a))
	rootCmd.AddCommand(writeback.NewCommand(a))
	rootCmd.AddCommand(purge.NewCommand(a))
	rootCmd.AddCommand(snapshot.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "voidmap %s (commit %s, built %s by %s)\n",
				a.version, a.commit, a.date, a.builtBy)
		},
	}
}
