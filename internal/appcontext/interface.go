// Package appcontext provides the shared application context interface
// used by all commands. It gives command packages one dependency
// surface instead of each declaring its own.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/buildstation/voidmap"
)

// Interface defines the application context that commands need.
// The App struct from cmd/voidmap/app implements it; commands accept
// the interface so tests can substitute a mock.
type Interface interface {
	// Tracker returns the default voidmap instance, creating it lazily
	// from the configured store path. Thread-safe; only one instance
	// is created.
	Tracker() (voidmap.Voidmap, error)

	// TrackerWithOptions creates a new voidmap instance with custom
	// options, for commands that need a non-default store.
	TrackerWithOptions(...voidmap.Option) (voidmap.Voidmap, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json,
	// yaml, wide).
	OutputFormat() string

	// DefaultLineage returns the configured lineage fallback, applied
	// when ingest is run without --lineage.
	DefaultLineage() string

	// PsetName returns the configured writeback property set name, or
	// empty for the built-in default.
	PsetName() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
