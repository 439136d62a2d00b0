// Package constants provides shared constants used throughout the voidmap codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ReconcileTimeout is the timeout for a single reconciliation run,
	// including parsing and the storage commit
	ReconcileTimeout = 5 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Writeback defaults define the property set and parameter names used when
// writing approval state back into an IFC file. All of them can be overridden
// by the caller.
const (
	// DefaultPsetName is the property set name used for writeback
	DefaultPsetName = "Pset_VoidTracking"

	// DefaultStatusParam is the parameter name carrying the lifecycle status
	DefaultStatusParam = "Status"

	// DefaultArchitectParam is the parameter name carrying the architect approval
	DefaultArchitectParam = "ApprovalArchitect"

	// DefaultStructuralParam is the parameter name carrying the structural approval
	DefaultStructuralParam = "ApprovalStructural"
)

// Limit constants define various limits and capacities
const (
	// MaxScanTokenSize is the maximum length in bytes of a single STEP
	// statement the decoder will buffer before giving up on a file
	MaxScanTokenSize = 4 * 1024 * 1024

	// MaxAttributeLength is the maximum allowed length for a stored attribute value
	MaxAttributeLength = 4096

	// DefaultPageSize is the default number of items per page for paginated listings
	DefaultPageSize = 100
)
