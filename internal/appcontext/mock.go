package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/buildstation/voidmap"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function
// field; nil fields return zero values.
type Mock struct {
	TrackerFunc            func() (voidmap.Voidmap, error)
	TrackerWithOptionsFunc func(...voidmap.Option) (voidmap.Voidmap, error)
	LoggerFunc             func() *zerolog.Logger
	OutputFormatFunc       func() string
	DefaultLineageFunc     func() string
	PsetNameFunc           func() string
	VersionFunc            func() string
	CommitFunc             func() string
	DateFunc               func() string
	BuiltByFunc            func() string
}

// Tracker returns a tracker using the mock function or nil.
func (m *Mock) Tracker() (voidmap.Voidmap, error) {
	if m.TrackerFunc != nil {
		return m.TrackerFunc()
	}
	return nil, nil
}

// TrackerWithOptions returns a tracker using the mock function or nil.
func (m *Mock) TrackerWithOptions(opts ...voidmap.Option) (voidmap.Voidmap, error) {
	if m.TrackerWithOptionsFunc != nil {
		return m.TrackerWithOptionsFunc(opts...)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns the mock output format or "".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return ""
}

// DefaultLineage returns the mock lineage or "".
func (m *Mock) DefaultLineage() string {
	if m.DefaultLineageFunc != nil {
		return m.DefaultLineageFunc()
	}
	return ""
}

// PsetName returns the mock property set name or "".
func (m *Mock) PsetName() string {
	if m.PsetNameFunc != nil {
		return m.PsetNameFunc()
	}
	return ""
}

// Version returns the mock version or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the mock commit or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the mock date or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the mock builder or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
