// Package app provides the application context and dependency
// management for the voidmap CLI. It centralizes configuration,
// logging, and the tracker instance behind one struct that commands
// receive through the appcontext interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/buildstation/voidmap"
	"github.com/buildstation/voidmap/pkg/errors"
)

// App represents the voidmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Tracker instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	tracker voidmap.Voidmap
}

// Option customizes an App during construction.
type Option func(*App) error

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapIO("load", "config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// DefaultLineage returns the configured lineage fallback.
func (a *App) DefaultLineage() string {
	return a.config.Lineage
}

// PsetName returns the configured writeback property set name.
func (a *App) PsetName() string {
	return a.config.PsetName
}

// Tracker returns the tracker instance, creating it lazily from the
// configured database path.
func (a *App) Tracker() (voidmap.Voidmap, error) {
	a.mu.RLock()
	if a.tracker != nil {
		defer a.mu.RUnlock()
		return a.tracker, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tracker != nil {
		return a.tracker, nil
	}

	vm, err := voidmap.New(voidmap.WithStorePath(a.config.DatabasePath))
	if err != nil {
		return nil, err
	}
	a.tracker = vm
	return vm, nil
}

// TrackerWithOptions creates a new tracker instance with custom
// options. The caller owns it and is responsible for closing it.
func (a *App) TrackerWithOptions(opts ...voidmap.Option) (voidmap.Voidmap, error) {
	return voidmap.New(opts...)
}

// Shutdown releases the lazily created tracker, if any.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tracker == nil {
		return nil
	}
	err := a.tracker.Close()
	a.tracker = nil
	return err
}
