package voidmap

import (
	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/internal/store"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

// Option is a function that configures a Voidmap instance
type Option func(*config) error

// config holds construction-time settings
type config struct {
	store     store.Store
	storePath string
	schemas   *elements.Schemas
	now       func() utc.Time
}

func defaultConfig() *config {
	return &config{}
}

// options applies the given options to the instance config
func (vm *voidmap) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(vm.config); err != nil {
			return err
		}
	}
	return nil
}

// reconcilerOptions translates the config into reconciler options
func (c *config) reconcilerOptions() []reconciler.Option {
	var opts []reconciler.Option
	if c.schemas != nil {
		opts = append(opts, reconciler.WithSchemas(c.schemas))
	}
	if c.now != nil {
		opts = append(opts, reconciler.WithNow(c.now))
	}
	return opts
}

// WithStore configures an explicit store backend. It takes precedence
// over WithStorePath.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithStorePath configures a sqlite store at the given path, created
// on first use.
func WithStorePath(path string) Option {
	return func(c *config) error {
		c.storePath = path
		return nil
	}
}

// WithSchemas configures the attribute schema registry used during
// ingest.
func WithSchemas(schemas *elements.Schemas) Option {
	return func(c *config) error {
		c.schemas = schemas
		return nil
	}
}

// WithNow overrides the clock used for lifecycle timestamps. Intended
// for tests.
func WithNow(now func() utc.Time) Option {
	return func(c *config) error {
		c.now = now
		return nil
	}
}
