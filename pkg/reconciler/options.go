package reconciler

import (
	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/pkg/elements"
)

// Option configures a Reconciler.
type Option func(*options) error

// options holds reconciler configuration.
type options struct {
	now     func() utc.Time
	schemas *elements.Schemas
}

// newOptions applies options over defaults.
func newOptions(opts ...Option) (*options, error) {
	o := &options{
		now:     utc.Now,
		schemas: elements.DefaultSchemas(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithNow overrides the clock used for lifecycle timestamps. Tests use
// this for deterministic AddedAt/DeletedAt values.
func WithNow(now func() utc.Time) Option {
	return func(o *options) error {
		o.now = now
		return nil
	}
}

// WithSchemas overrides the attribute schema registry used for ingest
// validation.
func WithSchemas(schemas *elements.Schemas) Option {
	return func(o *options) error {
		o.schemas = schemas
		return nil
	}
}
