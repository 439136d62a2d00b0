// Package reconciler merges batches of extracted elements into the
// persisted population: first-seen elements are admitted, matched
// elements refreshed with workflow state preserved, and same-lineage
// elements missing from the batch retired to the deleted state.
package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/buildstation/voidmap/pkg/differ"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// Batch is one file revision's worth of extracted elements, tagged with
// the lineage it belongs to.
type Batch struct {
	// Lineage identifies the revision chain this file belongs to,
	// typically one per trade or discipline. Deletion is scoped to it:
	// only same-lineage elements absent from the batch are retired.
	Lineage string `json:"lineage" yaml:"lineage"`

	// SourceFile is the file the elements were extracted from.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// Timestamp orders revisions within a lineage. Usually the file's
	// authoring timestamp; zero means "now".
	Timestamp utc.Time `json:"timestamp" yaml:"timestamp"`

	// Elements are the extracted elements in file order.
	Elements []elements.Element `json:"elements" yaml:"elements"`
}

// Validate checks the batch's framing fields.
func (b *Batch) Validate() error {
	if b == nil {
		return errors.NewValidationError("batch", "", "batch is nil")
	}
	if b.Lineage == "" {
		return errors.NewValidationError("lineage", "", "lineage is required")
	}
	return nil
}

// Reconciler merges a batch into the persisted element population.
type Reconciler interface {
	// Reconcile classifies the batch against persisted and returns the
	// merged population. The persisted set is not modified; callers
	// commit the Result.Set themselves.
	Reconcile(ctx context.Context, persisted *elements.Set, batch *Batch) (*Result, error)
}

type reconciler struct {
	opts     *options
	resolver *Resolver
	differ   *differ.Differ
}

// New creates a Reconciler.
func New(opts ...Option) (Reconciler, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		opts:     o,
		resolver: NewResolver(o.schemas),
		differ:   differ.New(),
	}, nil
}

// Reconcile implements the Reconciler interface.
func (r *reconciler) Reconcile(ctx context.Context, persisted *elements.Set, batch *Batch) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	now := r.opts.now()
	start := time.Now()

	run := *batch
	if run.Timestamp.IsZero() {
		run.Timestamp = now
	}

	resolved, conflicts, err := r.resolver.Resolve(ctx, run.Elements)
	if err != nil {
		return nil, err
	}
	for _, c := range conflicts {
		logger.Warn().
			Str("global_id", c.GlobalID).
			Int("count", c.Count).
			Bool("divergent", c.Divergent).
			Msg("duplicate global ID in batch, last occurrence kept")
	}

	if persisted == nil {
		persisted = elements.NewSet()
	}
	if err := r.checkRevisionOrder(persisted, &run); err != nil {
		return nil, err
	}

	incoming := make(map[string]struct{}, len(resolved))
	for i := range resolved {
		incoming[resolved[i].GlobalID] = struct{}{}
	}

	// The diff baseline is the slice of persisted state this batch may
	// touch: live elements of the same lineage, plus any element the
	// batch names regardless of lineage or status. Deleted elements
	// absent from the batch stay out so they are not retired twice.
	baseline := make([]elements.Element, 0, persisted.Len())
	for _, e := range persisted.List() {
		_, named := incoming[e.GlobalID]
		if named || (e.Lineage == run.Lineage && e.Status.Live()) {
			baseline = append(baseline, e)
		}
	}

	changes := r.differ.Elements(baseline, resolved)

	next := persisted.Clone()
	var resurrected []string

	for i := range changes.Added {
		next.Set(admit(&changes.Added[i], &run, now))
	}
	for i := range changes.Updated {
		existing, _ := persisted.Get(changes.Updated[i].ID)
		if existing.Status == elements.StatusDeleted {
			resurrected = append(resurrected, existing.GlobalID)
		}
		next.Set(merge(existing, &changes.Updated[i].New, &run))
	}
	for i := range changes.Unchanged {
		existing, _ := persisted.Get(changes.Unchanged[i].GlobalID)
		if existing.Status == elements.StatusDeleted {
			resurrected = append(resurrected, existing.GlobalID)
		}
		next.Set(merge(existing, &changes.Unchanged[i], &run))
	}
	for i := range changes.Removed {
		next.Set(retire(&changes.Removed[i], now))
	}

	result := &Result{
		BatchID:     uuid.New(),
		Lineage:     run.Lineage,
		SourceFile:  run.SourceFile,
		Set:         next,
		Changeset:   changes,
		Conflicts:   conflicts,
		Resurrected: resurrected,
		StartedAt:   now,
		Duration:    time.Since(start),
	}

	logger.Info().
		Str("batch_id", result.BatchID.String()).
		Str("lineage", run.Lineage).
		Str("source_file", run.SourceFile).
		Int("added", len(changes.Added)).
		Int("updated", len(changes.Updated)).
		Int("removed", len(changes.Removed)).
		Int("unchanged", len(changes.Unchanged)).
		Int("resurrected", len(resurrected)).
		Msg("batch reconciled")

	return result, nil
}

// checkRevisionOrder rejects a batch older than the newest revision
// already persisted for its lineage. Re-uploading the current revision
// is allowed; reconciliation is idempotent for it.
func (r *reconciler) checkRevisionOrder(persisted *elements.Set, batch *Batch) error {
	var newest utc.Time
	for _, e := range persisted.List() {
		if e.Lineage == batch.Lineage && e.FileTimestamp.After(newest) {
			newest = e.FileTimestamp
		}
	}
	if !newest.IsZero() && batch.Timestamp.Before(newest) {
		return errors.NewValidationError("timestamp", batch.Timestamp.String(),
			"batch predates the newest persisted revision for lineage "+batch.Lineage)
	}
	return nil
}
