package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/buildstation/voidmap/pkg/differ"
	"github.com/buildstation/voidmap/pkg/elements"
)

// Result reports the outcome of one reconciliation run.
type Result struct {
	// BatchID identifies this run in logs and reports.
	BatchID uuid.UUID `json:"batch_id" yaml:"batch_id"`

	// Lineage and SourceFile echo the reconciled batch.
	Lineage    string `json:"lineage"     yaml:"lineage"`
	SourceFile string `json:"source_file" yaml:"source_file"`

	// Set is the full post-reconcile population, including elements
	// from other lineages that the run did not touch.
	Set *elements.Set `json:"-" yaml:"-"`

	// Changeset classifies the batch against the persisted state.
	Changeset *differ.Changeset `json:"changeset" yaml:"changeset"`

	// Conflicts lists duplicate global IDs collapsed during resolution.
	Conflicts []Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	// Resurrected lists deleted elements restored to active by this run.
	Resurrected []string `json:"resurrected,omitempty" yaml:"resurrected,omitempty"`

	StartedAt utc.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration"   yaml:"duration"`
}

// HasChanges reports whether the run altered the persisted population.
func (r *Result) HasChanges() bool {
	return (r.Changeset != nil && r.Changeset.HasChanges()) || len(r.Resurrected) > 0
}

// String summarizes the run for log lines and CLI output.
func (r *Result) String() string {
	if r.Changeset == nil {
		return fmt.Sprintf("batch %s: no changes", r.BatchID)
	}
	s := fmt.Sprintf("batch %s: %s", r.BatchID, r.Changeset.String())
	if len(r.Resurrected) > 0 {
		s += fmt.Sprintf(", %d resurrected", len(r.Resurrected))
	}
	if len(r.Conflicts) > 0 {
		s += fmt.Sprintf(", %d duplicate IDs", len(r.Conflicts))
	}
	return s
}
