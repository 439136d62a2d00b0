package reconciler

import (
	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/pkg/elements"
)

// merge combines a persisted element with its incoming counterpart from
// a newer revision. Tracked content and provenance come from the
// incoming element; workflow state (approvals, AddedAt) survives from
// the persisted one. A persisted element in the deleted state is
// resurrected: status returns to active and DeletedAt is cleared.
func merge(existing, incoming *elements.Element, batch *Batch) *elements.Element {
	merged := incoming.Clone()

	merged.Status = elements.StatusActive
	merged.ApprovalArchitect = existing.ApprovalArchitect
	merged.ApprovalStructural = existing.ApprovalStructural
	merged.AddedAt = existing.AddedAt
	merged.DeletedAt = nil

	merged.Lineage = batch.Lineage
	merged.SourceFile = batch.SourceFile
	merged.FileTimestamp = batch.Timestamp

	return merged
}

// admit prepares a first-seen element for persistence: status new,
// approvals pending, lifecycle timestamps stamped from the batch.
func admit(incoming *elements.Element, batch *Batch, now utc.Time) *elements.Element {
	admitted := incoming.Clone()

	admitted.Status = elements.StatusNew
	admitted.ApprovalArchitect = elements.ApprovalPending
	admitted.ApprovalStructural = elements.ApprovalPending
	admitted.AddedAt = now
	admitted.DeletedAt = nil

	admitted.Lineage = batch.Lineage
	admitted.SourceFile = batch.SourceFile
	admitted.FileTimestamp = batch.Timestamp

	return admitted
}

// retire marks a persisted element as deleted without discarding it.
// Approvals and AddedAt are preserved so a later resurrection restores
// the full workflow state.
func retire(existing *elements.Element, now utc.Time) *elements.Element {
	retired := existing.Clone()
	retired.Status = elements.StatusDeleted
	deletedAt := now
	retired.DeletedAt = &deletedAt
	return retired
}
