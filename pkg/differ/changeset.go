// Package differ provides functionality for comparing element sets and
// detecting changes between file revisions.
package differ

import (
	"fmt"
	"strings"

	"github.com/buildstation/voidmap/pkg/elements"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     // Field path (e.g., "attributes.Tag")
	OldValue string     // Previous value (string representation)
	NewValue string     // New value (string representation)
	Type     ChangeType // Type of change
}

// Update represents an update to an existing element record.
type Update struct {
	ID       string           // GlobalID of the element being updated
	Existing elements.Element // Current record
	New      elements.Element // Incoming record
	Changes  []FieldChange    // Detailed list of field changes
}

// Changeset represents all changes between a persisted set and an
// incoming batch. Removed holds records absent from the incoming batch
// for the batch's lineage; Unchanged holds records that were present but
// content-identical.
type Changeset struct {
	Added     []elements.Element
	Updated   []Update
	Removed   []elements.Element
	Unchanged []elements.Element
	Summary   Summary
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added        int
	Updated      int
	Removed      int
	Unchanged    int
	TotalChanges int
}

// Finalize recomputes the summary from the change lists.
func (c *Changeset) Finalize() {
	c.Summary = Summary{
		Added:     len(c.Added),
		Updated:   len(c.Updated),
		Removed:   len(c.Removed),
		Unchanged: len(c.Unchanged),
	}
	c.Summary.TotalChanges = c.Summary.Added + c.Summary.Updated + c.Summary.Removed
}

// HasChanges returns true if the changeset contains any changes.
// Unchanged records do not count as changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// AddedIDs returns the GlobalIDs of added records.
func (c *Changeset) AddedIDs() []string { return ids(c.Added) }

// RemovedIDs returns the GlobalIDs of removed records.
func (c *Changeset) RemovedIDs() []string { return ids(c.Removed) }

// UnchangedIDs returns the GlobalIDs of unchanged records.
func (c *Changeset) UnchangedIDs() []string { return ids(c.Unchanged) }

// UpdatedIDs returns the GlobalIDs of updated records.
func (c *Changeset) UpdatedIDs() []string {
	out := make([]string, 0, len(c.Updated))
	for _, u := range c.Updated {
		out = append(out, u.ID)
	}
	return out
}

func ids(elems []elements.Element) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		out = append(out, e.GlobalID)
	}
	return out
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("No changes detected (%d unchanged)", c.Summary.Unchanged)
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	parts = append(parts, fmt.Sprintf("%d unchanged", c.Summary.Unchanged))

	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// ApplyStrategy represents how to apply changes.
type ApplyStrategy string

const (
	// ApplyAll applies all changes including removals.
	ApplyAll ApplyStrategy = "all"

	// ApplyAdditive only applies additions and updates, never removals.
	ApplyAdditive ApplyStrategy = "additive"

	// ApplyUpdatesOnly only applies updates to existing records.
	ApplyUpdatesOnly ApplyStrategy = "updates-only"
)

// Filter returns a changeset restricted by the apply strategy.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	filtered := &Changeset{Unchanged: c.Unchanged}

	switch strategy {
	case ApplyAll:
		return c
	case ApplyAdditive:
		filtered.Added = c.Added
		filtered.Updated = c.Updated
	case ApplyUpdatesOnly:
		filtered.Updated = c.Updated
	}

	filtered.Finalize()
	return filtered
}
