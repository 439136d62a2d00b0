package differ

import (
	"fmt"
	"sort"

	"github.com/buildstation/voidmap/pkg/elements"
)

// Differ computes changesets between element collections.
type Differ struct{}

// New creates a new Differ.
func New() *Differ {
	return &Differ{}
}

// Elements compares a persisted collection against an incoming batch and
// classifies every record. Records in old but not in new are Removed;
// records in new but not in old are Added; records in both are Updated or
// Unchanged depending on their extracted content.
func (d *Differ) Elements(old, new []elements.Element) *Changeset {
	oldByID := make(map[string]elements.Element, len(old))
	for _, e := range old {
		oldByID[e.GlobalID] = e
	}
	newByID := make(map[string]elements.Element, len(new))
	for _, e := range new {
		newByID[e.GlobalID] = e
	}

	changeset := &Changeset{}

	for _, incoming := range new {
		existing, found := oldByID[incoming.GlobalID]
		if !found {
			changeset.Added = append(changeset.Added, incoming)
			continue
		}
		if existing.EqualContent(&incoming) {
			changeset.Unchanged = append(changeset.Unchanged, incoming)
			continue
		}
		changeset.Updated = append(changeset.Updated, Update{
			ID:       incoming.GlobalID,
			Existing: existing,
			New:      incoming,
			Changes:  d.fieldChanges(&existing, &incoming),
		})
	}

	for _, existing := range old {
		if _, found := newByID[existing.GlobalID]; !found {
			changeset.Removed = append(changeset.Removed, existing)
		}
	}

	changeset.Finalize()
	return changeset
}

// fieldChanges lists the individual field differences between two records.
// Only extracted content is compared; workflow fields never appear here.
func (d *Differ) fieldChanges(old, new *elements.Element) []FieldChange {
	var changes []FieldChange

	compare := func(path, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		change := FieldChange{Path: path, OldValue: oldVal, NewValue: newVal, Type: ChangeTypeUpdate}
		if oldVal == "" {
			change.Type = ChangeTypeAdd
		} else if newVal == "" {
			change.Type = ChangeTypeRemove
		}
		changes = append(changes, change)
	}

	compare("name", old.Name, new.Name)
	compare("description", old.Description, new.Description)
	compare("spatial_container", old.SpatialContainer, new.SpatialContainer)

	keys := make(map[string]struct{}, len(old.Attributes)+len(new.Attributes))
	for k := range old.Attributes {
		keys[k] = struct{}{}
	}
	for k := range new.Attributes {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		compare(fmt.Sprintf("attributes.%s", k), old.Attributes[k], new.Attributes[k])
	}

	return changes
}
