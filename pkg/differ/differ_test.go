package differ

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/buildstation/voidmap/pkg/elements"
)

func element(id, name string, attrs map[string]string) elements.Element {
	return elements.Element{
		GlobalID:         id,
		Type:             elements.VirtualElement,
		Name:             name,
		Attributes:       attrs,
		SpatialContainer: "Level 01",
		Status:           elements.StatusActive,
	}
}

func TestElementsClassification(t *testing.T) {
	old := []elements.Element{
		element("G1", "void-a", nil),
		element("G2", "void-b", nil),
	}
	incoming := []elements.Element{
		element("G1", "void-a", nil),             // unchanged
		element("G2", "void-b renamed", nil),     // updated
		element("G3", "void-c", nil),             // added
	}

	cs := New().Elements(old, incoming)

	if diff := cmp.Diff([]string{"G3"}, cs.AddedIDs()); diff != "" {
		t.Errorf("AddedIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"G2"}, cs.UpdatedIDs()); diff != "" {
		t.Errorf("UpdatedIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"G1"}, cs.UnchangedIDs()); diff != "" {
		t.Errorf("UnchangedIDs mismatch (-want +got):\n%s", diff)
	}
	if len(cs.Removed) != 0 {
		t.Errorf("Removed = %v, want empty", cs.RemovedIDs())
	}
	if cs.Summary.TotalChanges != 2 {
		t.Errorf("TotalChanges = %d, want 2", cs.Summary.TotalChanges)
	}
}

func TestElementsRemoved(t *testing.T) {
	old := []elements.Element{element("G1", "a", nil), element("G2", "b", nil)}
	incoming := []elements.Element{element("G1", "a", nil)}

	cs := New().Elements(old, incoming)

	if diff := cmp.Diff([]string{"G2"}, cs.RemovedIDs()); diff != "" {
		t.Errorf("RemovedIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldChanges(t *testing.T) {
	old := element("G1", "void", map[string]string{"Tag": "T-1", "ObjectType": "PfV"})
	incoming := element("G1", "void", map[string]string{"Tag": "T-2", "PredefinedType": "NOTDEFINED"})
	incoming.SpatialContainer = "Level 02"

	cs := New().Elements([]elements.Element{old}, []elements.Element{incoming})
	if len(cs.Updated) != 1 {
		t.Fatalf("Updated = %d, want 1", len(cs.Updated))
	}

	want := []FieldChange{
		{Path: "spatial_container", OldValue: "Level 01", NewValue: "Level 02", Type: ChangeTypeUpdate},
		{Path: "attributes.ObjectType", OldValue: "PfV", NewValue: "", Type: ChangeTypeRemove},
		{Path: "attributes.PredefinedType", OldValue: "", NewValue: "NOTDEFINED", Type: ChangeTypeAdd},
		{Path: "attributes.Tag", OldValue: "T-1", NewValue: "T-2", Type: ChangeTypeUpdate},
	}
	if diff := cmp.Diff(want, cs.Updated[0].Changes); diff != "" {
		t.Errorf("field changes mismatch (-want +got):\n%s", diff)
	}
}

func TestApprovalChangesAreNotContentChanges(t *testing.T) {
	old := element("G1", "void", nil)
	old.ApprovalArchitect = elements.ApprovalApproved

	incoming := element("G1", "void", nil)
	incoming.ApprovalArchitect = elements.ApprovalPending

	cs := New().Elements([]elements.Element{old}, []elements.Element{incoming})
	if len(cs.Unchanged) != 1 || cs.HasChanges() {
		t.Error("approval differences alone must classify as unchanged")
	}
}

func TestChangesetFilter(t *testing.T) {
	old := []elements.Element{element("G1", "a", nil), element("G2", "b", nil)}
	incoming := []elements.Element{element("G1", "a2", nil), element("G3", "c", nil)}

	cs := New().Elements(old, incoming)

	additive := cs.Filter(ApplyAdditive)
	if len(additive.Removed) != 0 || len(additive.Added) != 1 || len(additive.Updated) != 1 {
		t.Errorf("ApplyAdditive filter wrong: %+v", additive.Summary)
	}

	updates := cs.Filter(ApplyUpdatesOnly)
	if len(updates.Added) != 0 || len(updates.Updated) != 1 {
		t.Errorf("ApplyUpdatesOnly filter wrong: %+v", updates.Summary)
	}

	if cs.Filter(ApplyAll) != cs {
		t.Error("ApplyAll should return the changeset itself")
	}
}

func TestIdempotentDiff(t *testing.T) {
	batch := []elements.Element{element("G1", "a", nil), element("G2", "b", nil)}

	first := New().Elements(nil, batch)
	if len(first.Added) != 2 {
		t.Fatalf("first diff Added = %d, want 2", len(first.Added))
	}

	second := New().Elements(batch, batch)
	if second.HasChanges() {
		t.Errorf("diffing a batch against itself should yield no changes, got %s", second.String())
	}
	if second.Summary.Unchanged != 2 {
		t.Errorf("Unchanged = %d, want 2", second.Summary.Unchanged)
	}
}
