// Package elements defines the building element records tracked by voidmap
// and the containers that hold them. An element record is one physical
// building component's extracted data plus its workflow state: lifecycle
// status and per-role approval decisions.
package elements

import (
	"maps"
	"sort"

	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/errors"
)

// Element is one building element record. Identity is the GlobalID, which
// is unique per physical element across all file revisions and trades; the
// source file name is provenance only and never part of the key.
type Element struct {
	GlobalID    string `json:"global_id" yaml:"global_id"`       // IFC GUID, stable across revisions
	Type        Type   `json:"type" yaml:"type"`                 // selects the storage table
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Attributes holds the remaining per-type attributes. The schema varies
	// per type and per source file; stored records carry the superset union
	// across revisions.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	SpatialContainer string   `json:"spatial_container,omitempty" yaml:"spatial_container,omitempty"` // containing building storey
	SourceFile       string   `json:"source_file,omitempty" yaml:"source_file,omitempty"`             // originating file name, provenance only
	Lineage          string   `json:"lineage,omitempty" yaml:"lineage,omitempty"`                     // caller-supplied revision stream key
	FileTimestamp    utc.Time `json:"file_timestamp" yaml:"file_timestamp"`                           // authoring timestamp from the file header

	Status             Status   `json:"status" yaml:"status"`
	ApprovalArchitect  Approval `json:"approval_architect" yaml:"approval_architect"`
	ApprovalStructural Approval `json:"approval_structural" yaml:"approval_structural"`

	AddedAt   utc.Time  `json:"added_at" yaml:"added_at"`
	DeletedAt *utc.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	clone := *e
	if e.Attributes != nil {
		clone.Attributes = maps.Clone(e.Attributes)
	}
	if e.DeletedAt != nil {
		deletedAt := *e.DeletedAt
		clone.DeletedAt = &deletedAt
	}
	return &clone
}

// EqualContent reports whether two records carry the same extracted
// content. Workflow fields (status, approvals, lifecycle timestamps) and
// provenance (source file, lineage, file timestamp) are ignored: a record
// re-uploaded unchanged under a new file name is still "unchanged".
func (e *Element) EqualContent(other *Element) bool {
	if e.GlobalID != other.GlobalID ||
		e.Type != other.Type ||
		e.Name != other.Name ||
		e.Description != other.Description ||
		e.SpatialContainer != other.SpatialContainer {
		return false
	}
	return maps.Equal(e.Attributes, other.Attributes)
}

// AttributeKeys returns the element's attribute names in sorted order.
func (e *Element) AttributeKeys() []string {
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the element's invariants.
func (e *Element) Validate() error {
	if e.GlobalID == "" {
		return errEmptyGlobalID
	}
	if !e.Type.Valid() {
		return errInvalidType
	}
	if e.Status != "" && !e.Status.Valid() {
		return errInvalidStatus
	}
	if e.ApprovalArchitect != "" && !e.ApprovalArchitect.Valid() {
		return errInvalidApproval
	}
	if e.ApprovalStructural != "" && !e.ApprovalStructural.Valid() {
		return errInvalidApproval
	}
	for key, value := range e.Attributes {
		if len(value) > constants.MaxAttributeLength {
			return errors.NewValidationError("attributes."+key, len(value),
				"attribute value exceeds the stored length limit")
		}
	}
	return nil
}
