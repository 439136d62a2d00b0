package elements

import "fmt"

// Status is the lifecycle state of an element record relative to the
// persisted set.
type Status string

const (
	// StatusNew marks a record on first sighting of its global ID.
	StatusNew Status = "new"

	// StatusActive marks a record present in the latest revision of its lineage.
	StatusActive Status = "active"

	// StatusDeleted marks a record absent from the latest revision of its
	// lineage. Deleted records are retained until an explicit purge.
	StatusDeleted Status = "deleted"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusActive, StatusDeleted:
		return true
	}
	return false
}

// Live reports whether the record counts as present in the model
// (new or active, not soft-deleted).
func (s Status) Live() bool {
	return s == StatusNew || s == StatusActive
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusActive, StatusDeleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}
