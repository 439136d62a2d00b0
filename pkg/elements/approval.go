package elements

import (
	"fmt"
	"strings"
)

// Approval is a role's decision on an element record. Approval values come
// only from explicit user action or bulk import, never from file extraction.
type Approval string

const (
	// ApprovalPending means no decision has been recorded yet.
	ApprovalPending Approval = "pending"

	// ApprovalApproved means the role has approved the element.
	ApprovalApproved Approval = "approved"

	// ApprovalRejected means the role has rejected the element.
	ApprovalRejected Approval = "rejected"
)

// String returns the string representation of the approval.
func (a Approval) String() string {
	return string(a)
}

// Valid reports whether the approval is a known decision state.
func (a Approval) Valid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Decided reports whether a human decision has been recorded.
func (a Approval) Decided() bool {
	return a == ApprovalApproved || a == ApprovalRejected
}

// ParseApproval converts a string to an Approval. Boolean-style spellings
// are accepted for compatibility with older spreadsheets.
func ParseApproval(s string) (Approval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "":
		return ApprovalPending, nil
	case "approved", "approve", "true", "yes", "1":
		return ApprovalApproved, nil
	case "rejected", "reject", "false", "no", "0":
		return ApprovalRejected, nil
	}
	return "", fmt.Errorf("unknown approval value %q", s)
}

// Role identifies which trade's approval field an operation targets.
type Role string

const (
	// RoleArchitect is the architecture trade.
	RoleArchitect Role = "architect"

	// RoleStructural is the structural engineering trade.
	RoleStructural Role = "structural_engineer"
)

// Roles returns all supported roles.
func Roles() []Role {
	return []Role{RoleArchitect, RoleStructural}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is supported.
func (r Role) Valid() bool {
	return r == RoleArchitect || r == RoleStructural
}

// Approval returns the element's approval field for this role.
func (r Role) Approval(e *Element) Approval {
	switch r {
	case RoleArchitect:
		return e.ApprovalArchitect
	case RoleStructural:
		return e.ApprovalStructural
	}
	return ""
}

// Apply sets the element's approval field for this role.
func (r Role) Apply(e *Element, a Approval) {
	switch r {
	case RoleArchitect:
		e.ApprovalArchitect = a
	case RoleStructural:
		e.ApprovalStructural = a
	}
}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "architect", "architecture":
		return RoleArchitect, nil
	case "structural_engineer", "structural", "structure", "engineer":
		return RoleStructural, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
