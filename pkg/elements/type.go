package elements

import (
	"fmt"
	"strings"
)

// Type identifies which kind of building element a record describes.
// Each type maps to its own storage table and IFC entity.
type Type string

const (
	// VirtualElement is an IfcVirtualElement provision-for-void placeholder.
	VirtualElement Type = "virtual_element"

	// BuildingElementProxy is an IfcBuildingElementProxy provision object.
	BuildingElementProxy Type = "building_element_proxy"
)

// Types returns all supported element types.
func Types() []Type {
	return []Type{VirtualElement, BuildingElementProxy}
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether the type is one of the supported element types.
func (t Type) Valid() bool {
	switch t {
	case VirtualElement, BuildingElementProxy:
		return true
	}
	return false
}

// Entity returns the IFC entity name for this type as it appears in a
// STEP physical file DATA section.
func (t Type) Entity() string {
	switch t {
	case VirtualElement:
		return "IFCVIRTUALELEMENT"
	case BuildingElementProxy:
		return "IFCBUILDINGELEMENTPROXY"
	}
	return ""
}

// Table returns the storage table name for this type. Table names are
// fixed at compile time; nothing is ever derived from user input.
func (t Type) Table() string {
	switch t {
	case VirtualElement:
		return "virtual_elements"
	case BuildingElementProxy:
		return "building_element_proxies"
	}
	return ""
}

// ParseType converts a string (enum value, IFC entity name, or a common
// alias) to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "virtual_element", "virtualelement", "ifcvirtualelement":
		return VirtualElement, nil
	case "building_element_proxy", "buildingelementproxy", "ifcbuildingelementproxy", "proxy":
		return BuildingElementProxy, nil
	}
	return "", fmt.Errorf("unknown element type %q", s)
}
