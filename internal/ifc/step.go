// Package ifc reads and annotates IFC files in the STEP physical file
// encoding (ISO 10303-21). It covers the slice of the format that
// provision-for-void tracking needs: header metadata, element entities
// with their direct attributes, spatial containment, and property-set
// writeback.
package ifc

import (
	"github.com/agentstation/utc"
)

// ParamKind discriminates the STEP parameter variants.
type ParamKind int

const (
	// KindNull is the `$` unset marker.
	KindNull ParamKind = iota
	// KindDerived is the `*` redeclared-attribute marker.
	KindDerived
	// KindString is a quoted text value.
	KindString
	// KindRef is an `#id` instance reference.
	KindRef
	// KindList is a parenthesized aggregate.
	KindList
	// KindEnum is a `.VALUE.` enumeration literal.
	KindEnum
	// KindRaw is anything else: numbers and typed values, kept verbatim.
	KindRaw
)

// Param is one parsed entity parameter.
type Param struct {
	Kind ParamKind
	Str  string  // KindString (decoded), KindEnum, KindRaw
	Ref  int64   // KindRef
	List []Param // KindList
}

// String returns the decoded text of a string parameter, or "" for any
// other kind.
func (p Param) String() string {
	if p.Kind == KindString {
		return p.Str
	}
	return ""
}

// RefID returns the referenced instance ID, or 0 for non-references.
func (p Param) RefID() int64 {
	if p.Kind == KindRef {
		return p.Ref
	}
	return 0
}

// Entity is one `#id=KEYWORD(...)` data statement.
type Entity struct {
	ID     int64
	Type   string // upper-case keyword, e.g. IFCVIRTUALELEMENT
	Params []Param
}

// Param returns the i-th parameter, or a null Param when out of range.
// STEP writers may omit trailing optional attributes.
func (e *Entity) Param(i int) Param {
	if i < 0 || i >= len(e.Params) {
		return Param{Kind: KindNull}
	}
	return e.Params[i]
}

// Header holds the HEADER section fields the tracker uses.
type Header struct {
	// Schema is the declared schema identifier, e.g. IFC4.
	Schema string
	// Name is the FILE_NAME name field, usually the authoring path.
	Name string
	// Timestamp is the FILE_NAME authoring timestamp; zero when the
	// header omits or mangles it.
	Timestamp utc.Time
	// Originating and Preprocessor identify the authoring tool.
	Originating  string
	Preprocessor string
}

// File is a decoded STEP file. The original bytes are retained so
// writeback can splice statements without re-encoding the whole file.
type File struct {
	Header Header

	raw      []byte
	entities map[int64]*Entity
	order    []int64
	maxID    int64
}

// Get returns the entity with the given instance ID.
func (f *File) Get(id int64) (*Entity, bool) {
	e, ok := f.entities[id]
	return e, ok
}

// Entities returns all entities of the given upper-case keyword in file
// order.
func (f *File) Entities(keyword string) []*Entity {
	var out []*Entity
	for _, id := range f.order {
		if e := f.entities[id]; e.Type == keyword {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of data statements.
func (f *File) Len() int {
	return len(f.order)
}

// MaxID returns the highest instance ID in use.
func (f *File) MaxID() int64 {
	return f.maxID
}
