package ifc

import (
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/logging"
)

// IfcProduct attribute positions shared by the tracked entity types.
// IfcRoot: GlobalId(0), OwnerHistory(1), Name(2), Description(3);
// IfcObject adds ObjectType(4); IfcElement adds ObjectPlacement(5),
// Representation(6), Tag(7); IfcBuildingElementProxy adds
// PredefinedType(8).
const (
	attrGlobalID       = 0
	attrOwnerHistory   = 1
	attrName           = 2
	attrDescription    = 3
	attrObjectType     = 4
	attrTag            = 7
	attrPredefinedType = 8
)

// Spatial containment attribute positions.
// IfcRelContainedInSpatialStructure: RelatedElements(4),
// RelatingStructure(5).
const (
	attrRelatedElements   = 4
	attrRelatingStructure = 5
)

// Extract pulls the tracked provision-for-void elements out of a
// decoded file: every IfcVirtualElement and IfcBuildingElementProxy,
// with its direct attributes and the name of the spatial structure
// (normally a building storey) that contains it. Elements with an
// empty GlobalId are skipped with a warning rather than failing the
// file.
func Extract(f *File) []elements.Element {
	containers := f.containment()

	var out []elements.Element
	for _, typ := range elements.Types() {
		for _, entity := range f.Entities(typ.Entity()) {
			globalID := entity.Param(attrGlobalID).String()
			if globalID == "" {
				logging.Warn().
					Str("entity", typ.Entity()).
					Int64("instance", entity.ID).
					Msg("skipping element without GlobalId")
				continue
			}

			e := elements.Element{
				GlobalID:         globalID,
				Type:             typ,
				Name:             entity.Param(attrName).String(),
				Description:      entity.Param(attrDescription).String(),
				SpatialContainer: containers[entity.ID],
				Attributes:       map[string]string{},
			}
			if v := entity.Param(attrObjectType).String(); v != "" {
				e.Attributes["ObjectType"] = v
			}
			if v := entity.Param(attrTag).String(); v != "" {
				e.Attributes["Tag"] = v
			}
			if typ == elements.BuildingElementProxy {
				if p := entity.Param(attrPredefinedType); p.Kind == KindEnum {
					e.Attributes["PredefinedType"] = p.Str
				}
			}
			out = append(out, e)
		}
	}
	return out
}

// containment maps element instance IDs to the Name of their containing
// spatial structure.
func (f *File) containment() map[int64]string {
	containers := make(map[int64]string)
	for _, rel := range f.Entities("IFCRELCONTAINEDINSPATIALSTRUCTURE") {
		structure, ok := f.Get(rel.Param(attrRelatingStructure).RefID())
		if !ok {
			continue
		}
		name := structure.Param(attrName).String()
		if name == "" {
			continue
		}
		related := rel.Param(attrRelatedElements)
		if related.Kind != KindList {
			continue
		}
		for _, ref := range related.List {
			if id := ref.RefID(); id != 0 {
				containers[id] = name
			}
		}
	}
	return containers
}

// findByGlobalID locates a tracked element entity by its GlobalId.
func (f *File) findByGlobalID(globalID string) (*Entity, bool) {
	for _, typ := range elements.Types() {
		for _, entity := range f.Entities(typ.Entity()) {
			if entity.Param(attrGlobalID).String() == globalID {
				return entity, true
			}
		}
	}
	return nil, false
}
