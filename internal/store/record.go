package store

import (
	"time"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
)

// record is the sqlite row shape for one tracked element. Each element
// type has its own table with this layout; IFC attributes are stored as
// a YAML blob so schema additions do not require migrations.
type record struct {
	ID                 uint       `gorm:"column:id;primaryKey;autoIncrement"`
	GlobalID           string     `gorm:"column:ifc_guid;uniqueIndex;size:64;not null"`
	Name               string     `gorm:"column:name"`
	Description        string     `gorm:"column:description"`
	Attributes         string     `gorm:"column:attributes"`
	BuildingStorey     string     `gorm:"column:building_storey"`
	Filename           string     `gorm:"column:filename"`
	Lineage            string     `gorm:"column:lineage;index"`
	FileTimestamp      time.Time  `gorm:"column:file_timestamp"`
	Status             string     `gorm:"column:status;index;default:new"`
	ApprovalArchitect  string     `gorm:"column:architect_approval;default:pending"`
	ApprovalStructural string     `gorm:"column:structural_approval;default:pending"`
	AddedDate          time.Time  `gorm:"column:added_date"`
	DeletedDate        *time.Time `gorm:"column:deleted_date"`
}

// newRecord converts an element into its row shape.
func newRecord(e *elements.Element) (*record, error) {
	var attrs string
	if len(e.Attributes) > 0 {
		raw, err := yaml.Marshal(e.Attributes)
		if err != nil {
			return nil, errors.WrapStorage("encode", e.Type.Table(), err)
		}
		attrs = string(raw)
	}

	r := &record{
		GlobalID:           e.GlobalID,
		Name:               e.Name,
		Description:        e.Description,
		Attributes:         attrs,
		BuildingStorey:     e.SpatialContainer,
		Filename:           e.SourceFile,
		Lineage:            e.Lineage,
		FileTimestamp:      e.FileTimestamp.Time,
		Status:             string(e.Status),
		ApprovalArchitect:  string(e.ApprovalArchitect),
		ApprovalStructural: string(e.ApprovalStructural),
		AddedDate:          e.AddedAt.Time,
	}
	if e.DeletedAt != nil {
		t := e.DeletedAt.Time
		r.DeletedDate = &t
	}
	return r, nil
}

// element converts a row back into an element of the given type.
func (r *record) element(typ elements.Type) (*elements.Element, error) {
	var attrs map[string]string
	if r.Attributes != "" {
		if err := yaml.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
			return nil, errors.WrapStorage("decode", typ.Table(), err)
		}
	}

	status, err := elements.ParseStatus(r.Status)
	if err != nil {
		return nil, errors.WrapStorage("decode", typ.Table(), err)
	}
	architect, err := elements.ParseApproval(r.ApprovalArchitect)
	if err != nil {
		return nil, errors.WrapStorage("decode", typ.Table(), err)
	}
	structural, err := elements.ParseApproval(r.ApprovalStructural)
	if err != nil {
		return nil, errors.WrapStorage("decode", typ.Table(), err)
	}

	e := &elements.Element{
		GlobalID:           r.GlobalID,
		Type:               typ,
		Name:               r.Name,
		Description:        r.Description,
		Attributes:         attrs,
		SpatialContainer:   r.BuildingStorey,
		SourceFile:         r.Filename,
		Lineage:            r.Lineage,
		FileTimestamp:      utc.Time{Time: r.FileTimestamp},
		Status:             status,
		ApprovalArchitect:  architect,
		ApprovalStructural: structural,
		AddedAt:            utc.Time{Time: r.AddedDate},
	}
	if r.DeletedDate != nil {
		deleted := utc.Time{Time: *r.DeletedDate}
		e.DeletedAt = &deleted
	}
	return e, nil
}
