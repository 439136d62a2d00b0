// Package tabular moves element data in and out of xlsx workbooks:
// full-population exports for review, and bulk approval imports keyed
// on GlobalId.
package tabular

import (
	"strings"

	"gitee.com/gooffice/gooffice/spreadsheet"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// fixed export columns, followed by the population's attribute
// superset in sorted order.
var exportColumns = []string{
	"GlobalId",
	"Type",
	"Name",
	"Description",
	"BuildingStorey",
	"SourceFile",
	"Lineage",
	"Status",
	"ArchitectApproval",
	"StructuralApproval",
	"AddedDate",
	"DeletedDate",
}

// ExportElements writes the population to an xlsx workbook at path,
// one row per element sorted by GlobalId.
func ExportElements(set *elements.Set, path string) error {
	if set == nil {
		return errors.NewValidationError("set", nil, "set is nil")
	}

	wb := spreadsheet.New()
	defer wb.Close()
	sheet := wb.AddSheet()
	sheet.SetName("Elements")

	attrs := set.AttributeSuperset()

	header := sheet.AddRow()
	for _, col := range exportColumns {
		header.AddCell().SetString(col)
	}
	for _, key := range attrs {
		header.AddCell().SetString(key)
	}

	for _, e := range set.List() {
		row := sheet.AddRow()
		deletedAt := ""
		if e.DeletedAt != nil {
			deletedAt = e.DeletedAt.String()
		}
		for _, v := range []string{
			e.GlobalID,
			string(e.Type),
			e.Name,
			e.Description,
			e.SpatialContainer,
			e.SourceFile,
			e.Lineage,
			string(e.Status),
			string(e.ApprovalArchitect),
			string(e.ApprovalStructural),
			e.AddedAt.String(),
			deletedAt,
		} {
			row.AddCell().SetString(v)
		}
		for _, key := range attrs {
			row.AddCell().SetString(e.Attributes[key])
		}
	}

	if err := wb.Validate(); err != nil {
		return errors.WrapIO("export", path, err)
	}
	if err := wb.SaveToFile(path); err != nil {
		return errors.WrapIO("export", path, err)
	}
	logging.Info().Str("path", path).Int("rows", set.Len()).Msg("population exported")
	return nil
}

// ImportResult reports the outcome of a bulk approval import.
type ImportResult struct {
	// RowsRead counts data rows consumed from the workbook.
	RowsRead int `json:"rows_read" yaml:"rows_read"`
	// Updated counts elements whose approval was set.
	Updated int `json:"updated" yaml:"updated"`
	// Unmatched lists GlobalIds with no tracked element. They are
	// reported, never created.
	Unmatched []string `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
}

// ImportApprovals reads GlobalIds from the key column of path's first
// sheet and applies the approval decision for the given role to each
// matching element in set. Additional sheets are ignored; a leading
// header row is skipped when its key cell reads "GlobalId". The set is
// modified in place only for matched rows.
func ImportApprovals(set *elements.Set, path string, role elements.Role, decision elements.Approval, keyColumn int) (*ImportResult, error) {
	if set == nil {
		return nil, errors.NewValidationError("set", nil, "set is nil")
	}
	if keyColumn < 0 {
		return nil, errors.NewValidationError("key_column", keyColumn, "key column must not be negative")
	}
	if !decision.Decided() {
		return nil, errors.NewValidationError("decision", string(decision), "import requires an approved or rejected decision")
	}

	wb, err := spreadsheet.Open(path)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	defer wb.Close()

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, errors.NewParseError("xlsx", path, "workbook has no sheets", nil)
	}

	result := &ImportResult{}
	for i, row := range sheets[0].Rows() {
		cells := row.Cells()
		if keyColumn >= len(cells) {
			continue
		}
		key := strings.TrimSpace(cells[keyColumn].GetString())
		if key == "" {
			continue
		}
		if i == 0 && strings.EqualFold(key, "GlobalId") {
			continue
		}
		result.RowsRead++

		e, ok := set.Get(key)
		if !ok {
			result.Unmatched = append(result.Unmatched, key)
			continue
		}
		role.Apply(e, decision)
		set.Set(e)
		result.Updated++
	}

	logging.Info().
		Str("path", path).
		Str("role", string(role)).
		Str("decision", string(decision)).
		Int("updated", result.Updated).
		Int("unmatched", len(result.Unmatched)).
		Msg("approvals imported")
	return result, nil
}
