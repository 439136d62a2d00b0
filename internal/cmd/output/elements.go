package output

import (
	"io"
	"strings"

	"github.com/buildstation/voidmap/pkg/elements"
)

// ElementsToTableData converts elements to tabular form. Wide adds
// provenance and lifecycle columns.
func ElementsToTableData(elems []elements.Element, wide bool) Data {
	headers := []string{"GlobalId", "Type", "Name", "Storey", "Status", "Architect", "Structural"}
	if wide {
		headers = append(headers, "Lineage", "Source File", "Added", "Deleted", "Attributes")
	}

	rows := make([][]string, 0, len(elems))
	for _, e := range elems {
		row := []string{
			e.GlobalID,
			string(e.Type),
			e.Name,
			e.SpatialContainer,
			string(e.Status),
			string(e.ApprovalArchitect),
			string(e.ApprovalStructural),
		}
		if wide {
			deleted := ""
			if e.DeletedAt != nil {
				deleted = e.DeletedAt.Format("2006-01-02 15:04")
			}
			var attrs []string
			for _, key := range e.AttributeKeys() {
				attrs = append(attrs, key+"="+e.Attributes[key])
			}
			row = append(row,
				e.Lineage,
				e.SourceFile,
				e.AddedAt.Format("2006-01-02 15:04"),
				deleted,
				strings.Join(attrs, ", "),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// FormatElements writes elements in the requested format. Table formats
// go through ElementsToTableData; json and yaml marshal the elements
// directly.
func FormatElements(w io.Writer, elems []elements.Element, format Format) error {
	formatter := NewFormatter(format)
	switch format {
	case FormatTable, FormatWide, "":
		return formatter.Format(w, ElementsToTableData(elems, format == FormatWide))
	default:
		return formatter.Format(w, elems)
	}
}
