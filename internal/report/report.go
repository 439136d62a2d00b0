// Package report renders reconciliation results as markdown change
// reports for review outside the CLI.
package report

import (
	"fmt"
	"io"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

// WriteChangeReport renders the result of one reconciliation run.
func WriteChangeReport(w io.Writer, result *reconciler.Result) error {
	doc := md.NewMarkdown(w)

	doc.H1("Change Report").
		PlainText(fmt.Sprintf("Batch `%s` from `%s` (lineage `%s`).",
			result.BatchID, result.SourceFile, result.Lineage)).
		LF()

	cs := result.Changeset
	doc.H2("Summary")
	doc.Table(md.TableSet{
		Header: []string{"Classification", "Count"},
		Rows: [][]string{
			{"New", strconv.Itoa(len(cs.Added))},
			{"Updated", strconv.Itoa(len(cs.Updated))},
			{"Deleted", strconv.Itoa(len(cs.Removed))},
			{"Unchanged", strconv.Itoa(len(cs.Unchanged))},
			{"Resurrected", strconv.Itoa(len(result.Resurrected))},
		},
	})

	if len(cs.Added) > 0 {
		doc.H2("New")
		doc.Table(md.TableSet{
			Header: []string{"GlobalId", "Type", "Name", "Storey"},
			Rows:   elementRows(cs.Added),
		})
	}

	if len(cs.Updated) > 0 {
		doc.H2("Updated")
		var rows [][]string
		for _, u := range cs.Updated {
			for _, change := range u.Changes {
				rows = append(rows, []string{
					u.ID,
					change.Path,
					change.OldValue,
					change.NewValue,
				})
			}
		}
		doc.Table(md.TableSet{
			Header: []string{"GlobalId", "Field", "Before", "After"},
			Rows:   rows,
		})
	}

	if len(cs.Removed) > 0 {
		doc.H2("Deleted")
		doc.Table(md.TableSet{
			Header: []string{"GlobalId", "Type", "Name", "Storey"},
			Rows:   elementRows(cs.Removed),
		})
	}

	if len(result.Resurrected) > 0 {
		doc.H2("Resurrected")
		for _, id := range result.Resurrected {
			doc.BulletList(id)
		}
	}

	if len(result.Conflicts) > 0 {
		doc.H2("Duplicate IDs in batch")
		var rows [][]string
		for _, c := range result.Conflicts {
			rows = append(rows, []string{
				c.GlobalID,
				strconv.Itoa(c.Count),
				strconv.FormatBool(c.Divergent),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"GlobalId", "Occurrences", "Divergent"},
			Rows:   rows,
		})
	}

	return doc.Build()
}

// WriteApprovalSummary renders the approval standing of a population.
func WriteApprovalSummary(w io.Writer, set *elements.Set) error {
	doc := md.NewMarkdown(w)
	doc.H1("Approval Summary")

	counts := map[elements.Role]map[elements.Approval]int{
		elements.RoleArchitect:  {},
		elements.RoleStructural: {},
	}
	live := set.Live()
	for _, e := range live.List() {
		for role := range counts {
			counts[role][role.Approval(&e)]++
		}
	}

	doc.Table(md.TableSet{
		Header: []string{"Role", "Approved", "Rejected", "Pending"},
		Rows: [][]string{
			approvalRow("Architect", counts[elements.RoleArchitect]),
			approvalRow("Structural engineer", counts[elements.RoleStructural]),
		},
	})
	doc.PlainText(fmt.Sprintf("%d live elements.", live.Len()))
	return doc.Build()
}

func approvalRow(label string, counts map[elements.Approval]int) []string {
	return []string{
		label,
		strconv.Itoa(counts[elements.ApprovalApproved]),
		strconv.Itoa(counts[elements.ApprovalRejected]),
		strconv.Itoa(counts[elements.ApprovalPending]),
	}
}

func elementRows(elems []elements.Element) [][]string {
	rows := make([][]string, 0, len(elems))
	for _, e := range elems {
		rows = append(rows, []string{e.GlobalID, string(e.Type), e.Name, e.SpatialContainer})
	}
	return rows
}
