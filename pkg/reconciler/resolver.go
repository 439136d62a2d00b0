package reconciler

import (
	"context"
	"strings"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// Conflict records a duplicate global ID within a single batch.
// Divergent is set when the duplicates disagreed on tracked content,
// in which case the last occurrence in file order won.
type Conflict struct {
	GlobalID  string `json:"global_id"  yaml:"global_id"`
	Count     int    `json:"count"      yaml:"count"`
	Divergent bool   `json:"divergent"  yaml:"divergent"`
}

// Resolver canonicalizes a raw batch before reconciliation: it trims
// and validates identities, and collapses duplicate global IDs so each
// ID appears at most once, keeping the last occurrence in file order.
type Resolver struct {
	schemas *elements.Schemas
}

// NewResolver returns a Resolver backed by the given schema registry.
func NewResolver(schemas *elements.Schemas) *Resolver {
	if schemas == nil {
		schemas = elements.DefaultSchemas()
	}
	return &Resolver{schemas: schemas}
}

// Resolve validates and dedupes the batch elements. The returned slice
// preserves first-seen file order; each duplicate is reported as a
// Conflict. Elements with an empty global ID or invalid type fail the
// whole batch. Attribute keys not declared in the schema are dropped
// and logged at debug level.
func (r *Resolver) Resolve(ctx context.Context, batch []elements.Element) ([]elements.Element, []Conflict, error) {
	resolved := make([]elements.Element, 0, len(batch))
	index := make(map[string]int, len(batch))
	counts := make(map[string]int, len(batch))
	divergent := make(map[string]bool)

	for i := range batch {
		e := batch[i].Clone()
		e.GlobalID = strings.TrimSpace(e.GlobalID)
		if err := e.Validate(); err != nil {
			return nil, nil, errors.WrapValidation("element "+e.GlobalID, err)
		}
		if schema, ok := r.schemas.Get(e.Type); ok {
			// Unknown attribute keys are dropped rather than rejected;
			// exporters write superset columns and round-trips must not
			// accumulate stray keys.
			if unknown := schema.Unknown(e); len(unknown) > 0 {
				logging.FromContext(ctx).Debug().
					Str("global_id", e.GlobalID).
					Strs("keys", unknown).
					Msg("dropping attribute keys not in schema")
				for _, key := range unknown {
					delete(e.Attributes, key)
				}
			}
		}

		counts[e.GlobalID]++
		if pos, seen := index[e.GlobalID]; seen {
			if !resolved[pos].EqualContent(e) {
				divergent[e.GlobalID] = true
			}
			resolved[pos] = *e
			continue
		}
		index[e.GlobalID] = len(resolved)
		resolved = append(resolved, *e)
	}

	var conflicts []Conflict
	for _, e := range resolved {
		if counts[e.GlobalID] > 1 {
			conflicts = append(conflicts, Conflict{
				GlobalID:  e.GlobalID,
				Count:     counts[e.GlobalID],
				Divergent: divergent[e.GlobalID],
			})
		}
	}
	return resolved, conflicts, nil
}
