package voidmap

import (
	"context"

	"github.com/buildstation/voidmap/internal/tabular"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// Approve records an approval decision for the given elements and
// returns how many were updated. Unknown IDs fail the call before
// anything is written.
func (vm *voidmap) Approve(ctx context.Context, role elements.Role, decision elements.Approval, globalIDs ...string) (int, error) {
	if !decision.Decided() {
		return 0, errors.NewValidationError("decision", string(decision), "approval requires an approved or rejected decision")
	}
	if len(globalIDs) == 0 {
		return 0, errors.NewValidationError("global_ids", "", "at least one element is required")
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	set, err := vm.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	for _, id := range globalIDs {
		e, ok := set.Get(id)
		if !ok {
			return 0, errors.NewNotFoundError("element", id)
		}
		role.Apply(e, decision)
		set.Set(e)
	}

	if err := vm.store.Save(ctx, set); err != nil {
		return 0, err
	}

	logging.Info().
		Str("role", string(role)).
		Str("decision", string(decision)).
		Int("updated", len(globalIDs)).
		Msg("approvals recorded")
	return len(globalIDs), nil
}

// ImportApprovals applies a bulk approval workbook: every GlobalId in
// the first sheet's key column gets the decision for the given role.
// Unmatched IDs are reported in the result, never created.
func (vm *voidmap) ImportApprovals(ctx context.Context, path string, role elements.Role, decision elements.Approval) (*tabular.ImportResult, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	set, err := vm.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := tabular.ImportApprovals(set, path, role, decision, 0)
	if err != nil {
		return nil, err
	}

	if result.Updated > 0 {
		if err := vm.store.Save(ctx, set); err != nil {
			return nil, err
		}
	}
	return result, nil
}
