package voidmap

import (
	"context"

	"github.com/buildstation/voidmap/internal/ifc"
	"github.com/buildstation/voidmap/internal/store"
	"github.com/buildstation/voidmap/internal/tabular"
	"github.com/buildstation/voidmap/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Voidmap = (*voidmap)(nil)

// Export writes the full population to an xlsx workbook at path.
func (vm *voidmap) Export(ctx context.Context, path string) error {
	set, err := vm.store.Load(ctx)
	if err != nil {
		return err
	}
	return tabular.ExportElements(set, path)
}

// PurgeDeleted permanently removes elements in the deleted state.
// Deletion during reconciliation is always soft; this is the one
// explicit way records leave the store.
func (vm *voidmap) PurgeDeleted(ctx context.Context) (int, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	purged, err := vm.store.PurgeDeleted(ctx)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		logging.Info().Int("purged", purged).Msg("deleted elements purged")
	}
	return purged, nil
}

// Snapshot writes a point-in-time copy of the store to path.
func (vm *voidmap) Snapshot(ctx context.Context, path string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.store.Snapshot(ctx, path)
}

// Writeback annotates the IFC file at src with each tracked element's
// lifecycle status and approvals and writes the result to dst. Only
// live elements are annotated; retired records never reach the model.
func (vm *voidmap) Writeback(ctx context.Context, src, dst string, cfg ifc.WritebackConfig) (*ifc.WritebackResult, error) {
	set, err := vm.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ifc.WritebackFile(src, dst, set.Live().List(), cfg)
}

// interface check for the store fallbacks used in tests
var (
	_ store.Store = (*store.Memory)(nil)
	_ store.Store = (*store.SQLite)(nil)
)
