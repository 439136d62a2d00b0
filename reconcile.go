package voidmap

import (
	"context"
	"path/filepath"

	"github.com/buildstation/voidmap/internal/ifc"
	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/logging"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

// Ingest decodes the IFC file at path, extracts its provision-for-void
// elements, and reconciles them as one revision of the given lineage.
// The batch timestamp comes from the file's FILE_NAME header.
func (vm *voidmap) Ingest(ctx context.Context, path, lineage string) (*reconciler.Result, error) {
	file, err := ifc.DecodeFile(path)
	if err != nil {
		return nil, err
	}

	batch := &reconciler.Batch{
		Lineage:    lineage,
		SourceFile: filepath.Base(path),
		Timestamp:  file.Header.Timestamp,
		Elements:   ifc.Extract(file),
	}

	logging.Debug().
		Str("path", path).
		Str("lineage", lineage).
		Str("schema", file.Header.Schema).
		Int("elements", len(batch.Elements)).
		Msg("file decoded for ingest")

	return vm.ReconcileBatch(ctx, batch)
}

// ReconcileBatch reconciles an already-extracted batch against the
// persisted population and commits the merged result. The load,
// reconcile, and save steps form one critical section per instance;
// the store commit is transactional, so a failure leaves the previous
// population in place and fires no hooks.
func (vm *voidmap) ReconcileBatch(ctx context.Context, batch *reconciler.Batch) (*reconciler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, constants.ReconcileTimeout)
	defer cancel()

	vm.mu.Lock()
	defer vm.mu.Unlock()

	persisted, err := vm.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := vm.reconciler.Reconcile(ctx, persisted, batch)
	if err != nil {
		return nil, err
	}

	// Unchanged batches still commit: acknowledgment promotes new
	// elements to active and provenance fields refresh.
	if err := vm.store.Save(ctx, result.Set); err != nil {
		return nil, err
	}

	vm.hooks.trigger(result)
	return result, nil
}
