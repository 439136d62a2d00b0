// Package voidmap tracks provision-for-void elements across revisions
// of IFC coordination models. It keeps one persisted population per
// project, reconciles each uploaded file revision against it, and
// carries the approval workflow that uploads must never overwrite.
//
// Example usage:
//
//	// Create a tracker backed by a sqlite database
//	vm, err := voidmap.New(voidmap.WithStorePath("project.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer vm.Close()
//
//	// Register event hooks
//	vm.OnElementAdded(func(e elements.Element) {
//	    log.Printf("new provision: %s", e.GlobalID)
//	})
//
//	// Ingest a revision for the hvac lineage
//	result, err := vm.Ingest(ctx, "hvac_r2.ifc", "hvac")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result)
package voidmap

import (
	"context"
	"fmt"
	"sync"

	"github.com/buildstation/voidmap/internal/ifc"
	"github.com/buildstation/voidmap/internal/store"
	"github.com/buildstation/voidmap/internal/tabular"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

// Voidmap manages a persisted provision-for-void population with
// revision reconciliation and event hooks
type Voidmap interface {
	// Elements returns a copy of the current population
	Elements(ctx context.Context) (*elements.Set, error)

	// Element returns a copy of one tracked element
	Element(ctx context.Context, globalID string) (*elements.Element, error)

	// Ingest reconciles the IFC file at path as one revision of the
	// given lineage
	Ingest(ctx context.Context, path, lineage string) (*reconciler.Result, error)

	// ReconcileBatch reconciles an already-extracted batch
	ReconcileBatch(ctx context.Context, batch *reconciler.Batch) (*reconciler.Result, error)

	// Approve records an approval decision for the given elements
	Approve(ctx context.Context, role elements.Role, decision elements.Approval, globalIDs ...string) (int, error)

	// ImportApprovals applies a bulk approval workbook
	ImportApprovals(ctx context.Context, path string, role elements.Role, decision elements.Approval) (*tabular.ImportResult, error)

	// Export writes the population to an xlsx workbook
	Export(ctx context.Context, path string) error

	// PurgeDeleted permanently removes deleted elements
	PurgeDeleted(ctx context.Context) (int, error)

	// Snapshot writes a point-in-time copy of the store
	Snapshot(ctx context.Context, path string) error

	// Writeback annotates the IFC file at src with tracked state and
	// writes the result to dst
	Writeback(ctx context.Context, src, dst string, cfg ifc.WritebackConfig) (*ifc.WritebackResult, error)

	// OnElementAdded registers a callback for newly tracked elements
	OnElementAdded(ElementAddedHook)

	// OnElementUpdated registers a callback for content updates
	OnElementUpdated(ElementUpdatedHook)

	// OnElementRemoved registers a callback for retirements
	OnElementRemoved(ElementRemovedHook)

	// OnElementResurrected registers a callback for deleted elements
	// that reappear
	OnElementResurrected(ElementResurrectedHook)

	// Close releases the underlying store
	Close() error
}

// voidmap is the internal implementation of the Voidmap interface
type voidmap struct {
	mu     sync.Mutex // serializes reconcile/commit cycles
	config *config

	store      store.Store
	reconciler reconciler.Reconciler
	hooks      *hooks
}

// New creates a new Voidmap instance with the given options
func New(opts ...Option) (Voidmap, error) {
	vm := &voidmap{
		config: defaultConfig(),
		hooks:  newHooks(),
	}

	if err := vm.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	// Use the provided store, open sqlite at the configured path, or
	// fall back to an in-memory population.
	switch {
	case vm.config.store != nil:
		vm.store = vm.config.store
	case vm.config.storePath != "":
		s, err := store.Open(vm.config.storePath)
		if err != nil {
			return nil, err
		}
		vm.store = s
	default:
		vm.store = store.NewMemory()
	}

	r, err := reconciler.New(vm.config.reconcilerOptions()...)
	if err != nil {
		return nil, err
	}
	vm.reconciler = r

	return vm, nil
}

// Elements implements the Voidmap interface.
func (vm *voidmap) Elements(ctx context.Context) (*elements.Set, error) {
	return vm.store.Load(ctx)
}

// Element implements the Voidmap interface.
func (vm *voidmap) Element(ctx context.Context, globalID string) (*elements.Element, error) {
	set, err := vm.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := set.Get(globalID)
	if !ok {
		return nil, errors.NewNotFoundError("element", globalID)
	}
	return e, nil
}

// OnElementAdded implements the Voidmap interface.
func (vm *voidmap) OnElementAdded(fn ElementAddedHook) {
	vm.hooks.OnElementAdded(fn)
}

// OnElementUpdated implements the Voidmap interface.
func (vm *voidmap) OnElementUpdated(fn ElementUpdatedHook) {
	vm.hooks.OnElementUpdated(fn)
}

// OnElementRemoved implements the Voidmap interface.
func (vm *voidmap) OnElementRemoved(fn ElementRemovedHook) {
	vm.hooks.OnElementRemoved(fn)
}

// OnElementResurrected implements the Voidmap interface.
func (vm *voidmap) OnElementResurrected(fn ElementResurrectedHook) {
	vm.hooks.OnElementResurrected(fn)
}

// Close implements the Voidmap interface.
func (vm *voidmap) Close() error {
	return vm.store.Close()
}
