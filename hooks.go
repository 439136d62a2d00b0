package voidmap

import (
	"sync"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

// Hook function types for element lifecycle events
type (
	// ElementAddedHook is called when an element enters tracking
	ElementAddedHook func(e elements.Element)

	// ElementUpdatedHook is called when a tracked element's content changes
	ElementUpdatedHook func(old, updated elements.Element)

	// ElementRemovedHook is called when an element is retired to the
	// deleted state
	ElementRemovedHook func(e elements.Element)

	// ElementResurrectedHook is called when a deleted element reappears
	ElementResurrectedHook func(e elements.Element)
)

// hooks manages event callbacks for population changes
type hooks struct {
	mu            sync.RWMutex
	onAdded       []ElementAddedHook
	onUpdated     []ElementUpdatedHook
	onRemoved     []ElementRemovedHook
	onResurrected []ElementResurrectedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnElementAdded registers a callback for newly tracked elements
func (h *hooks) OnElementAdded(fn ElementAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAdded = append(h.onAdded, fn)
}

// OnElementUpdated registers a callback for content updates
func (h *hooks) OnElementUpdated(fn ElementUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// OnElementRemoved registers a callback for retirements
func (h *hooks) OnElementRemoved(fn ElementRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRemoved = append(h.onRemoved, fn)
}

// OnElementResurrected registers a callback for deleted elements that
// reappear in a later revision
func (h *hooks) OnElementResurrected(fn ElementResurrectedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onResurrected = append(h.onResurrected, fn)
}

// trigger fires the registered hooks for one committed reconciliation.
// Hooks run after the store commit; a panicking hook is the caller's
// problem, not the population's.
func (h *hooks) trigger(result *reconciler.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cs := result.Changeset
	if cs == nil {
		return
	}

	// Hooks receive the committed records, with lifecycle status and
	// timestamps applied, not the raw batch versions.
	for _, e := range cs.Added {
		committed, ok := result.Set.Get(e.GlobalID)
		if !ok {
			continue
		}
		for _, fn := range h.onAdded {
			fn(*committed)
		}
	}
	for _, u := range cs.Updated {
		committed, ok := result.Set.Get(u.New.GlobalID)
		if !ok {
			continue
		}
		for _, fn := range h.onUpdated {
			fn(u.Existing, *committed)
		}
	}
	for _, e := range cs.Removed {
		committed, ok := result.Set.Get(e.GlobalID)
		if !ok {
			continue
		}
		for _, fn := range h.onRemoved {
			fn(*committed)
		}
	}

	if len(h.onResurrected) == 0 {
		return
	}
	for _, id := range result.Resurrected {
		if e, ok := result.Set.Get(id); ok {
			for _, fn := range h.onResurrected {
				fn(*e)
			}
		}
	}
}
