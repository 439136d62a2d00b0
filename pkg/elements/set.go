package elements

import (
	"sort"
	"sync"
)

// Set is a thread-safe container of element records keyed by GlobalID.
// It holds the full tracked population across element types and lineages;
// callers narrow it with Filter or Live as needed.
type Set struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{
		elements: make(map[string]*Element),
	}
}

// NewSetOf creates a Set holding copies of the given elements. Later
// duplicates of the same GlobalID replace earlier ones.
func NewSetOf(elems ...Element) *Set {
	s := NewSet()
	for i := range elems {
		s.Set(&elems[i])
	}
	return s
}

// Get returns a copy of the element with the given GlobalID.
func (s *Set) Get(globalID string) (*Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.elements[globalID]
	if !found {
		return nil, false
	}
	return e.Clone(), true
}

// Set stores a copy of the element, replacing any record with the same
// GlobalID.
func (s *Set) Set(e *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[e.GlobalID] = e.Clone()
}

// Delete removes the element with the given GlobalID.
func (s *Set) Delete(globalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, globalID)
}

// Has reports whether an element with the given GlobalID is present.
func (s *Set) Has(globalID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.elements[globalID]
	return found
}

// Len returns the number of elements in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// List returns copies of all elements sorted by GlobalID.
func (s *Set) List() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Element, 0, len(s.elements))
	for _, e := range s.elements {
		list = append(list, *e.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].GlobalID < list[j].GlobalID
	})
	return list
}

// IDs returns all GlobalIDs in sorted order.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.elements))
	for id := range s.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns a new Set holding the elements for which keep returns true.
func (s *Set) Filter(keep func(*Element) bool) *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := NewSet()
	for _, e := range s.elements {
		if keep(e) {
			filtered.elements[e.GlobalID] = e.Clone()
		}
	}
	return filtered
}

// Live returns a new Set holding only records with a live status
// (new or active).
func (s *Set) Live() *Set {
	return s.Filter(func(e *Element) bool {
		return e.Status.Live()
	})
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return s.Filter(func(*Element) bool { return true })
}

// AttributeSuperset returns the sorted union of attribute keys across all
// elements in the set. Exports use this to build a stable column layout.
func (s *Set) AttributeSuperset() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[string]struct{})
	for _, e := range s.elements {
		for k := range e.Attributes {
			keys[k] = struct{}{}
		}
	}
	union := make([]string, 0, len(keys))
	for k := range keys {
		union = append(union, k)
	}
	sort.Strings(union)
	return union
}
