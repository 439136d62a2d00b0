package elements

import (
	"sort"
	"sync"
)

// Schema declares the known attribute keys for one element type. Incoming
// records are checked against it on ingest: unknown keys are dropped, not
// rejected, because source files routinely carry trade-specific extras
// that the tracked content should not accumulate.
type Schema struct {
	Type Type
	keys map[string]struct{}
}

// NewSchema creates a schema for the given type with the declared keys.
func NewSchema(t Type, keys ...string) *Schema {
	s := &Schema{
		Type: t,
		keys: make(map[string]struct{}, len(keys)),
	}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Knows reports whether the key is declared in the schema.
func (s *Schema) Knows(key string) bool {
	_, found := s.keys[key]
	return found
}

// Keys returns the declared keys in sorted order.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown returns the element's attribute keys not declared in the schema,
// in sorted order.
func (s *Schema) Unknown(e *Element) []string {
	var unknown []string
	for k := range e.Attributes {
		if !s.Knows(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Schemas is a thread-safe registry of attribute schemas keyed by element
// type.
type Schemas struct {
	mu      sync.RWMutex
	schemas map[Type]*Schema
}

// NewSchemas creates an empty schema registry.
func NewSchemas() *Schemas {
	return &Schemas{
		schemas: make(map[Type]*Schema),
	}
}

// DefaultSchemas returns a registry with the attribute keys the IFC
// extractor emits for each supported entity.
func DefaultSchemas() *Schemas {
	s := NewSchemas()
	s.Register(NewSchema(VirtualElement,
		"ObjectType", "Tag",
	))
	s.Register(NewSchema(BuildingElementProxy,
		"ObjectType", "Tag", "PredefinedType",
	))
	return s
}

// Register adds or replaces the schema for its type.
func (s *Schemas) Register(schema *Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[schema.Type] = schema
}

// Get returns the schema for the given type.
func (s *Schemas) Get(t Type) (*Schema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, found := s.schemas[t]
	return schema, found
}
