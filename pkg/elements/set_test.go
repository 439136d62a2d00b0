package elements

import (
	"sync"
	"testing"
)

func TestSetGetReturnsCopy(t *testing.T) {
	s := NewSet()
	e := testElement("G1")
	s.Set(&e)

	got, found := s.Get("G1")
	if !found {
		t.Fatal("expected G1 to be present")
	}
	got.Attributes["ObjectType"] = "mutated"

	again, _ := s.Get("G1")
	if again.Attributes["ObjectType"] != "ProvisionForVoid" {
		t.Error("mutating a returned element must not affect the set")
	}
}

func TestSetReplaceByID(t *testing.T) {
	s := NewSet()
	a := testElement("G1")
	s.Set(&a)

	b := testElement("G1")
	b.Name = "renamed"
	s.Set(&b)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	got, _ := s.Get("G1")
	if got.Name != "renamed" {
		t.Error("Set should replace the record with the same GlobalID")
	}
}

func TestSetListSorted(t *testing.T) {
	s := NewSetOf(testElement("G3"), testElement("G1"), testElement("G2"))

	ids := s.IDs()
	want := []string{"G1", "G2", "G3"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}

	list := s.List()
	if len(list) != 3 || list[0].GlobalID != "G1" || list[2].GlobalID != "G3" {
		t.Errorf("List() not sorted by GlobalID: %v", ids)
	}
}

func TestSetLive(t *testing.T) {
	a := testElement("G1")
	a.Status = StatusDeleted
	b := testElement("G2")
	b.Status = StatusNew
	c := testElement("G3")
	c.Status = StatusActive

	live := NewSetOf(a, b, c).Live()
	if live.Len() != 2 || live.Has("G1") {
		t.Errorf("Live() = %v, want [G2 G3]", live.IDs())
	}
}

func TestSetAttributeSuperset(t *testing.T) {
	a := testElement("G1")
	a.Attributes = map[string]string{"ObjectType": "x", "Tag": "t"}
	b := testElement("G2")
	b.Attributes = map[string]string{"ObjectType": "y", "PredefinedType": "p"}

	got := NewSetOf(a, b).AttributeSuperset()
	want := []string{"ObjectType", "PredefinedType", "Tag"}
	if len(got) != len(want) {
		t.Fatalf("AttributeSuperset() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AttributeSuperset() = %v, want %v", got, want)
		}
	}
}

func TestSetConcurrentAccess(t *testing.T) {
	s := NewSet()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e := testElement("G1")
			s.Set(&e)
		}()
		go func() {
			defer wg.Done()
			s.Get("G1")
			s.List()
			s.Len()
		}()
	}
	wg.Wait()
}

func TestSchemasUnknownKeys(t *testing.T) {
	schemas := DefaultSchemas()
	schema, found := schemas.Get(VirtualElement)
	if !found {
		t.Fatal("expected default schema for VirtualElement")
	}

	e := testElement("G1")
	e.Attributes = map[string]string{"ObjectType": "x", "FireRating": "F90"}

	unknown := schema.Unknown(&e)
	if len(unknown) != 1 || unknown[0] != "FireRating" {
		t.Errorf("Unknown() = %v, want [FireRating]", unknown)
	}
}
