package ifc

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// WritebackConfig names the property set and properties written back
// into the IFC file. Zero values fall back to the defaults.
type WritebackConfig struct {
	PsetName        string
	StatusParam     string
	ArchitectParam  string
	StructuralParam string
}

func (c *WritebackConfig) defaults() {
	if c.PsetName == "" {
		c.PsetName = constants.DefaultPsetName
	}
	if c.StatusParam == "" {
		c.StatusParam = constants.DefaultStatusParam
	}
	if c.ArchitectParam == "" {
		c.ArchitectParam = constants.DefaultArchitectParam
	}
	if c.StructuralParam == "" {
		c.StructuralParam = constants.DefaultStructuralParam
	}
}

// WritebackResult reports what a writeback run touched.
type WritebackResult struct {
	// Annotated counts elements that received a property set.
	Annotated int `json:"annotated" yaml:"annotated"`
	// Missing lists tracked elements absent from the file; they are
	// skipped, not an error, since lineages overlap per file.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Writeback annotates the file's tracked elements with a property set
// carrying each element's lifecycle status and approvals, and returns
// the new file bytes. The input file is spliced, not re-encoded, so
// untouched entities survive byte for byte. An element that already
// carries a property set with the configured name fails the run with a
// collision error before anything is written.
func Writeback(f *File, elems []elements.Element, cfg WritebackConfig) ([]byte, *WritebackResult, error) {
	cfg.defaults()

	attached := f.attachedPsets()
	result := &WritebackResult{}

	type target struct {
		entity *Entity
		elem   *elements.Element
	}
	var targets []target
	for i := range elems {
		entity, ok := f.findByGlobalID(elems[i].GlobalID)
		if !ok {
			result.Missing = append(result.Missing, elems[i].GlobalID)
			continue
		}
		if names, clash := attached[entity.ID]; clash {
			for _, name := range names {
				if name == cfg.PsetName {
					return nil, nil, errors.NewCollisionError(cfg.PsetName, f.Header.Name, elems[i].GlobalID)
				}
			}
		}
		targets = append(targets, target{entity: entity, elem: &elems[i]})
	}

	var b strings.Builder
	nextID := f.MaxID()
	next := func() int64 {
		nextID++
		return nextID
	}

	for _, t := range targets {
		owner := "$"
		if ref := t.entity.Param(attrOwnerHistory).RefID(); ref != 0 {
			owner = fmt.Sprintf("#%d", ref)
		}

		props := []struct{ name, value string }{
			{cfg.StatusParam, string(t.elem.Status)},
			{cfg.ArchitectParam, string(t.elem.ApprovalArchitect)},
			{cfg.StructuralParam, string(t.elem.ApprovalStructural)},
		}
		propIDs := make([]string, 0, len(props))
		for _, prop := range props {
			id := next()
			fmt.Fprintf(&b, "#%d=IFCPROPERTYSINGLEVALUE(%s,$,IFCLABEL(%s),$);\n",
				id, quoteString(prop.name), quoteString(prop.value))
			propIDs = append(propIDs, fmt.Sprintf("#%d", id))
		}

		psetID := next()
		fmt.Fprintf(&b, "#%d=IFCPROPERTYSET(%s,%s,%s,$,(%s));\n",
			psetID, quoteString(NewGlobalID()), owner,
			quoteString(cfg.PsetName), strings.Join(propIDs, ","))

		fmt.Fprintf(&b, "#%d=IFCRELDEFINESBYPROPERTIES(%s,%s,$,$,(#%d),#%d);\n",
			next(), quoteString(NewGlobalID()), owner, t.entity.ID, psetID)

		result.Annotated++
	}

	out, err := splice(f.raw, b.String())
	if err != nil {
		return nil, nil, err
	}

	logging.Info().
		Str("pset", cfg.PsetName).
		Int("annotated", result.Annotated).
		Int("missing", len(result.Missing)).
		Msg("writeback complete")
	return out, result, nil
}

// WritebackFile decodes src, annotates it, and writes the result to
// dst. src and dst may not be the same path.
func WritebackFile(src, dst string, elems []elements.Element, cfg WritebackConfig) (*WritebackResult, error) {
	if src == dst {
		return nil, errors.NewValidationError("output", dst, "writeback cannot overwrite its input")
	}
	f, err := DecodeFile(src)
	if err != nil {
		return nil, err
	}
	out, result, err := Writeback(f, elems, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, out, constants.FilePermissions); err != nil {
		return nil, errors.WrapIO("write", dst, err)
	}
	return result, nil
}

// attachedPsets maps element instance IDs to the names of property
// sets already related to them.
func (f *File) attachedPsets() map[int64][]string {
	attached := make(map[int64][]string)
	for _, rel := range f.Entities("IFCRELDEFINESBYPROPERTIES") {
		// IfcRelDefinesByProperties: RelatedObjects(4),
		// RelatingPropertyDefinition(5).
		pset, ok := f.Get(rel.Param(5).RefID())
		if !ok || pset.Type != "IFCPROPERTYSET" {
			continue
		}
		name := pset.Param(attrName).String()
		related := rel.Param(4)
		if related.Kind != KindList {
			continue
		}
		for _, ref := range related.List {
			if id := ref.RefID(); id != 0 {
				attached[id] = append(attached[id], name)
			}
		}
	}
	return attached
}

// splice inserts statements just before the DATA section's ENDSEC.
func splice(raw []byte, statements string) ([]byte, error) {
	if statements == "" {
		return bytes.Clone(raw), nil
	}
	at := bytes.LastIndex(raw, []byte("ENDSEC;"))
	if at < 0 {
		return nil, &errors.ParseError{Format: "step", Message: "no ENDSEC to splice before"}
	}
	out := make([]byte, 0, len(raw)+len(statements))
	out = append(out, raw[:at]...)
	out = append(out, statements...)
	out = append(out, raw[at:]...)
	return out, nil
}

// quoteString encodes a STEP string literal; embedded quotes double.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
