package ifc

import (
	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/pkg/elements"
)

// Info summarizes a decoded file for listings and log lines.
type Info struct {
	Schema     string                `json:"schema"     yaml:"schema"`
	Name       string                `json:"name"       yaml:"name"`
	Timestamp  utc.Time              `json:"timestamp"  yaml:"timestamp"`
	Statements int                   `json:"statements" yaml:"statements"`
	Tracked    map[elements.Type]int `json:"tracked"    yaml:"tracked"`
}

// Info summarizes the file: header metadata, total statement count, and
// how many tracked elements of each type it carries.
func (f *File) Info() *Info {
	info := &Info{
		Schema:     f.Header.Schema,
		Name:       f.Header.Name,
		Timestamp:  f.Header.Timestamp,
		Statements: f.Len(),
		Tracked:    make(map[elements.Type]int, len(elements.Types())),
	}
	for _, typ := range elements.Types() {
		info.Tracked[typ] = len(f.Entities(typ.Entity()))
	}
	return info
}
