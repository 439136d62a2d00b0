package ifc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/errors"
)

// timestampLayouts are the FILE_NAME timestamp shapes seen in the wild.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeFile decodes the STEP file at path.
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

// Decode parses a STEP physical file. Entities with unrecognized
// keywords are kept verbatim; malformed statements fail the decode.
func Decode(r io.Reader) (*File, error) {
	return decode(r, "")
}

func decode(r io.Reader, name string) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}

	file := &File{
		raw:      raw,
		entities: make(map[int64]*Entity),
	}
	d := &decoder{src: raw, file: name, line: 1}

	first, err := d.statement()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(first, "ISO-10303-21") {
		return nil, d.errf("missing ISO-10303-21 marker")
	}

	section := ""
	for {
		stmt, err := d.statement()
		if err != nil {
			return nil, err
		}
		if stmt == "" {
			return nil, d.errf("missing END-ISO-10303-21 marker")
		}

		switch {
		case stmt == "HEADER" || stmt == "DATA":
			section = stmt
		case stmt == "ENDSEC":
			section = ""
		case strings.HasPrefix(stmt, "END-ISO-10303-21"):
			return file, nil
		case section == "HEADER":
			if err := file.headerStatement(d, stmt); err != nil {
				return nil, err
			}
		case section == "DATA":
			if err := file.dataStatement(d, stmt); err != nil {
				return nil, err
			}
		}
	}
}

// headerStatement parses one HEADER section statement.
func (f *File) headerStatement(d *decoder, stmt string) error {
	keyword, params, err := splitStatement(d, stmt)
	if err != nil {
		return err
	}

	at := func(i int) Param {
		if i < len(params) {
			return params[i]
		}
		return Param{Kind: KindNull}
	}

	switch keyword {
	case "FILE_SCHEMA":
		// FILE_SCHEMA(('IFC4'));
		if list := at(0); list.Kind == KindList && len(list.List) > 0 {
			f.Header.Schema = list.List[0].String()
		}
	case "FILE_NAME":
		// FILE_NAME(name, timestamp, author, organization,
		//           preprocessor, originating, authorization);
		f.Header.Name = at(0).String()
		if ts := at(1).String(); ts != "" {
			for _, layout := range timestampLayouts {
				if t, perr := time.Parse(layout, ts); perr == nil {
					f.Header.Timestamp = utc.Time{Time: t.UTC()}
					break
				}
			}
		}
		f.Header.Preprocessor = at(4).String()
		f.Header.Originating = at(5).String()
	}
	return nil
}

// dataStatement parses one DATA section statement, #id=KEYWORD(...).
func (f *File) dataStatement(d *decoder, stmt string) error {
	if !strings.HasPrefix(stmt, "#") {
		return d.errf("data statement does not start with an instance ID")
	}
	eq := strings.IndexByte(stmt, '=')
	if eq < 0 {
		return d.errf("data statement has no '='")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(stmt[1:eq]), 10, 64)
	if err != nil || id <= 0 {
		return d.errf("invalid instance ID %q", stmt[1:eq])
	}
	if _, dup := f.entities[id]; dup {
		return d.errf("duplicate instance ID #%d", id)
	}

	keyword, params, err := splitStatement(d, strings.TrimSpace(stmt[eq+1:]))
	if err != nil {
		return err
	}

	f.entities[id] = &Entity{ID: id, Type: keyword, Params: params}
	f.order = append(f.order, id)
	if id > f.maxID {
		f.maxID = id
	}
	return nil
}

// decoder walks the raw bytes statement by statement.
type decoder struct {
	src  []byte
	pos  int
	line int
	file string
}

func (d *decoder) errf(format string, args ...any) error {
	return &errors.ParseError{
		Format:  "step",
		File:    d.file,
		Line:    d.line,
		Message: fmt.Sprintf(format, args...),
	}
}

// statement returns the next `;`-terminated statement with surrounding
// whitespace and comments stripped, or "" at end of input. A quote
// suspends the terminator; STEP escapes quotes by doubling, which two
// single toggles handle naturally.
func (d *decoder) statement() (string, error) {
	d.skipSpace()
	if d.pos >= len(d.src) {
		return "", nil
	}

	var b strings.Builder
	inString := false
	for d.pos < len(d.src) {
		if b.Len() > constants.MaxScanTokenSize {
			return "", d.errf("statement exceeds %d bytes", constants.MaxScanTokenSize)
		}
		c := d.src[d.pos]
		if c == '\n' {
			d.line++
		}

		if inString {
			b.WriteByte(c)
			d.pos++
			if c == '\'' {
				inString = false
			}
			continue
		}

		switch c {
		case '\'':
			inString = true
			b.WriteByte(c)
			d.pos++
		case ';':
			d.pos++
			return strings.TrimSpace(b.String()), nil
		case '/':
			if d.pos+1 < len(d.src) && d.src[d.pos+1] == '*' {
				d.skipComment()
				continue
			}
			b.WriteByte(c)
			d.pos++
		default:
			b.WriteByte(c)
			d.pos++
		}
	}
	return "", d.errf("unterminated statement")
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ' ', '\t', '\r':
			d.pos++
		case '\n':
			d.line++
			d.pos++
		case '/':
			if d.pos+1 < len(d.src) && d.src[d.pos+1] == '*' {
				d.skipComment()
				continue
			}
			return
		default:
			return
		}
	}
}

func (d *decoder) skipComment() {
	d.pos += 2
	for d.pos < len(d.src) {
		if d.src[d.pos] == '\n' {
			d.line++
		}
		if d.src[d.pos] == '*' && d.pos+1 < len(d.src) && d.src[d.pos+1] == '/' {
			d.pos += 2
			return
		}
		d.pos++
	}
}

// splitStatement splits `KEYWORD(params)` into its keyword and parsed
// parameter list.
func splitStatement(d *decoder, stmt string) (string, []Param, error) {
	open := strings.IndexByte(stmt, '(')
	if open < 0 || !strings.HasSuffix(stmt, ")") {
		return "", nil, d.errf("malformed statement %q", truncate(stmt, 40))
	}
	keyword := strings.ToUpper(strings.TrimSpace(stmt[:open]))

	p := &paramParser{d: d, s: stmt[open+1 : len(stmt)-1]}
	params, err := p.list()
	if err != nil {
		return "", nil, err
	}
	return keyword, params, nil
}

// paramParser is a recursive-descent parser over one parameter string.
type paramParser struct {
	d *decoder
	s string
	i int
}

// list parses comma-separated parameters until the end of input.
func (p *paramParser) list() ([]Param, error) {
	var params []Param
	p.skipSpace()
	if p.i >= len(p.s) {
		return params, nil
	}
	for {
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, param)

		p.skipSpace()
		if p.i >= len(p.s) {
			return params, nil
		}
		if p.s[p.i] != ',' {
			return nil, p.d.errf("expected ',' in parameter list at %q", truncate(p.s[p.i:], 20))
		}
		p.i++
	}
}

func (p *paramParser) param() (Param, error) {
	p.skipSpace()
	if p.i >= len(p.s) {
		return Param{}, p.d.errf("unexpected end of parameter list")
	}

	switch c := p.s[p.i]; {
	case c == '$':
		p.i++
		return Param{Kind: KindNull}, nil
	case c == '*':
		p.i++
		return Param{Kind: KindDerived}, nil
	case c == '\'':
		return p.stringParam()
	case c == '#':
		return p.refParam()
	case c == '(':
		return p.listParam()
	case c == '.':
		return p.enumParam()
	default:
		return p.rawParam()
	}
}

// stringParam decodes a quoted STEP string; '' unescapes to '.
func (p *paramParser) stringParam() (Param, error) {
	p.i++ // opening quote
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == '\'' {
			if p.i+1 < len(p.s) && p.s[p.i+1] == '\'' {
				b.WriteByte('\'')
				p.i += 2
				continue
			}
			p.i++
			return Param{Kind: KindString, Str: b.String()}, nil
		}
		b.WriteByte(c)
		p.i++
	}
	return Param{}, p.d.errf("unterminated string")
}

func (p *paramParser) refParam() (Param, error) {
	p.i++ // '#'
	start := p.i
	for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
		p.i++
	}
	id, err := strconv.ParseInt(p.s[start:p.i], 10, 64)
	if err != nil {
		return Param{}, p.d.errf("invalid instance reference")
	}
	return Param{Kind: KindRef, Ref: id}, nil
}

func (p *paramParser) listParam() (Param, error) {
	// Find the matching close paren, respecting nesting and strings.
	depth := 0
	inString := false
	start := p.i + 1
	for j := p.i; j < len(p.s); j++ {
		c := p.s[j]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				inner := &paramParser{d: p.d, s: p.s[start:j]}
				params, err := inner.list()
				if err != nil {
					return Param{}, err
				}
				p.i = j + 1
				return Param{Kind: KindList, List: params}, nil
			}
		}
	}
	return Param{}, p.d.errf("unbalanced parentheses")
}

func (p *paramParser) enumParam() (Param, error) {
	end := strings.IndexByte(p.s[p.i+1:], '.')
	if end < 0 {
		return Param{}, p.d.errf("unterminated enumeration literal")
	}
	val := p.s[p.i+1 : p.i+1+end]
	p.i += end + 2
	return Param{Kind: KindEnum, Str: val}, nil
}

// rawParam covers numbers and typed values like IFCLABEL('x'). The
// token runs to the next top-level comma.
func (p *paramParser) rawParam() (Param, error) {
	depth := 0
	inString := false
	start := p.i
	for ; p.i < len(p.s); p.i++ {
		c := p.s[p.i]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return Param{}, p.d.errf("unbalanced parentheses in value")
			}
			depth--
		case ',':
			if depth == 0 {
				return Param{Kind: KindRaw, Str: strings.TrimSpace(p.s[start:p.i])}, nil
			}
		}
	}
	return Param{Kind: KindRaw, Str: strings.TrimSpace(p.s[start:p.i])}, nil
}

func (p *paramParser) skipSpace() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\r', '\n':
			p.i++
		default:
			return
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
