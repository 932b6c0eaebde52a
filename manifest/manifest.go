// Package manifest loads an environment fixture from JSON: a sorts/terms
// declaration in lieu of a real surface-syntax elaborator (out of scope
// per spec.md's Non-goals), used by the CLI and tests to populate an
// env.Environment without hand-writing Go construction code.
package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"

	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/ident"
)

//go:embed schema.json
var schemaFS embed.FS

var compiledSchema *jsonschema.Schema

func init() {
	data, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		panic(err)
	}
	s, err := c.Compile("schema.json")
	if err != nil {
		panic(err)
	}
	compiledSchema = s
}

// MinFormatVersion is the oldest fixture formatVersion this build accepts.
// A fixture whose major version differs, or whose version sorts below
// this one, is rejected rather than silently misread.
const MinFormatVersion = "v1.0.0"

// ArgDoc is one formal parameter of a term, as written in a fixture.
type ArgDoc struct {
	Name  string   `json:"name,omitempty"`
	Sort  string   `json:"sort"`
	Bound bool     `json:"bound,omitempty"`
	Deps  []string `json:"deps,omitempty"`
}

// SortDoc is one sort declaration, as written in a fixture.
type SortDoc struct {
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// TermDoc is one term declaration, as written in a fixture.
type TermDoc struct {
	Name string   `json:"name"`
	Args []ArgDoc `json:"args,omitempty"`
	Ret  string   `json:"ret"`
	Def  *ExprDoc `json:"def,omitempty"`
}

// ExprDoc is one node of a term's definition body, as written in a
// fixture: a reference to one of the term's own named parameters, a
// fresh dummy variable of a given sort, or an application of an
// already-declared term to further ExprDocs. Exactly one of Param,
// Dummy, App is set, enforced by the embedded schema's oneOf.
type ExprDoc struct {
	Param string  `json:"param,omitempty"`
	Dummy string  `json:"dummy,omitempty"`
	App   *AppDoc `json:"app,omitempty"`
}

// AppDoc is the application case of ExprDoc: a term name applied to
// argument expressions.
type AppDoc struct {
	Term string    `json:"term"`
	Args []ExprDoc `json:"args"`
}

// Doc is a parsed, schema-validated, version-checked fixture, not yet
// resolved against an Environment (sort/term names are still strings).
type Doc struct {
	FormatVersion string    `json:"formatVersion"`
	Sorts         []SortDoc `json:"sorts,omitempty"`
	Terms         []TermDoc `json:"terms,omitempty"`
}

// Load validates data against the embedded schema and decodes it,
// rejecting an unparseable or unsupported formatVersion.
func Load(data []byte) (*Doc, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON: %w", err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("manifest: schema validation failed: %w", err)
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if !semver.IsValid(doc.FormatVersion) {
		return nil, fmt.Errorf("manifest: invalid formatVersion %q", doc.FormatVersion)
	}
	if semver.Major(doc.FormatVersion) != semver.Major(MinFormatVersion) {
		return nil, fmt.Errorf("manifest: formatVersion %q is a different major version than supported %q", doc.FormatVersion, MinFormatVersion)
	}
	if semver.Compare(doc.FormatVersion, MinFormatVersion) < 0 {
		return nil, fmt.Errorf("manifest: formatVersion %q is older than minimum supported %q", doc.FormatVersion, MinFormatVersion)
	}
	return &doc, nil
}

var modifierBits = map[string]ident.Modifiers{
	"pure":     ident.Pure,
	"strict":   ident.Strict,
	"provable": ident.Provable,
	"free":     ident.Free,
}

func parseModifiers(names []string) (ident.Modifiers, error) {
	var m ident.Modifiers
	for _, n := range names {
		bit, ok := modifierBits[n]
		if !ok {
			return 0, fmt.Errorf("manifest: unknown sort modifier %q", n)
		}
		m |= bit
	}
	return m, nil
}

// Apply admits every sort and term in d into e, in fixture order, using
// file as the provenance for every declaration's span (fixtures carry no
// finer-grained source position, so each declaration's "span" is its
// index within the fixture).
func Apply(d *Doc, e *env.Environment, file string) error {
	for i, s := range d.Sorts {
		mods, err := parseModifiers(s.Modifiers)
		if err != nil {
			return err
		}
		if _, err := e.AddSort(s.Name, ident.Span{File: file, Start: i, End: i + 1}, mods); err != nil {
			return err
		}
	}
	for i, tm := range d.Terms {
		args, ret, err := resolveSignature(e, tm)
		if err != nil {
			return err
		}
		var def *env.ExprNode
		if tm.Def != nil {
			def, err = resolveExpr(e, tm, tm.Def)
			if err != nil {
				return err
			}
		}
		span := ident.Span{File: file, Start: len(d.Sorts) + i, End: len(d.Sorts) + i + 1}
		if _, err := e.AddTerm(tm.Name, span, func() env.TermRecord {
			return env.TermRecord{Args: args, Ret: ret, Def: def}
		}); err != nil {
			return err
		}
	}
	return nil
}

// resolveExpr resolves one definition-body node against tm's own
// parameter list (for Param) and e's declared sorts/terms (for Dummy
// and App), building the ExprNode DAG spec.md §3/§6 calls for.
func resolveExpr(e *env.Environment, tm TermDoc, doc *ExprDoc) (*env.ExprNode, error) {
	switch {
	case doc.Param != "":
		for i, a := range tm.Args {
			if a.Name == doc.Param {
				return env.Param(i), nil
			}
		}
		return nil, fmt.Errorf("manifest: term %q: def references unknown parameter %q", tm.Name, doc.Param)
	case doc.Dummy != "":
		sid, ok := e.LookupSort(doc.Dummy)
		if !ok {
			return nil, fmt.Errorf("manifest: term %q: def dummy references unknown sort %q", tm.Name, doc.Dummy)
		}
		return env.Dummy(sid), nil
	case doc.App != nil:
		tid, ok := e.LookupTerm(doc.App.Term)
		if !ok {
			return nil, fmt.Errorf("manifest: term %q: def references unknown term %q", tm.Name, doc.App.Term)
		}
		args := make([]*env.ExprNode, len(doc.App.Args))
		for i := range doc.App.Args {
			a, err := resolveExpr(e, tm, &doc.App.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return env.App(tid, args), nil
	default:
		return nil, fmt.Errorf("manifest: term %q: def node has none of param/dummy/app set", tm.Name)
	}
}

func resolveSignature(e *env.Environment, tm TermDoc) ([]env.Arg, env.Type, error) {
	args := make([]env.Arg, len(tm.Args))
	for i, a := range tm.Args {
		sid, ok := e.LookupSort(a.Sort)
		if !ok {
			return nil, env.Type{}, fmt.Errorf("manifest: term %q: unknown sort %q", tm.Name, a.Sort)
		}
		typ := env.Type{Sort: sid}
		if a.Bound {
			typ.Kind = env.TypeBound
		} else {
			typ.Kind = env.TypeReg
			typ.Deps = depsMask(tm.Args, a.Deps)
		}
		args[i] = env.Arg{Name: a.Name, Type: typ}
	}
	retID, ok := e.LookupSort(tm.Ret)
	if !ok {
		return nil, env.Type{}, fmt.Errorf("manifest: term %q: unknown return sort %q", tm.Name, tm.Ret)
	}
	return args, env.Type{Kind: env.TypeReg, Sort: retID}, nil
}

// depsMask turns a regular argument's named dependency list into the
// bound-variable bitmask the wire format expects (§6), bit i set means
// "depends on the i'th bound argument in this term's own parameter list".
func depsMask(all []ArgDoc, deps []string) uint64 {
	var mask uint64
	boundIdx := 0
	positions := make(map[string]int, len(all))
	for _, a := range all {
		if a.Bound {
			positions[a.Name] = boundIdx
			boundIdx++
		}
	}
	for _, d := range deps {
		if pos, ok := positions[d]; ok {
			mask |= 1 << uint(pos)
		}
	}
	return mask
}
