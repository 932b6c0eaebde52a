package env

import (
	"fmt"

	"github.com/mm0-org/mmb/ident"
	"github.com/mm0-org/mmb/notation"
)

// DeclKind distinguishes which declaration namespace a name belongs to.
// Sorts have their own namespace, entirely separate from terms and
// theorems: a sort and a term may share a name without conflict. Terms
// and theorems share one namespace (the "declaration" namespace), so a
// name may only ever be one or the other; reusing it under the other
// kind is always fatal (§7 "Redeclaration ... fatal across kinds"),
// even where re-declaring it under the *same* kind at the same span is
// the normal idempotent re-admission path.
type DeclKind int

const (
	DeclTerm DeclKind = iota
	DeclThm
)

type declEntry struct {
	Kind DeclKind
	ID   uint32
	Span ident.Span
}

// RedeclarationError reports a name already bound to a different
// declaration. CrossKind marks the always-fatal case of reusing a term
// name for a theorem or vice versa; same-kind redeclaration at a
// differing span is recoverable at merge and fatal at direct admission,
// same as a coercion cycle (§7).
type RedeclarationError struct {
	Name      string
	First     ident.Span
	Second    ident.Span
	CrossKind bool
}

func (e *RedeclarationError) Error() string {
	if e.CrossKind {
		return fmt.Sprintf("%q redeclared under a different kind: first at %s, again at %s", e.Name, e.First, e.Second)
	}
	return fmt.Sprintf("%q redeclared: first at %s, again at %s", e.Name, e.First, e.Second)
}

// OverflowError reports a declaration count exceeding what the wire
// format can represent (§6, §7).
type OverflowError struct {
	Kind  string
	Limit int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s table overflow: limit is %d", e.Kind, e.Limit)
}

// Environment is the full content-addressed declaration set for one
// compilation unit or merge result: sorts, terms, theorems, the
// notation/coercion registry, the scripting atom dictionary, and the
// statement trace recording admission order.
type Environment struct {
	Sorts ident.Table[ident.SortId, Sort]
	Terms ident.Table[ident.TermId, TermRecord]
	Thms  ident.Table[ident.ThmId, TheoremRecord]
	Atoms ident.Table[ident.AtomId, string]

	Notation *notation.Registry

	Stmts []Stmt

	sortNames   map[string]ident.SortId
	names       map[string]declEntry
	atomsByName map[string]ident.AtomId
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{
		Notation:    notation.New(),
		sortNames:   make(map[string]ident.SortId),
		names:       make(map[string]declEntry),
		atomsByName: make(map[string]ident.AtomId),
	}
}

// SortName implements notation.SortInfo.
func (e *Environment) SortName(id ident.SortId) string { return e.Sorts.Get(id).Name }

// SortProvable implements notation.SortInfo.
func (e *Environment) SortProvable(id ident.SortId) bool {
	return e.Sorts.Get(id).Mods.Has(ident.Provable)
}

// AddSort admits a sort declaration. Sorts have their own namespace,
// independent of terms and theorems (a sort may share a name with a
// term or theorem without conflict). Re-admitting the same name at the
// same span is idempotent and returns the existing id; at a different
// span it is a recoverable RedeclarationError.
func (e *Environment) AddSort(name string, span ident.Span, mods ident.Modifiers) (ident.SortId, error) {
	if prevID, ok := e.sortNames[name]; ok {
		prevSpan := e.Sorts.Get(prevID).Span
		if prevSpan.Equal(span) {
			return prevID, nil
		}
		return 0, &RedeclarationError{Name: name, First: prevSpan, Second: span}
	}
	if e.Sorts.Len() >= ident.MaxSorts {
		return 0, &OverflowError{Kind: "sort", Limit: ident.MaxSorts}
	}
	id := e.Sorts.Push(Sort{Span: span, Name: name, Mods: mods})
	e.sortNames[name] = id
	e.Stmts = append(e.Stmts, Stmt{Kind: StmtSort, Name: name})
	return id, nil
}

// AddTerm admits a term declaration. build is only invoked when name is
// not already bound, so constructing the term's full expression DAG is
// deferred until admission is known to be new (the "lazy builder"
// discipline of §4.2's idempotent-admission path).
func (e *Environment) AddTerm(name string, span ident.Span, build func() TermRecord) (ident.TermId, error) {
	if prev, ok := e.names[name]; ok {
		if prev.Kind != DeclTerm {
			return 0, &RedeclarationError{Name: name, First: prev.Span, Second: span, CrossKind: true}
		}
		if prev.Span.Equal(span) {
			return ident.TermId(prev.ID), nil
		}
		return 0, &RedeclarationError{Name: name, First: prev.Span, Second: span}
	}
	rec := build()
	rec.Span = span
	rec.Name = name
	id := e.Terms.Push(rec)
	e.names[name] = declEntry{Kind: DeclTerm, ID: uint32(id), Span: span}
	e.Stmts = append(e.Stmts, Stmt{Kind: StmtDecl, Name: name})
	return id, nil
}

// AddThm admits a theorem declaration with the same lazy-builder and
// idempotent-admission discipline as AddTerm.
func (e *Environment) AddThm(name string, span ident.Span, build func() TheoremRecord) (ident.ThmId, error) {
	if prev, ok := e.names[name]; ok {
		if prev.Kind != DeclThm {
			return 0, &RedeclarationError{Name: name, First: prev.Span, Second: span, CrossKind: true}
		}
		if prev.Span.Equal(span) {
			return ident.ThmId(prev.ID), nil
		}
		return 0, &RedeclarationError{Name: name, First: prev.Span, Second: span}
	}
	rec := build()
	rec.Span = span
	rec.Name = name
	id := e.Thms.Push(rec)
	e.names[name] = declEntry{Kind: DeclThm, ID: uint32(id), Span: span}
	e.Stmts = append(e.Stmts, Stmt{Kind: StmtDecl, Name: name})
	return id, nil
}

// LookupSort returns the id bound to name, if any. Sorts live in their
// own namespace, separate from terms/theorems, so this never consults
// e.names.
func (e *Environment) LookupSort(name string) (ident.SortId, bool) {
	id, ok := e.sortNames[name]
	return id, ok
}

// LookupTerm returns the id bound to name, if any.
func (e *Environment) LookupTerm(name string) (ident.TermId, bool) {
	d, ok := e.names[name]
	if !ok || d.Kind != DeclTerm {
		return 0, false
	}
	return ident.TermId(d.ID), true
}

// LookupThm returns the id bound to name, if any.
func (e *Environment) LookupThm(name string) (ident.ThmId, bool) {
	d, ok := e.names[name]
	if !ok || d.Kind != DeclThm {
		return 0, false
	}
	return ident.ThmId(d.ID), true
}

// Names returns every bound declaration name across both namespaces
// (sorts, and the shared term/theorem namespace), in a form usable as
// diag.Suggest's candidate list.
func (e *Environment) Names() []string {
	out := make([]string, 0, len(e.names)+len(e.sortNames))
	for n := range e.names {
		out = append(out, n)
	}
	for n := range e.sortNames {
		out = append(out, n)
	}
	return out
}

// Intern returns the AtomId for name, inserting it if this is the first
// occurrence (insert-or-return, §4.4's atom dictionary discipline).
func (e *Environment) Intern(name string) ident.AtomId {
	if id, ok := e.atomsByName[name]; ok {
		return id
	}
	id := e.Atoms.Push(name)
	e.atomsByName[name] = id
	return id
}
