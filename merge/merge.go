// Package merge implements environment union (§4.4): replaying a
// secondary environment's statement trace into a primary one, building
// the identifier renumbering this produces, and folding the secondary's
// notation/coercion registry and atom dictionary into the primary's.
package merge

import (
	"github.com/mm0-org/mmb/diag"
	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/ident"
	"github.com/mm0-org/mmb/remap"
)

// Result is the outcome of merging a secondary environment into a
// primary one: the identifier renumbering the replay produced, the atom
// table's by-name translation, and every recoverable diagnostic raised
// along the way.
type Result struct {
	Remapper    *remap.Remapper
	AtomMap     map[ident.AtomId]ident.AtomId
	Diagnostics diag.List
}

// Merge replays secondary's statement trace into primary in order,
// admitting each sort/term/theorem and recording the renumbering this
// produces. Fatal conditions (cross-kind redeclaration, table overflow)
// abort the merge and return an error; recoverable conflicts (same-kind
// redeclaration at a differing span, incompatible notation, coercion
// cycle/diamond/provable-diamond) are pushed onto Result.Diagnostics and
// do not stop the replay (§7).
func Merge(primary, secondary *env.Environment) (*Result, error) {
	res := &Result{Remapper: remap.New()}

	for _, stmt := range secondary.Stmts {
		var err error
		switch stmt.Kind {
		case env.StmtSort:
			err = mergeSort(primary, secondary, stmt.Name, res)
		case env.StmtDecl:
			err = mergeDecl(primary, secondary, stmt.Name, res)
		}
		if err != nil {
			return res, err
		}
	}

	primary.Notation.Merge(secondary.Notation, primary, res.Remapper, &res.Diagnostics)
	res.AtomMap = mergeAtoms(primary, secondary)

	return res, nil
}

func mergeSort(primary, secondary *env.Environment, name string, res *Result) error {
	secID, ok := secondary.LookupSort(name)
	if !ok {
		return nil
	}
	sec := secondary.Sorts.Get(secID)

	newID, err := primary.AddSort(name, sec.Span, sec.Mods)
	if err != nil {
		if re, ok := asRecoverableRedeclaration(err); ok {
			res.Diagnostics.Push(diag.Diagnostic{Message: re.Error()})
			if existingID, ok := primary.LookupSort(name); ok {
				res.Remapper.SetSort(secID, existingID)
			}
			return nil
		}
		return err
	}
	if newID != secID {
		res.Remapper.SetSort(secID, newID)
	}
	return nil
}

func mergeDecl(primary, secondary *env.Environment, name string, res *Result) error {
	if secID, ok := secondary.LookupTerm(name); ok {
		return mergeTerm(primary, secondary, name, secID, res)
	}
	if secID, ok := secondary.LookupThm(name); ok {
		return mergeThm(primary, secondary, name, secID, res)
	}
	return nil
}

func mergeTerm(primary, secondary *env.Environment, name string, secID ident.TermId, res *Result) error {
	sec := secondary.Terms.Get(secID)

	newID, err := primary.AddTerm(name, sec.Span, func() env.TermRecord {
		return sec.Remap(res.Remapper)
	})
	if err != nil {
		if re, ok := asRecoverableRedeclaration(err); ok {
			res.Diagnostics.Push(diag.Diagnostic{Message: re.Error()})
			if existingID, ok := primary.LookupTerm(name); ok {
				res.Remapper.SetTerm(secID, existingID)
			}
			return nil
		}
		return err
	}
	if newID != secID {
		res.Remapper.SetTerm(secID, newID)
	}
	return nil
}

func mergeThm(primary, secondary *env.Environment, name string, secID ident.ThmId, res *Result) error {
	sec := secondary.Thms.Get(secID)

	newID, err := primary.AddThm(name, sec.Span, func() env.TheoremRecord {
		return sec.Remap(res.Remapper)
	})
	if err != nil {
		if re, ok := asRecoverableRedeclaration(err); ok {
			res.Diagnostics.Push(diag.Diagnostic{Message: re.Error()})
			if existingID, ok := primary.LookupThm(name); ok {
				res.Remapper.SetThm(secID, existingID)
			}
			return nil
		}
		return err
	}
	if newID != secID {
		res.Remapper.SetThm(secID, newID)
	}
	return nil
}

// asRecoverableRedeclaration reports whether err is a same-kind
// RedeclarationError (recoverable here) as opposed to a cross-kind one
// (always fatal, §7).
func asRecoverableRedeclaration(err error) (*env.RedeclarationError, bool) {
	re, ok := err.(*env.RedeclarationError)
	if !ok || re.CrossKind {
		return nil, false
	}
	return re, true
}

// mergeAtoms folds every atom secondary interned into primary's
// dictionary, insert-or-return by name, and returns the id translation
// this produced.
func mergeAtoms(primary, secondary *env.Environment) map[ident.AtomId]ident.AtomId {
	out := make(map[ident.AtomId]ident.AtomId, secondary.Atoms.Len())
	for i, name := range secondary.Atoms.All() {
		out[ident.AtomId(i)] = primary.Intern(name)
	}
	return out
}
