// Package remap implements the identifier-renumbering contract used by the
// merge engine (§4.4): a Remapper translates identifiers from a secondary
// environment's numbering into a primary environment's numbering, and every
// data carrier that mentions identifiers (Type, Expr, ProofNode, TermRecord,
// NotaInfo, Coe, ...) implements a `Remap(*Remapper) T` method that
// structurally clones itself through one, substituting identifiers where the
// Remapper has an entry and leaving them as-is otherwise.
//
// A Remapper lives only for the duration of a single merge call (§3
// Lifecycle) — it is never persisted or reused across merges.
package remap

import "github.com/mm0-org/mmb/ident"

// Remapper holds the three independent identifier translation tables built
// while replaying a secondary environment's statement trace into a primary
// one. Atom translation is scoped separately (§4.4 "Atom and coe references
// go through independent remappers in their own scopes") and lives in the
// merge package next to the atom dictionary it serves.
type Remapper struct {
	sort map[ident.SortId]ident.SortId
	term map[ident.TermId]ident.TermId
	thm  map[ident.ThmId]ident.ThmId
}

// New returns an empty Remapper.
func New() *Remapper {
	return &Remapper{
		sort: make(map[ident.SortId]ident.SortId),
		term: make(map[ident.TermId]ident.TermId),
		thm:  make(map[ident.ThmId]ident.ThmId),
	}
}

// Sort translates id, returning id unchanged if no entry exists (identity
// where absent, per the remap contract).
func (r *Remapper) Sort(id ident.SortId) ident.SortId {
	if v, ok := r.sort[id]; ok {
		return v
	}
	return id
}

// Term translates id, identity where absent.
func (r *Remapper) Term(id ident.TermId) ident.TermId {
	if v, ok := r.term[id]; ok {
		return v
	}
	return id
}

// Thm translates id, identity where absent.
func (r *Remapper) Thm(id ident.ThmId) ident.ThmId {
	if v, ok := r.thm[id]; ok {
		return v
	}
	return id
}

// SetSort records that secondary id `from` now lives at primary id `to`.
func (r *Remapper) SetSort(from, to ident.SortId) { r.sort[from] = to }

// SetTerm records a term renumbering.
func (r *Remapper) SetTerm(from, to ident.TermId) { r.term[from] = to }

// SetThm records a theorem renumbering.
func (r *Remapper) SetThm(from, to ident.ThmId) { r.thm[from] = to }

// SortEntries exposes the raw sort translation table, used by tests that
// check the remapper's contents against S6-style scenarios (§8 property 3).
func (r *Remapper) SortEntries() map[ident.SortId]ident.SortId { return r.sort }

// TermEntries exposes the raw term translation table.
func (r *Remapper) TermEntries() map[ident.TermId]ident.TermId { return r.term }

// ThmEntries exposes the raw theorem translation table.
func (r *Remapper) ThmEntries() map[ident.ThmId]ident.ThmId { return r.thm }
