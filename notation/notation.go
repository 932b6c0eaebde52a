// Package notation implements the notation & coercion registry (§4.3):
// delimiters, constants, prefix/infix tables, associativity, and the
// coercion graph with transitive closure and provable-projection tracking.
package notation

import (
	"fmt"
	"sort"

	"github.com/mm0-org/mmb/ident"
	"github.com/mm0-org/mmb/remap"
)

// Prec is a notation precedence level.
type Prec uint32

// LiteralKind distinguishes the two kinds of notation literal.
type LiteralKind int

const (
	LitVar LiteralKind = iota
	LitConst
)

// Literal is one token of a prefix/infix notation's literal sequence:
// either a positional argument slot with a binding precedence, or a fixed
// constant token.
type Literal struct {
	Kind  LiteralKind
	Pos   int    // valid when Kind == LitVar
	Prec  Prec   // valid when Kind == LitVar
	Const string // valid when Kind == LitConst
}

// Assoc is the tri-state associativity of a notation: unset, left, or right.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

// NotaInfo describes one declared prefix or infix notation.
type NotaInfo struct {
	Span       ident.Span
	Term       ident.TermId
	NArgs      int
	RightAssoc Assoc
	Literals   []Literal
}

// Remap structurally clones n, substituting n.Term through r.
func (n NotaInfo) Remap(r *remap.Remapper) NotaInfo {
	out := n
	out.Term = r.Term(n.Term)
	out.Literals = append([]Literal(nil), n.Literals...)
	return out
}

// SortInfo is the subset of the environment's sort table the registry needs
// in order to render diagnostics and check provability, kept as an
// interface so this package never imports the environment package.
type SortInfo interface {
	SortName(ident.SortId) string
	SortProvable(ident.SortId) bool
}

// IncompatibleError reports two conflicting declarations of the same
// notation/precedence/associativity key (§7 "Incompatible notation").
type IncompatibleError struct {
	Key    string
	First  ident.Span
	Second ident.Span
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("%q declared incompatibly at %s and %s", e.Key, e.First, e.Second)
}

type constEntry struct {
	Span ident.Span
	Prec Prec
}

type precEntry struct {
	Span  ident.Span
	Right bool
}

// Registry is the merged notation/coercion environment for a single
// Environment (the "pe" / ParserEnv of the original design).
type Registry struct {
	DelimsL, DelimsR ident.Delims

	consts    map[string]constEntry
	precAssoc map[uint32]precEntry
	prefixes  map[string]NotaInfo
	infixes   map[string]NotaInfo

	coes    map[ident.SortId]map[ident.SortId]*Coe
	coeProv map[ident.SortId]ident.SortId
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		consts:    make(map[string]constEntry),
		precAssoc: make(map[uint32]precEntry),
		prefixes:  make(map[string]NotaInfo),
		infixes:   make(map[string]NotaInfo),
		coes:      make(map[ident.SortId]map[ident.SortId]*Coe),
		coeProv:   make(map[ident.SortId]ident.SortId),
	}
}

// AddDelimiters ORs ls/rs into the left/right delimiter bit-sets.
func (reg *Registry) AddDelimiters(ls, rs []byte) {
	for _, c := range ls {
		reg.DelimsL.Set(c)
	}
	for _, c := range rs {
		reg.DelimsR.Set(c)
	}
}

// AddConst inserts token -> (span, prec). A second insert at equal prec is
// idempotent; differing prec raises IncompatibleError.
func (reg *Registry) AddConst(token string, span ident.Span, prec Prec) error {
	if e, ok := reg.consts[token]; ok {
		if e.Prec == prec {
			return nil
		}
		return &IncompatibleError{Key: token, First: e.Span, Second: span}
	}
	reg.consts[token] = constEntry{Span: span, Prec: prec}
	return nil
}

// AddPrecAssoc records the associativity declared for a precedence level.
// On conflict the returned error orders the left-associative site first,
// matching the original diagnostic rendering convention.
func (reg *Registry) AddPrecAssoc(prec uint32, span ident.Span, right bool) error {
	if e, ok := reg.precAssoc[prec]; ok {
		if e.Right == right {
			return nil
		}
		first, second := span, e.Span
		if right {
			first, second = e.Span, span
		}
		return &IncompatibleError{Key: fmt.Sprintf("precedence %d", prec), First: first, Second: second}
	}
	reg.precAssoc[prec] = precEntry{Span: span, Right: right}
	return nil
}

func addNotaInfo(m map[string]NotaInfo, tk string, n NotaInfo) error {
	if e, ok := m[tk]; ok {
		if e.Span.Equal(n.Span) {
			return nil
		}
		return &IncompatibleError{Key: tk, First: e.Span, Second: n.Span}
	}
	m[tk] = n
	return nil
}

// AddPrefix inserts a prefix notation, idempotent on an equal-span
// re-insert, otherwise IncompatibleError.
func (reg *Registry) AddPrefix(tk string, n NotaInfo) error {
	return addNotaInfo(reg.prefixes, tk, n)
}

// AddInfix inserts an infix notation, same discipline as AddPrefix.
func (reg *Registry) AddInfix(tk string, n NotaInfo) error {
	return addNotaInfo(reg.infixes, tk, n)
}

// Prefix looks up a declared prefix notation by token.
func (reg *Registry) Prefix(tk string) (NotaInfo, bool) { n, ok := reg.prefixes[tk]; return n, ok }

// Infix looks up a declared infix notation by token.
func (reg *Registry) Infix(tk string) (NotaInfo, bool) { n, ok := reg.infixes[tk]; return n, ok }

// ProvableTarget returns the unique sort coercion-reachable from s whose
// modifiers include Provable, if any (§4.3 "provable projection").
func (reg *Registry) ProvableTarget(s ident.SortId) (ident.SortId, bool) {
	t, ok := reg.coeProv[s]
	return t, ok
}

// Coe looks up the direct-or-composed coercion edge from s1 to s2.
func (reg *Registry) Coe(s1, s2 ident.SortId) (*Coe, bool) {
	m, ok := reg.coes[s1]
	if !ok {
		return nil, false
	}
	c, ok := m[s2]
	return c, ok
}

func sortedSortIds(m map[ident.SortId]*Coe) []ident.SortId {
	out := make([]ident.SortId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
