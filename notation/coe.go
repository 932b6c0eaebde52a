package notation

import (
	"fmt"

	"github.com/mm0-org/mmb/diag"
	"github.com/mm0-org/mmb/ident"
	"github.com/mm0-org/mmb/remap"
)

// CoeKind distinguishes an atomic coercion term from a transitive
// composition of two coercions through an intermediate sort.
type CoeKind int

const (
	CoeOneKind CoeKind = iota
	CoeTransKind
)

// Coe is a coercion edge in the sort graph: either a single declared
// coercion term (One) or the composition of two edges through a shared
// middle sort (Trans), built up by addCoeRaw's transitive closure.
type Coe struct {
	Kind CoeKind

	// One
	Span ident.Span
	Term ident.TermId

	// Trans
	Left  *Coe
	Mid   ident.SortId
	Right *Coe
}

// One constructs an atomic coercion declared at span, applying term.
func One(span ident.Span, term ident.TermId) *Coe {
	return &Coe{Kind: CoeOneKind, Span: span, Term: term}
}

// Trans composes left (s1 -> mid) with right (mid -> s2).
func Trans(left *Coe, mid ident.SortId, right *Coe) *Coe {
	return &Coe{Kind: CoeTransKind, Left: left, Mid: mid, Right: right}
}

// Remap structurally clones c, substituting every atomic term id through r.
func (c *Coe) Remap(r *remap.Remapper) *Coe {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case CoeOneKind:
		return One(c.Span, r.Term(c.Term))
	default:
		return Trans(c.Left.Remap(r), r.Sort(c.Mid), c.Right.Remap(r))
	}
}

// FormatArrows renders the coercion edge c (from s1 to s2) as the
// "s1 -> s2 -> s3 -> ..." arrow chain used in cycle/diamond diagnostics,
// along with one Related entry per atomic hop traversed.
func FormatArrows(c *Coe, sortName func(ident.SortId) string, s1, s2 ident.SortId) (string, []diag.Related) {
	arrows := sortName(s1)
	var related []diag.Related
	arrows += writeArrowsR(c, sortName, &related, s1, s2)
	return arrows, related
}

func writeArrowsR(c *Coe, sortName func(ident.SortId) string, related *[]diag.Related, sl, sr ident.SortId) string {
	switch c.Kind {
	case CoeOneKind:
		*related = append(*related, diag.Related{
			Span: c.Span,
			Note: fmt.Sprintf("%s -> %s", sortName(sl), sortName(sr)),
		})
		return fmt.Sprintf(" -> %s", sortName(sr))
	default:
		return writeArrowsR(c.Left, sortName, related, sl, c.Mid) +
			writeArrowsR(c.Right, sortName, related, c.Mid, sr)
	}
}

// addOne records the single edge s1 -> s2 := c, detecting a cycle
// (s1 == s2) or a diamond (an edge already exists between the same pair).
// Both are recoverable diagnostics at merge time and fatal at a direct
// AddCoe call (§7); callers decide which by how they handle the error.
func (reg *Registry) addOne(info SortInfo, s1, s2 ident.SortId, c *Coe) error {
	if s1 == s2 {
		arrows, related := FormatArrows(c, info.SortName, s1, s2)
		return diag.Diagnostic{
			Message: fmt.Sprintf("coercion cycle detected: %s", arrows),
			Related: related,
		}
	}
	m, ok := reg.coes[s1]
	if !ok {
		m = make(map[ident.SortId]*Coe)
		reg.coes[s1] = m
	}
	if existing, ok := m[s2]; ok {
		oldArrows, oldRelated := FormatArrows(existing, info.SortName, s1, s2)
		newArrows, newRelated := FormatArrows(c, info.SortName, s1, s2)
		return diag.Diagnostic{
			Message: fmt.Sprintf("coercion diamond detected:\n  %s\n  %s", oldArrows, newArrows),
			Related: append(oldRelated, newRelated...),
		}
	}
	m[s2] = c
	return nil
}

// addCoeRaw inserts the atomic coercion s1 -> s2 := term, then closes it
// transitively against every existing edge ending at s1 and every existing
// edge starting at s2, failing fast on the first cycle/diamond encountered
// (mirroring the original's todo-list algorithm). It does not refresh the
// provable projection; callers batching several raw inserts (the merge
// engine) call RefreshProvable once at the end.
func (reg *Registry) addCoeRaw(info SortInfo, s1, s2 ident.SortId, site ident.Span, term ident.TermId) error {
	leaf := One(site, term)

	type pending struct {
		sl, sr ident.SortId
		c      *Coe
	}
	var todo []pending

	for _, sl := range reg.sortedOuterKeys() {
		if c, ok := reg.coes[sl][s1]; ok {
			todo = append(todo, pending{sl, s2, Trans(c, s1, leaf)})
		}
	}
	todo = append(todo, pending{s1, s2, leaf})
	if m, ok := reg.coes[s2]; ok {
		for _, sr := range sortedSortIds(m) {
			todo = append(todo, pending{s1, sr, Trans(leaf, s2, m[sr])})
		}
	}

	for _, p := range todo {
		if err := reg.addOne(info, p.sl, p.sr, p.c); err != nil {
			return err
		}
	}
	return nil
}

func (reg *Registry) sortedOuterKeys() []ident.SortId {
	m := make(map[ident.SortId]*Coe, len(reg.coes))
	for k := range reg.coes {
		m[k] = nil
	}
	return sortedSortIds(m)
}

// RefreshProvable fully recomputes the provable projection from scratch
// over the current coercion graph (§4.3, documented in SPEC_FULL.md as
// deliberate rather than incremental): every sort coercion-reachable from s
// through a sort with the Provable modifier gets an entry; two distinct
// provable targets for the same source is a provable-diamond, recoverable
// at merge and fatal at a direct AddCoe call.
func (reg *Registry) RefreshProvable(info SortInfo) error {
	provs := make(map[ident.SortId]ident.SortId)
	for _, s1 := range reg.sortedOuterKeys() {
		m := reg.coes[s1]
		for _, s2 := range sortedSortIds(m) {
			if !info.SortProvable(s2) {
				continue
			}
			if existing, ok := provs[s1]; ok {
				oldArrows, oldRelated := FormatArrows(m[existing], info.SortName, s1, existing)
				newArrows, newRelated := FormatArrows(m[s2], info.SortName, s1, s2)
				return diag.Diagnostic{
					Message: fmt.Sprintf("coercion diamond to provable sort detected:\n  %s provable\n  %s provable",
						oldArrows, newArrows),
					Related: append(oldRelated, newRelated...),
				}
			}
			provs[s1] = s2
		}
	}
	reg.coeProv = provs
	return nil
}

// AddCoe is the direct entry point for declaring a single coercion term:
// it closes the edge transitively and refreshes the provable projection,
// returning any cycle/diamond/provable-diamond diagnostic as a fatal error
// (§7 "fatal at direct add_coe").
func (reg *Registry) AddCoe(info SortInfo, s1, s2 ident.SortId, site ident.Span, term ident.TermId) error {
	if err := reg.addCoeRaw(info, s1, s2, site, term); err != nil {
		return err
	}
	return reg.RefreshProvable(info)
}

// AddCoeRaw exposes the raw, non-provable-refreshing insert for the merge
// engine, which replays several atomic edges before refreshing once.
func (reg *Registry) AddCoeRaw(info SortInfo, s1, s2 ident.SortId, site ident.Span, term ident.TermId) error {
	return reg.addCoeRaw(info, s1, s2, site, term)
}

// Merge folds other's delimiters, constants, precedence/associativity,
// prefix/infix notations and atomic coercions into reg, remapping other's
// term ids through r and accumulating recoverable diagnostics into diags
// instead of aborting (§4.4). Per the merge contract only atomic (One)
// coercion edges are replayed — the transitive closure is rebuilt fresh in
// reg by addCoeRaw — and, matching the original's literal behavior, the
// sort endpoints of each replayed edge are taken from other's own
// numbering: only the coercion's term id is remapped.
func (reg *Registry) Merge(other *Registry, info SortInfo, r *remap.Remapper, diags *diag.List) {
	reg.DelimsL.Merge(other.DelimsL)
	reg.DelimsR.Merge(other.DelimsR)

	for tk, e := range other.consts {
		if err := reg.AddConst(tk, e.Span, e.Prec); err != nil {
			diags.Push(toDiagnostic(err))
		}
	}
	for prec, e := range other.precAssoc {
		if err := reg.AddPrecAssoc(prec, e.Span, e.Right); err != nil {
			diags.Push(toDiagnostic(err))
		}
	}
	for tk, n := range other.prefixes {
		if err := reg.AddPrefix(tk, n.Remap(r)); err != nil {
			diags.Push(toDiagnostic(err))
		}
	}
	for tk, n := range other.infixes {
		if err := reg.AddInfix(tk, n.Remap(r)); err != nil {
			diags.Push(toDiagnostic(err))
		}
	}
	for s1, m := range other.coes {
		for s2, c := range m {
			if c.Kind != CoeOneKind {
				continue
			}
			if err := reg.addCoeRaw(info, s1, s2, c.Span, r.Term(c.Term)); err != nil {
				diags.Push(toDiagnostic(err))
			}
		}
	}
	if err := reg.RefreshProvable(info); err != nil {
		diags.Push(toDiagnostic(err))
	}
}

func toDiagnostic(err error) diag.Diagnostic {
	if d, ok := err.(diag.Diagnostic); ok {
		return d
	}
	return diag.Diagnostic{Message: err.Error()}
}
