package env

import "github.com/mm0-org/mmb/remap"

// exprCache memoizes ExprNode remapping by source pointer identity, so
// that a node shared by two parents in the source DAG remains shared
// (mapped to the same output pointer) in the remapped DAG.
type exprCache map[*ExprNode]*ExprNode

// Remap structurally clones t, substituting its sort through r.
func (t Type) Remap(r *remap.Remapper) Type {
	out := t
	out.Sort = r.Sort(t.Sort)
	return out
}

// Remap structurally clones a, substituting its type through r.
func (a Arg) Remap(r *remap.Remapper) Arg {
	out := a
	out.Type = a.Type.Remap(r)
	return out
}

func remapArgs(args []Arg, r *remap.Remapper) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = a.Remap(r)
	}
	return out
}

// Remap structurally clones e through r, preserving DAG sharing via cache.
func (e *ExprNode) Remap(r *remap.Remapper, cache exprCache) *ExprNode {
	if e == nil {
		return nil
	}
	if out, ok := cache[e]; ok {
		return out
	}
	var out *ExprNode
	switch e.Kind {
	case ExprDummy:
		out = Dummy(r.Sort(e.Sort))
	case ExprApp:
		args := make([]*ExprNode, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.Remap(r, cache)
		}
		out = App(r.Term(e.Term), args)
	case ExprRef:
		out = Param(e.Param)
	}
	cache[e] = out
	return out
}

// proofCache memoizes ProofNode remapping by source pointer identity, the
// same discipline exprCache uses for expressions.
type proofCache map[*ProofNode]*ProofNode

// Remap structurally clones p through r, preserving DAG sharing via cache.
func (p *ProofNode) Remap(r *remap.Remapper, cache proofCache) *ProofNode {
	if p == nil {
		return nil
	}
	if out, ok := cache[p]; ok {
		return out
	}
	out := &ProofNode{Kind: p.Kind, Sort: r.Sort(p.Sort), HypIdx: p.HypIdx}
	cache[p] = out

	switch p.Kind {
	case ProofApp, ProofCong, ProofUnfold:
		out.Term = r.Term(p.Term)
		if p.Args != nil {
			out.Args = make([]*ProofNode, len(p.Args))
			for i, a := range p.Args {
				out.Args[i] = a.Remap(r, cache)
			}
		}
	}
	if p.Kind == ProofUnfold {
		out.Concl = p.Concl.Remap(r, cache)
		out.Eq = p.Eq.Remap(r, cache)
	}
	if p.Kind == ProofHyp {
		out.Stmt = p.Stmt.Remap(r, cache)
	}
	if p.Kind == ProofThm {
		out.Thm = r.Thm(p.Thm)
		if p.ThmArgs != nil {
			out.ThmArgs = make([]*ProofNode, len(p.ThmArgs))
			for i, a := range p.ThmArgs {
				out.ThmArgs[i] = a.Remap(r, cache)
			}
		}
		out.Concl = p.Concl.Remap(r, cache)
	}
	if p.Kind == ProofConv {
		out.Tgt = p.Tgt.Remap(r, cache)
		out.Eq = p.Eq.Remap(r, cache)
		out.Pf = p.Pf.Remap(r, cache)
	}
	if p.Kind == ProofRefl || p.Kind == ProofSym {
		out.Sub = p.Sub.Remap(r, cache)
	}
	return out
}

// Remap structurally clones rec through r.
func (rec TermRecord) Remap(r *remap.Remapper) TermRecord {
	out := rec
	out.Args = remapArgs(rec.Args, r)
	out.Ret = rec.Ret.Remap(r)
	out.Def = rec.Def.Remap(r, make(exprCache))
	return out
}

// Remap structurally clones h through r.
func (h TheoremHyp) Remap(r *remap.Remapper, cache exprCache) TheoremHyp {
	return TheoremHyp{Name: h.Name, Stmt: h.Stmt.Remap(r, cache)}
}

// Remap structurally clones rec through r.
func (rec TheoremRecord) Remap(r *remap.Remapper) TheoremRecord {
	out := rec
	out.Args = remapArgs(rec.Args, r)
	ec := make(exprCache)
	hyps := make([]TheoremHyp, len(rec.Hyps))
	for i, h := range rec.Hyps {
		hyps[i] = h.Remap(r, ec)
	}
	out.Hyps = hyps
	out.Concl = rec.Concl.Remap(r, ec)
	out.Proof = rec.Proof.Remap(r, make(proofCache))
	return out
}
