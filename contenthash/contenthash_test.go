package contenthash

import (
	"testing"

	"github.com/mm0-org/mmb/env"
)

func TestHashTermStableAcrossEqualStructure(t *testing.T) {
	a := env.TermRecord{Name: "imp", Args: []env.Arg{{Type: env.Type{Kind: env.TypeBound, Sort: 0}}}, Ret: env.Type{Kind: env.TypeReg, Sort: 0}}
	b := env.TermRecord{Name: "imp", Args: []env.Arg{{Type: env.Type{Kind: env.TypeBound, Sort: 0}}}, Ret: env.Type{Kind: env.TypeReg, Sort: 0}}

	ha, err := HashTerm(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashTerm(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatal("expected structurally identical terms to hash identically")
	}
}

func TestHashTermDiffersOnRename(t *testing.T) {
	a := env.TermRecord{Name: "imp", Ret: env.Type{Kind: env.TypeReg, Sort: 0}}
	b := env.TermRecord{Name: "and", Ret: env.Type{Kind: env.TypeReg, Sort: 0}}

	ha, _ := HashTerm(a)
	hb, _ := HashTerm(b)
	if ha == hb {
		t.Fatal("expected differently named terms to hash differently")
	}
}

func TestHashTheoremIgnoresProof(t *testing.T) {
	concl := env.App(1, nil)
	a := env.TheoremRecord{Name: "foo", Concl: concl, Proof: env.Refl(env.ProofAppNode(1, nil))}
	b := env.TheoremRecord{Name: "foo", Concl: concl, Proof: nil}

	ha, err := HashTheorem(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashTheorem(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatal("expected theorem content hash to be independent of the proof")
	}
}

func TestHashExprDiffersOnParamIndex(t *testing.T) {
	a := env.App(1, []*env.ExprNode{env.Param(0)})
	b := env.App(1, []*env.ExprNode{env.Param(1)})

	ha, err := HashExpr(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashExpr(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha == hb {
		t.Fatal("expected parameter references to distinct indices to hash differently")
	}
}

func TestHashExprSharedVsFlatDAGIdentical(t *testing.T) {
	shared := env.Dummy(0)
	dag := env.App(1, []*env.ExprNode{shared, shared})
	flat := env.App(1, []*env.ExprNode{env.Dummy(0), env.Dummy(0)})

	h1, err := HashExpr(dag)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashExpr(flat)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("expected content hash to be independent of in-memory sharing")
	}
}
