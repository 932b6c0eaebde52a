// Package contenthash content-addresses declarations: it flattens an
// env.TermRecord/TheoremRecord/ExprNode into a canonical CBOR encoding
// and SHA-256 hashes the result, giving a stable identity for a
// declaration independent of where it happens to sit in an identifier
// table (used for the inspect --hash CLI output).
package contenthash

import (
	"crypto/sha256"

	"github.com/fxamacker/cbor/v2"

	"github.com/mm0-org/mmb/env"
)

var canonical cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	canonical = m
}

// wireExpr is ExprNode flattened into a plain, pointer-free tree: struct
// fields serialize in a fixed key order under canonical CBOR, so two
// structurally identical expressions always encode identically
// regardless of how their source DAG shared sub-nodes.
type wireExpr struct {
	Kind  uint8
	Sort  uint8
	Term  uint32
	Param uint32
	Args  []wireExpr
}

func toWireExpr(n *env.ExprNode) wireExpr {
	if n == nil {
		return wireExpr{}
	}
	w := wireExpr{Kind: uint8(n.Kind), Sort: uint8(n.Sort), Term: uint32(n.Term), Param: uint32(n.Param)}
	for _, a := range n.Args {
		w.Args = append(w.Args, toWireExpr(a))
	}
	return w
}

type wireArg struct {
	TypeKind uint8
	Sort     uint8
	Deps     uint64
}

func toWireArgs(args []env.Arg) []wireArg {
	out := make([]wireArg, len(args))
	for i, a := range args {
		out[i] = wireArg{TypeKind: uint8(a.Type.Kind), Sort: uint8(a.Type.Sort), Deps: a.Type.Deps}
	}
	return out
}

type wireTerm struct {
	Name    string
	Args    []wireArg
	RetKind uint8
	RetSort uint8
	RetDeps uint64
	Def     *wireExpr
}

// HashTerm returns the content hash of rec: its name, arguments, return
// type, and (if it is a definition) its expansion.
func HashTerm(rec env.TermRecord) ([32]byte, error) {
	w := wireTerm{
		Name:    rec.Name,
		Args:    toWireArgs(rec.Args),
		RetKind: uint8(rec.Ret.Kind),
		RetSort: uint8(rec.Ret.Sort),
		RetDeps: rec.Ret.Deps,
	}
	if rec.Def != nil {
		d := toWireExpr(rec.Def)
		w.Def = &d
	}
	return encodeAndHash(w)
}

type wireHyp struct {
	Name string
	Stmt wireExpr
}

type wireTheorem struct {
	Name  string
	Args  []wireArg
	Hyps  []wireHyp
	Concl wireExpr
}

// HashTheorem returns the content hash of rec's statement (arguments,
// hypotheses, and conclusion). The proof itself is intentionally
// excluded: two different derivations of the same statement are the
// same declaration for content-addressing purposes.
func HashTheorem(rec env.TheoremRecord) ([32]byte, error) {
	hyps := make([]wireHyp, len(rec.Hyps))
	for i, h := range rec.Hyps {
		hyps[i] = wireHyp{Name: h.Name, Stmt: toWireExpr(h.Stmt)}
	}
	w := wireTheorem{
		Name:  rec.Name,
		Args:  toWireArgs(rec.Args),
		Hyps:  hyps,
		Concl: toWireExpr(rec.Concl),
	}
	return encodeAndHash(w)
}

// HashExpr returns the content hash of a single expression, used e.g.
// to compare two definitions' expansions independent of their position
// in any particular environment.
func HashExpr(n *env.ExprNode) ([32]byte, error) {
	return encodeAndHash(toWireExpr(n))
}

func encodeAndHash(v interface{}) ([32]byte, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
