// Package linearize implements the two DAG-to-opcode-stream linearizers
// (§4.7): the unify stream, which replays a term/theorem's shape for the
// unifier, and the proof stream, which replays a theorem's derivation.
// Both share the same save/back-reference discipline via reorder.Reorder,
// but differ in which opcodes they emit and what they walk.
package linearize

import (
	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/internal/invariant"
	"github.com/mm0-org/mmb/mmbio"
	"github.com/mm0-org/mmb/reorder"
)

// Opcode bytes (§6). The low 6 bits select the operation; mmbio's
// WriteCmdData layers the 2-bit size-class tag on top when an inline
// operand is present.
const (
	UnifyTerm     byte = 0x30
	UnifyTermSave byte = 0x31
	UnifyRef      byte = 0x32
	UnifyDummy    byte = 0x33
	UnifyHyp      byte = 0x36

	ProofTerm     byte = 0x10
	ProofTermSave byte = 0x11
	ProofRef      byte = 0x12
	ProofDummy    byte = 0x13
	ProofThm      byte = 0x14
	ProofThmSave  byte = 0x15
	ProofHyp      byte = 0x16
	ProofConv     byte = 0x17
	ProofRefl     byte = 0x18
	ProofSymm     byte = 0x19
	ProofCong     byte = 0x1A
	ProofUnfold   byte = 0x1B

	// StreamEnd terminates both the unify and proof streams of a single
	// declaration (§6, §9 Open Question: always a single trailing byte,
	// not the doubled terminator the original theorem-with-proof path
	// appears to emit).
	StreamEnd byte = 0x00
)

// UnifyCtx tracks reference counts and already-saved heap slots across
// the WriteExprUnify (or WriteDefExpr) calls for one declaration, so that
// a node referenced from more than one place gets a single heap slot and
// every later visit replays it by back-reference instead of re-emitting
// its shape.
type UnifyCtx struct {
	counts map[*env.ExprNode]int
	seen   map[*env.ExprNode]int
}

// NewUnifyCtx prepares a UnifyCtx by counting every node's occurrences
// in roots (a term's definition, or a theorem's conclusion and
// hypothesis expressions).
func NewUnifyCtx(roots ...*env.ExprNode) *UnifyCtx {
	ctx := &UnifyCtx{counts: make(map[*env.ExprNode]int), seen: make(map[*env.ExprNode]int)}
	for _, r := range roots {
		countExprRefs(r, ctx.counts)
	}
	return ctx
}

func countExprRefs(node *env.ExprNode, counts map[*env.ExprNode]int) {
	if node == nil {
		return
	}
	first := counts[node] == 0
	counts[node]++
	if !first {
		return
	}
	if node.Kind == env.ExprApp {
		for _, a := range node.Args {
			countExprRefs(a, counts)
		}
	}
}

// WriteExprUnify emits node's unify-stream encoding: a back-reference if
// node was already saved, otherwise its shape (recursing into
// arguments), saving a new heap slot first if node occurs more than once
// overall.
func WriteExprUnify(w *mmbio.Writer, ro *reorder.Reorder, ctx *UnifyCtx, node *env.ExprNode) error {
	if idx, ok := ctx.seen[node]; ok {
		backref, _ := ro.Get(idx)
		return w.WriteCmdData(UnifyRef, backref)
	}
	if node.Kind == env.ExprRef {
		backref, ok := ro.Get(node.Param)
		invariant.Precondition(ok, "parameter %d not pre-assigned a heap slot", node.Param)
		return w.WriteCmdData(UnifyRef, backref)
	}
	needsSave := ctx.counts[node] > 1

	switch node.Kind {
	case env.ExprDummy:
		if err := w.WriteCmdData(UnifyDummy, uint32(node.Sort)); err != nil {
			return err
		}
	case env.ExprApp:
		op := UnifyTerm
		if needsSave {
			op = UnifyTermSave
		}
		if err := w.WriteCmdData(op, uint32(node.Term)); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := WriteExprUnify(w, ro, ctx, a); err != nil {
				return err
			}
		}
	}

	if needsSave {
		// Parameters occupy heap slots 0..nargs-1; saved nodes follow them.
		heapIdx := int(ro.Len())
		ctx.seen[node] = heapIdx
		ro.Save(heapIdx)
	}
	return nil
}

// WriteDefExpr emits node's proof-stream encoding for a definition's
// body (§6 STMT_DEF payload, §4.7 item 6): the same shape and
// save/back-reference discipline as WriteExprUnify, but using the proof
// opcodes (the 0x10 range) rather than the unify opcodes (0x30 range),
// since a definition's body is replayed into the proof stream rather
// than matched against the unifier.
func WriteDefExpr(w *mmbio.Writer, ro *reorder.Reorder, ctx *UnifyCtx, node *env.ExprNode) error {
	if idx, ok := ctx.seen[node]; ok {
		backref, _ := ro.Get(idx)
		return w.WriteCmdData(ProofRef, backref)
	}
	if node.Kind == env.ExprRef {
		backref, ok := ro.Get(node.Param)
		invariant.Precondition(ok, "parameter %d not pre-assigned a heap slot", node.Param)
		return w.WriteCmdData(ProofRef, backref)
	}
	needsSave := ctx.counts[node] > 1

	switch node.Kind {
	case env.ExprDummy:
		if err := w.WriteCmdData(ProofDummy, uint32(node.Sort)); err != nil {
			return err
		}
	case env.ExprApp:
		op := ProofTerm
		if needsSave {
			op = ProofTermSave
		}
		if err := w.WriteCmdData(op, uint32(node.Term)); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := WriteDefExpr(w, ro, ctx, a); err != nil {
				return err
			}
		}
	}

	if needsSave {
		heapIdx := int(ro.Len())
		ctx.seen[node] = heapIdx
		ro.Save(heapIdx)
	}
	return nil
}

// WriteHyp emits the UNIFY_HYP marker used once per theorem hypothesis
// to separate the hypothesis list from the conclusion in the unify
// stream (§6).
func WriteHyp(w *mmbio.Writer) error { return w.WriteCmd(UnifyHyp) }

// WriteUnifyEnd terminates a declaration's unify stream.
func WriteUnifyEnd(w *mmbio.Writer) error { return w.WriteCmd(StreamEnd) }

// ProofCtx is the proof-stream analogue of UnifyCtx.
type ProofCtx struct {
	counts map[*env.ProofNode]int
	seen   map[*env.ProofNode]int
}

// NewProofCtx prepares a ProofCtx by counting every node's occurrences
// in root (a theorem's proof tree).
func NewProofCtx(root *env.ProofNode) *ProofCtx {
	ctx := &ProofCtx{counts: make(map[*env.ProofNode]int), seen: make(map[*env.ProofNode]int)}
	countProofRefs(root, ctx.counts)
	return ctx
}

func countProofRefs(node *env.ProofNode, counts map[*env.ProofNode]int) {
	if node == nil {
		return
	}
	first := counts[node] == 0
	counts[node]++
	if !first {
		return
	}
	switch node.Kind {
	case env.ProofApp, env.ProofCong:
		for _, a := range node.Args {
			countProofRefs(a, counts)
		}
	case env.ProofUnfold:
		for _, a := range node.Args {
			countProofRefs(a, counts)
		}
		countProofRefs(node.Concl, counts)
		countProofRefs(node.Eq, counts)
	case env.ProofHyp:
		countProofRefs(node.Stmt, counts)
	case env.ProofThm:
		for _, a := range node.ThmArgs {
			countProofRefs(a, counts)
		}
		countProofRefs(node.Concl, counts)
	case env.ProofConv:
		countProofRefs(node.Tgt, counts)
		countProofRefs(node.Eq, counts)
		countProofRefs(node.Pf, counts)
	case env.ProofRefl, env.ProofSym:
		countProofRefs(node.Sub, counts)
	}
}

// WriteProof emits node's proof-stream encoding, applying the same
// back-reference/save discipline as WriteExprUnify.
func WriteProof(w *mmbio.Writer, ro *reorder.Reorder, ctx *ProofCtx, node *env.ProofNode) error {
	if idx, ok := ctx.seen[node]; ok {
		backref, _ := ro.Get(idx)
		return w.WriteCmdData(ProofRef, backref)
	}
	needsSave := ctx.counts[node] > 1

	switch node.Kind {
	case env.ProofDummy:
		if err := w.WriteCmdData(ProofDummy, uint32(node.Sort)); err != nil {
			return err
		}
	case env.ProofApp:
		op := ProofTerm
		if needsSave {
			op = ProofTermSave
		}
		if err := w.WriteCmdData(op, uint32(node.Term)); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := WriteProof(w, ro, ctx, a); err != nil {
				return err
			}
		}
	case env.ProofHyp:
		if err := w.WriteCmdData(ProofHyp, uint32(node.HypIdx)); err != nil {
			return err
		}
	case env.ProofThm:
		for _, a := range node.ThmArgs {
			if err := WriteProof(w, ro, ctx, a); err != nil {
				return err
			}
		}
		op := ProofThm
		if needsSave {
			op = ProofThmSave
		}
		if err := w.WriteCmdData(op, uint32(node.Thm)); err != nil {
			return err
		}
	case env.ProofConv:
		if err := w.WriteCmd(ProofConv); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Tgt); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Eq); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Pf); err != nil {
			return err
		}
	case env.ProofRefl:
		if err := w.WriteCmd(ProofRefl); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Sub); err != nil {
			return err
		}
	case env.ProofSym:
		if err := w.WriteCmd(ProofSymm); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Sub); err != nil {
			return err
		}
	case env.ProofCong:
		if err := w.WriteCmdData(ProofCong, uint32(node.Term)); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := WriteProof(w, ro, ctx, a); err != nil {
				return err
			}
		}
	case env.ProofUnfold:
		if err := w.WriteCmdData(ProofUnfold, uint32(node.Term)); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := WriteProof(w, ro, ctx, a); err != nil {
				return err
			}
		}
		if err := WriteProof(w, ro, ctx, node.Concl); err != nil {
			return err
		}
		if err := WriteProof(w, ro, ctx, node.Eq); err != nil {
			return err
		}
	}

	if needsSave {
		heapIdx := int(ro.Len())
		ctx.seen[node] = heapIdx
		ro.Save(heapIdx)
	}
	return nil
}

// WriteProofEnd terminates a theorem's proof stream.
func WriteProofEnd(w *mmbio.Writer) error { return w.WriteCmd(StreamEnd) }
