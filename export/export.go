// Package export implements the byte-exact MM0B container emitter
// (§4.7, §6): magic, version/sort-count word, declaration counts,
// forward-offset fixups, the sort-modifier table, term/theorem header
// tables and bodies, the proof section replaying the statement trace,
// and the final terminator and index word.
package export

import (
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/linearize"
	"github.com/mm0-org/mmb/mmbio"
	"github.com/mm0-org/mmb/reorder"
)

// Magic is the container's 4-byte file signature.
const Magic = "MM0B"

// Version is the container format version this package emits.
const Version = 1

// Statement-trace opcodes (§6): one per entry of the proof section,
// driving replay in the same order declarations were admitted.
const (
	StmtSort  byte = 0x04
	StmtTerm  byte = 0x05
	StmtAxiom byte = 0x02
	StmtThm   byte = 0x06
	// StmtDef shares STMT_TERM's byte value; a reader distinguishes an
	// opaque term from a definition by whether a proof-stream payload
	// follows before the next statement (§9 Open Question).
	StmtDef byte = 0x05
	// StmtLocal is OR'd into StmtThm to mark a theorem not visible
	// outside its module. Terms carry no visibility, so StmtDef is never
	// marked local.
	StmtLocal byte = 0x08
)

// Result is the outcome of exporting an environment.
type Result struct {
	Digest [32]byte
	Size   int64
}

// Export writes e's full declaration set to out as a single MM0B
// container and returns its size and BLAKE2b-256 digest. The container
// is staged in memory first (mmbio.Buffer) since several header fields
// are forward-offset fixups that can only be patched in once the bodies
// they point to have been written.
func Export(e *env.Environment, out io.Writer) (*Result, error) {
	buf := &mmbio.Buffer{}
	w := mmbio.New(buf)
	if err := writeContainer(e, w); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if _, err := out.Write(data); err != nil {
		return nil, err
	}
	return &Result{Digest: blake2b.Sum256(data), Size: int64(len(data))}, nil
}

func writeContainer(e *env.Environment, w *mmbio.Writer) error {
	if err := w.WriteBytes([]byte(Magic)); err != nil {
		return err
	}

	verWord := uint32(Version) | uint32(e.Sorts.Len())<<8
	if err := w.WriteU32(verWord); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(e.Terms.Len())); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(e.Thms.Len())); err != nil {
		return err
	}

	pTerms, err := w.Fixup32()
	if err != nil {
		return err
	}
	pThms, err := w.Fixup32()
	if err != nil {
		return err
	}
	pProof, err := w.Fixup32()
	if err != nil {
		return err
	}
	pIndex, err := w.Fixup64()
	if err != nil {
		return err
	}

	for _, s := range e.Sorts.All() {
		if err := w.WriteByte(byte(s.Mods)); err != nil {
			return err
		}
	}
	if err := w.AlignTo(8); err != nil {
		return err
	}

	if err := w.Commit32(pTerms, uint32(w.Pos())); err != nil {
		return err
	}
	termBodyFixups, err := writeTermHeaders(e, w)
	if err != nil {
		return err
	}

	if err := w.AlignTo(8); err != nil {
		return err
	}
	if err := w.Commit32(pThms, uint32(w.Pos())); err != nil {
		return err
	}
	thmBodyFixups, err := writeThmHeaders(e, w)
	if err != nil {
		return err
	}

	if err := w.AlignTo(8); err != nil {
		return err
	}
	if err := writeTermBodies(e, w, termBodyFixups); err != nil {
		return err
	}
	if err := writeThmBodies(e, w, thmBodyFixups); err != nil {
		return err
	}

	if err := w.Commit32(pProof, uint32(w.Pos())); err != nil {
		return err
	}
	if err := writeProofSection(e, w); err != nil {
		return err
	}

	if err := w.WriteByte(0x00); err != nil {
		return err
	}
	return w.Commit64(pIndex, 0)
}

// writeTermHeaders emits the fixed 8-byte header for every term (nargs,
// return sort with the has-def bit OR'd in, a reserved byte, and a
// forward pointer to the body), returning one Fixup32 per term for
// writeTermBodies to commit once it knows where each body actually
// starts.
func writeTermHeaders(e *env.Environment, w *mmbio.Writer) ([]*mmbio.Fixup32, error) {
	fixups := make([]*mmbio.Fixup32, e.Terms.Len())
	for i, rec := range e.Terms.All() {
		if err := w.WriteU16(uint16(len(rec.Args))); err != nil {
			return nil, err
		}
		sortByte := byte(rec.Ret.Sort)
		if rec.Def != nil {
			sortByte |= 0x80
		}
		if err := w.WriteByte(sortByte); err != nil {
			return nil, err
		}
		if err := w.WriteByte(0); err != nil {
			return nil, err
		}
		f, err := w.Fixup32()
		if err != nil {
			return nil, err
		}
		fixups[i] = f
	}
	return fixups, nil
}

// writeThmHeaders is writeTermHeaders's theorem analogue: nargs, two
// reserved zero bytes, and a forward pointer to the body. Visibility is
// not part of the header at all — it is OR'd into the statement-trace
// opcode instead (writeDeclTrace).
func writeThmHeaders(e *env.Environment, w *mmbio.Writer) ([]*mmbio.Fixup32, error) {
	fixups := make([]*mmbio.Fixup32, e.Thms.Len())
	for i, rec := range e.Thms.All() {
		if err := w.WriteU16(uint16(len(rec.Args))); err != nil {
			return nil, err
		}
		if err := w.WriteU16(0); err != nil {
			return nil, err
		}
		f, err := w.Fixup32()
		if err != nil {
			return nil, err
		}
		fixups[i] = f
	}
	return fixups, nil
}

// writeTermBodies writes each term's argument/return sort-dependency
// words, followed by its definition's unify-stream encoding when it is
// a definition rather than an opaque constructor.
func writeTermBodies(e *env.Environment, w *mmbio.Writer, fixups []*mmbio.Fixup32) error {
	for i, rec := range e.Terms.All() {
		if err := w.Commit32(fixups[i], uint32(w.Pos())); err != nil {
			return err
		}
		for _, a := range rec.Args {
			if err := writeArgWord(w, a); err != nil {
				return err
			}
		}
		if err := w.WriteU64(mmbio.PackSortDeps(false, rec.Ret.Sort, rec.Ret.Deps)); err != nil {
			return err
		}
		if rec.Def != nil {
			ro := reorder.New(len(rec.Args))
			ctx := linearize.NewUnifyCtx(rec.Def)
			if err := linearize.WriteExprUnify(w, ro, ctx, rec.Def); err != nil {
				return err
			}
		}
		if err := linearize.WriteUnifyEnd(w); err != nil {
			return err
		}
	}
	return nil
}

// writeThmBodies writes each theorem's argument words followed by the
// unify-stream encoding of its conclusion, then its hypotheses in
// reverse declaration order, each preceded by a UNIFY_HYP marker
// (spec.md §4.7 item 7, confirmed against the original's
// write_expr_unify(&t.ret, ...) followed by hyps.iter().rev()).
func writeThmBodies(e *env.Environment, w *mmbio.Writer, fixups []*mmbio.Fixup32) error {
	for i, rec := range e.Thms.All() {
		if err := w.Commit32(fixups[i], uint32(w.Pos())); err != nil {
			return err
		}
		for _, a := range rec.Args {
			if err := writeArgWord(w, a); err != nil {
				return err
			}
		}

		ro := reorder.New(len(rec.Args))
		roots := make([]*env.ExprNode, 0, len(rec.Hyps)+1)
		roots = append(roots, rec.Concl)
		for _, h := range rec.Hyps {
			roots = append(roots, h.Stmt)
		}
		ctx := linearize.NewUnifyCtx(roots...)

		if err := linearize.WriteExprUnify(w, ro, ctx, rec.Concl); err != nil {
			return err
		}
		for j := len(rec.Hyps) - 1; j >= 0; j-- {
			if err := linearize.WriteHyp(w); err != nil {
				return err
			}
			if err := linearize.WriteExprUnify(w, ro, ctx, rec.Hyps[j].Stmt); err != nil {
				return err
			}
		}
		if err := linearize.WriteUnifyEnd(w); err != nil {
			return err
		}
	}
	return nil
}

// writeProofSection replays the statement trace (§3 "Lifecycle"): a
// marker opcode per sort and opaque term, STMT_DEF followed by the
// body's proof-stream encoding per definition, and for each theorem a
// marker opcode (axiom vs. theorem) followed, for theorems with a
// proof, by its proof-stream encoding.
func writeProofSection(e *env.Environment, w *mmbio.Writer) error {
	for _, stmt := range e.Stmts {
		switch stmt.Kind {
		case env.StmtSort:
			if err := w.WriteCmd(StmtSort); err != nil {
				return err
			}
		case env.StmtDecl:
			if err := writeDeclTrace(e, w, stmt.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDeclTrace(e *env.Environment, w *mmbio.Writer, name string) error {
	if id, ok := e.LookupTerm(name); ok {
		rec := e.Terms.Get(id)
		if rec.Def == nil {
			return w.WriteCmd(StmtTerm)
		}
		if err := w.WriteCmd(StmtDef); err != nil {
			return err
		}
		ro := reorder.New(len(rec.Args))
		ctx := linearize.NewUnifyCtx(rec.Def)
		if err := linearize.WriteDefExpr(w, ro, ctx, rec.Def); err != nil {
			return err
		}
		return linearize.WriteProofEnd(w)
	}
	id, ok := e.LookupThm(name)
	if !ok {
		return nil
	}
	rec := e.Thms.Get(id)
	if rec.Proof == nil {
		return w.WriteCmd(StmtAxiom)
	}
	op := StmtThm
	if rec.Vis == env.VisLocal {
		op |= StmtLocal
	}
	if err := w.WriteCmd(op); err != nil {
		return err
	}
	ro := reorder.New(len(rec.Args))
	ctx := linearize.NewProofCtx(rec.Proof)
	if err := linearize.WriteProof(w, ro, ctx, rec.Proof); err != nil {
		return err
	}
	return linearize.WriteProofEnd(w)
}

func writeArgWord(w *mmbio.Writer, a env.Arg) error {
	bound := a.Type.Kind == env.TypeBound
	return w.WriteU64(mmbio.PackSortDeps(bound, a.Type.Sort, a.Type.Deps))
}
