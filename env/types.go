// Package env implements the content-addressed declaration environment
// (§3, §4.2): sorts, terms, theorems, their expression/proof DAGs, the
// notation/coercion registry, and the statement trace that records
// declaration order for replay during merge and export.
package env

import "github.com/mm0-org/mmb/ident"

// Sort is a declared sort: a name, its provenance, and its modifier bits.
type Sort struct {
	Span ident.Span
	Name string
	Mods ident.Modifiers
}

// TypeKind distinguishes a bound variable's type from a regular argument's.
type TypeKind int

const (
	TypeBound TypeKind = iota
	TypeReg
)

// Type is an argument or return type: a sort, tagged as either a bound
// variable (which other arguments may depend on) or a regular argument
// carrying a dependency mask over the bound variables in scope (§3, §6).
type Type struct {
	Kind TypeKind
	Sort ident.SortId
	Deps uint64 // valid when Kind == TypeReg
}

// Arg is one formal parameter of a term or theorem.
type Arg struct {
	Name string
	Type Type
}

// ExprKind distinguishes the three shapes an expression DAG node can take.
// Structural sharing is represented directly as pointer sharing: two
// call sites holding the same *ExprNode reference the same sub-term, and
// the linearizer (not this package) is responsible for rediscovering that
// sharing and emitting back-references into the wire heap.
type ExprKind int

const (
	ExprDummy ExprKind = iota
	ExprApp
	// ExprRef is a reference to the enclosing declaration's own formal
	// parameter (spec.md:41 "Ref(u) ... offset < nargs means
	// parameter"). It carries no sub-structure of its own: the
	// parameter's shape was already fixed by the declaration's argument
	// list, so linearizing one only ever emits a back-reference into
	// the heap slot the reorder table pre-assigns to that parameter
	// index (§4.5).
	ExprRef
)

// ExprNode is one node of an expression DAG.
type ExprNode struct {
	Kind  ExprKind
	Sort  ident.SortId // valid when Kind == ExprDummy
	Term  ident.TermId // valid when Kind == ExprApp
	Args  []*ExprNode  // valid when Kind == ExprApp
	Param int          // valid when Kind == ExprRef: the parameter's index
}

// Dummy constructs a bound dummy variable node of the given sort.
func Dummy(sort ident.SortId) *ExprNode { return &ExprNode{Kind: ExprDummy, Sort: sort} }

// App constructs a term application node.
func App(term ident.TermId, args []*ExprNode) *ExprNode {
	return &ExprNode{Kind: ExprApp, Term: term, Args: args}
}

// Param constructs a reference to the enclosing declaration's idx'th
// formal parameter.
func Param(idx int) *ExprNode { return &ExprNode{Kind: ExprRef, Param: idx} }

// ProofKind distinguishes the shapes a proof DAG node can take: the two
// expression shapes (Dummy/App, reused so a proof's conclusion can share
// structure with the expression it proves), plus the proof-specific
// hypothesis/theorem-application/conversion shapes (§4.2, §6 PROOF_*).
type ProofKind int

const (
	ProofDummy ProofKind = iota
	ProofApp
	ProofHyp
	ProofThm
	ProofConv
	ProofRefl
	ProofSym
	ProofCong
	ProofUnfold
)

// ProofNode is one node of a proof DAG. Which fields are meaningful
// depends on Kind; use the constructors below rather than building one
// by hand.
type ProofNode struct {
	Kind ProofKind

	Sort ident.SortId // Dummy
	Term ident.TermId // App, Cong, Unfold: the term being applied/cong'd/unfolded
	Args []*ProofNode // App: expression args; Cong, Unfold: argument proofs

	HypIdx int        // Hyp: position in the enclosing Proof's hypothesis list
	Stmt   *ProofNode // Hyp: the hypothesis's statement expression

	Thm     ident.ThmId  // Thm: the applied theorem
	ThmArgs []*ProofNode // Thm: the theorem's argument proofs
	Concl   *ProofNode   // Thm: resulting conclusion expression; Unfold: the unfolded-to expression

	Tgt *ProofNode // Conv: the expression the conversion proves equal to Pf's statement
	Eq  *ProofNode // Conv, Unfold: the equality/conversion sub-proof
	Pf  *ProofNode // Conv: the proof being converted
	Sub *ProofNode // Refl, Sym: the inner conversion being reflected/symmetrized
}

// ProofDummyNode constructs a dummy variable node within a proof.
func ProofDummyNode(sort ident.SortId) *ProofNode {
	return &ProofNode{Kind: ProofDummy, Sort: sort}
}

// ProofAppNode constructs a term-application expression node within a proof.
func ProofAppNode(term ident.TermId, args []*ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofApp, Term: term, Args: args}
}

// Hyp references the idx'th hypothesis, whose statement is stmt.
func Hyp(idx int, stmt *ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofHyp, HypIdx: idx, Stmt: stmt}
}

// ThmApp applies theorem thm to args, producing conclusion concl.
func ThmApp(thm ident.ThmId, args []*ProofNode, concl *ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofThm, Thm: thm, ThmArgs: args, Concl: concl}
}

// Conv proves pf's statement is convertible to tgt via the conversion eq.
func Conv(tgt, eq, pf *ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofConv, Tgt: tgt, Eq: eq, Pf: pf}
}

// Refl proves an expression convertible to itself.
func Refl(e *ProofNode) *ProofNode { return &ProofNode{Kind: ProofRefl, Sub: e} }

// Sym flips the direction of a conversion proof.
func Sym(c *ProofNode) *ProofNode { return &ProofNode{Kind: ProofSym, Sub: c} }

// Cong proves two applications of term convertible via convertible
// arguments.
func Cong(term ident.TermId, args []*ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofCong, Term: term, Args: args}
}

// Unfold proves an application of a definition convertible to its
// expansion concl, justified by the conversion eq between the expansion
// and the original definition body.
func Unfold(term ident.TermId, args []*ProofNode, concl, eq *ProofNode) *ProofNode {
	return &ProofNode{Kind: ProofUnfold, Term: term, Args: args, Concl: concl, Eq: eq}
}

// Visibility marks whether a theorem is local to its module. Export
// writes a local theorem's proof like any other and ORs the StmtLocal
// bit into its statement opcode (§6).
type Visibility int

const (
	VisPublic Visibility = iota
	VisLocal
)

// TermRecord is a declared term or definition.
type TermRecord struct {
	Span ident.Span
	Name string
	Args []Arg
	Ret  Type
	// Def is the definition's expansion, or nil for an opaque term/axiom
	// constructor.
	Def *ExprNode
}

// TheoremHyp is one named hypothesis of a theorem.
type TheoremHyp struct {
	Name string
	Stmt *ExprNode
}

// TheoremRecord is a declared theorem or axiom.
type TheoremRecord struct {
	Span  ident.Span
	Name  string
	Args  []Arg
	Hyps  []TheoremHyp
	Concl *ExprNode
	// Proof is nil for an axiom (no derivation, only a conclusion).
	Proof *ProofNode
	Vis   Visibility
}

// StmtKind distinguishes the two kinds of entry in an environment's
// replay trace.
type StmtKind int

const (
	StmtSort StmtKind = iota
	StmtDecl
)

// Stmt is one entry of the statement trace (§3 "Lifecycle"): declaration
// order as actually admitted, independent of identifier numbering, used
// to replay a secondary environment into a primary one during merge and
// to drive the proof-stream emission order during export.
type Stmt struct {
	Kind StmtKind
	Name string
}
