// Package reorder implements the per-declaration back-reference
// bookkeeping shared by the unify and proof linearizers (§4.5): as a
// term or theorem's expression/proof DAG is walked, each heap slot that
// needs to be referenced more than once is "saved" under the next
// available back-reference index, and later visits replay that index
// instead of re-emitting the sub-term.
package reorder

import "github.com/mm0-org/mmb/internal/invariant"

// Reorder tracks, for one declaration body being linearized, which heap
// slots have already been saved and the running back-reference counter.
type Reorder struct {
	saved map[int]uint32
	idx   uint32
}

// New returns a Reorder with the first nargs back-reference slots
// pre-assigned to the declaration's own parameters in argument order:
// the wire format treats a term/theorem's arguments as already saved at
// indices 0..nargs-1, with no explicit save opcode required (§4.5).
func New(nargs int) *Reorder {
	r := &Reorder{saved: make(map[int]uint32, nargs)}
	for i := 0; i < nargs; i++ {
		r.saved[i] = uint32(i)
	}
	r.idx = uint32(nargs)
	return r
}

// Get reports the back-reference index previously assigned to heap
// index i, if any.
func (r *Reorder) Get(i int) (uint32, bool) {
	v, ok := r.saved[i]
	return v, ok
}

// Save assigns the next back-reference index to heap index i and
// returns it.
func (r *Reorder) Save(i int) uint32 {
	invariant.Precondition(!r.has(i), "heap index %d already saved", i)
	idx := r.idx
	r.saved[i] = idx
	r.idx++
	return idx
}

func (r *Reorder) has(i int) bool {
	_, ok := r.saved[i]
	return ok
}

// Len returns the number of back-reference slots assigned so far,
// including the pre-assigned parameter slots.
func (r *Reorder) Len() uint32 { return r.idx }
