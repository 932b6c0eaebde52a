package mmbio

import (
	"io"

	"github.com/mm0-org/mmb/internal/invariant"
)

// Fixup32 is a one-shot token for a forward 32-bit offset: reserving it
// writes four zero bytes at the current position, and the reservation
// must be committed exactly once, after the target position it points
// to is known (§4.6 — p_terms/p_thms/p_proof).
type Fixup32 struct {
	pos       int64
	committed bool
}

// Fixup32 reserves a zero-filled 32-bit slot at the current position.
// The slot is zero-filled at reservation time (not left uninitialized
// until commit), so an aborted export never leaks stale buffer bytes.
func (w *Writer) Fixup32() (*Fixup32, error) {
	f := &Fixup32{pos: w.pos}
	if err := w.WriteU32(0); err != nil {
		return nil, err
	}
	return f, nil
}

// Commit32 patches f's reserved slot with value, without disturbing the
// writer's current position.
func (w *Writer) Commit32(f *Fixup32, value uint32) error {
	invariant.Precondition(!f.committed, "fixup32 at %d committed twice", f.pos)
	return w.patch(f.pos, func() error { return w.WriteU32(value) }, func() { f.committed = true })
}

// Fixup64 is the 64-bit analogue of Fixup32, used for the index
// section's large forward offsets (§6).
type Fixup64 struct {
	pos       int64
	committed bool
}

// Fixup64 reserves a zero-filled 64-bit slot at the current position.
func (w *Writer) Fixup64() (*Fixup64, error) {
	f := &Fixup64{pos: w.pos}
	if err := w.WriteU64(0); err != nil {
		return nil, err
	}
	return f, nil
}

// Commit64 patches f's reserved slot with value.
func (w *Writer) Commit64(f *Fixup64, value uint64) error {
	invariant.Precondition(!f.committed, "fixup64 at %d committed twice", f.pos)
	return w.patch(f.pos, func() error { return w.WriteU64(value) }, func() { f.committed = true })
}

// patch seeks to pos, runs write (which advances w.pos as a side
// effect), then restores the writer's original position.
func (w *Writer) patch(pos int64, write func() error, markCommitted func()) error {
	cur := w.pos
	if _, err := w.w.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	w.pos = pos
	if err := write(); err != nil {
		return err
	}
	markCommitted()
	if _, err := w.w.Seek(cur, io.SeekStart); err != nil {
		return err
	}
	w.pos = cur
	return nil
}
