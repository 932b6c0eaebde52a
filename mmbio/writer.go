// Package mmbio implements the low-level binary writer the container
// emitter builds on (§4.6): position tracking, alignment, one-shot
// forward-offset fixups, and opcode packing with the 2-bit size-class
// tag used throughout the MM0B wire format.
package mmbio

import (
	"encoding/binary"
	"io"

	"github.com/mm0-org/mmb/ident"
	"github.com/mm0-org/mmb/internal/invariant"
)

// Writer is a position-tracked binary writer over an io.WriteSeeker.
type Writer struct {
	w   io.WriteSeeker
	pos int64
}

// New wraps w for position-tracked writing starting at its current
// position (assumed to be zero for a fresh container).
func New(w io.WriteSeeker) *Writer { return &Writer{w: w} }

// Pos returns the current write position.
func (w *Writer) Pos() int64 { return w.pos }

// WriteBytes writes b verbatim.
func (w *Writer) WriteBytes(b []byte) error {
	n, err := w.w.Write(b)
	w.pos += int64(n)
	return err
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error { return w.WriteBytes([]byte{b}) }

// WriteU16 writes v as a little-endian 16-bit word.
func (w *Writer) WriteU16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteU32 writes v as a little-endian 32-bit word.
func (w *Writer) WriteU32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteU64 writes v as a little-endian 64-bit word.
func (w *Writer) WriteU64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// AlignTo pads with zero bytes until Pos is a multiple of n (§4.6, §6 —
// the container aligns its term/theorem tables and body block to 8 bytes).
func (w *Writer) AlignTo(n int64) error {
	pad := (n - w.pos%n) % n
	if pad == 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, pad))
}

// PackSortDeps packs an argument's type into the 64-bit wire word shared
// by the term header's argument array and binder dependency encoding:
// bit 63 marks a bound variable, bits 62-56 hold the sort id, and bits
// 55-0 hold the dependency mask over bound variables in scope (§6).
func PackSortDeps(bound bool, sort ident.SortId, deps uint64) uint64 {
	invariant.Precondition(deps < 1<<56, "dependency mask overflow: %#x", deps)
	var word uint64
	if bound {
		word |= 1 << 63
	}
	word |= uint64(sort&0x7f) << 56
	word |= deps & (1<<56 - 1)
	return word
}
