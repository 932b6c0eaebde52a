package mmbio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// seekBuf is a minimal in-memory io.WriteSeeker for tests.
type seekBuf struct {
	buf []byte
	pos int64
}

func (s *seekBuf) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuf) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("bad whence")
	}
	return s.pos, nil
}

func TestAlignTo(t *testing.T) {
	buf := &seekBuf{}
	w := New(buf)
	if err := w.WriteByte(1); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignTo(8); err != nil {
		t.Fatal(err)
	}
	if w.Pos() != 8 {
		t.Fatalf("expected aligned pos 8, got %d", w.Pos())
	}
	if err := w.AlignTo(8); err != nil {
		t.Fatal(err)
	}
	if w.Pos() != 8 {
		t.Fatalf("expected no-op align to stay at 8, got %d", w.Pos())
	}
}

func TestFixup32RoundTrip(t *testing.T) {
	buf := &seekBuf{}
	w := New(buf)
	f, err := w.Fixup32()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteByte(0xAB); err != nil {
		t.Fatal(err)
	}
	posAfter := w.Pos()
	if err := w.Commit32(f, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if w.Pos() != posAfter {
		t.Fatalf("commit should not move the write cursor: want %d, got %d", posAfter, w.Pos())
	}
	if !bytes.Equal(buf.buf[0:4], []byte{0xEF, 0xBE, 0xAD, 0xDE}) {
		t.Fatalf("expected little-endian fixup value, got %x", buf.buf[0:4])
	}
	if buf.buf[4] != 0xAB {
		t.Fatalf("expected byte written after fixup preserved, got %x", buf.buf[4])
	}
}

func TestCommit32Twice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic committing a fixup twice")
		}
	}()
	buf := &seekBuf{}
	w := New(buf)
	f, _ := w.Fixup32()
	_ = w.Commit32(f, 1)
	_ = w.Commit32(f, 2)
}

func TestPackSortDeps(t *testing.T) {
	word := PackSortDeps(true, 5, 0b110)
	if word&(1<<63) == 0 {
		t.Fatal("expected bound bit set")
	}
	if (word>>56)&0x7f != 5 {
		t.Fatalf("expected sort id 5, got %d", (word>>56)&0x7f)
	}
	if word&(1<<56-1) != 0b110 {
		t.Fatalf("expected dep mask preserved, got %b", word&(1<<56-1))
	}
}

func TestWriteCmdDataSizeClasses(t *testing.T) {
	buf := &seekBuf{}
	w := New(buf)
	if err := w.WriteCmdData(0x01, 5); err != nil {
		t.Fatal(err)
	}
	if buf.buf[0] != 0x01|Data8 {
		t.Fatalf("expected Data8 size class, got %x", buf.buf[0])
	}
	if err := w.WriteCmdData(0x01, 1000); err != nil {
		t.Fatal(err)
	}
	if buf.buf[2] != 0x01|Data16 {
		t.Fatalf("expected Data16 size class, got %x", buf.buf[2])
	}
}

func TestWriteCmdBytes(t *testing.T) {
	buf := &seekBuf{}
	w := New(buf)
	payload := []byte{1, 2, 3}
	if err := w.WriteCmdBytes(0x02, payload); err != nil {
		t.Fatal(err)
	}
	if buf.buf[0] != 0x02|Data8 || buf.buf[1] != 3 {
		t.Fatalf("expected length-prefixed header, got %x %x", buf.buf[0], buf.buf[1])
	}
	if !bytes.Equal(buf.buf[2:5], payload) {
		t.Fatalf("expected payload preserved, got %x", buf.buf[2:5])
	}
}
