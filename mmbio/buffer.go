package mmbio

import (
	"fmt"
	"io"
)

// Buffer is an in-memory io.WriteSeeker: the staging area export writes
// a container into so that forward fixups can be patched in before the
// final bytes are copied to their real destination and hashed (§4.6).
type Buffer struct {
	data []byte
	pos  int64
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = offset
	case io.SeekCurrent:
		b.pos += offset
	case io.SeekEnd:
		b.pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("mmbio: invalid whence %d", whence)
	}
	return b.pos, nil
}

// Bytes returns the buffer's full contents.
func (b *Buffer) Bytes() []byte { return b.data }
