package mmbio

import "encoding/binary"

// Opcode data-size classes: the top two bits of every opcode byte select
// how the inline payload (if any) is encoded (§6).
const (
	Data0  byte = 0x00
	Data8  byte = 0x40
	Data16 byte = 0x80
	Data32 byte = 0xC0
)

// WriteCmd emits a bare opcode with no inline payload.
func (w *Writer) WriteCmd(op byte) error {
	return w.WriteByte(op)
}

// WriteCmdData emits an opcode with an inline unsigned payload, packing
// it into the smallest size class (u8/u16/u32) that fits (§6).
func (w *Writer) WriteCmdData(op byte, data uint32) error {
	switch {
	case data <= 0xFF:
		if err := w.WriteByte(op | Data8); err != nil {
			return err
		}
		return w.WriteByte(byte(data))
	case data <= 0xFFFF:
		if err := w.WriteByte(op | Data16); err != nil {
			return err
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(data))
		return w.WriteBytes(buf[:])
	default:
		if err := w.WriteByte(op | Data32); err != nil {
			return err
		}
		return w.WriteU32(data)
	}
}

// WriteCmdBytes emits an opcode followed by a length-prefixed payload:
// the opcode's operand is the payload length in bytes, not counting the
// opcode or the operand itself.
func (w *Writer) WriteCmdBytes(op byte, payload []byte) error {
	if err := w.WriteCmdData(op, uint32(len(payload))); err != nil {
		return err
	}
	return w.WriteBytes(payload)
}
