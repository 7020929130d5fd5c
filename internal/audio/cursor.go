package audio

import (
	"encoding/binary"
	"fmt"
)

// Cursor reads fixed-width integers from an in-memory buffer at an explicit
// position. The position never exceeds len(buf); a failed read leaves it unchanged.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

func (c *Cursor) Position() int  { return c.pos }
func (c *Cursor) Len() int       { return len(c.buf) }
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// SetPosition moves the cursor to off, which must lie within [0, len(buf)].
func (c *Cursor) SetPosition(off int) error {
	if off < 0 || off > len(c.buf) {
		return fmt.Errorf("%w: seek to %d in %d bytes", ErrTruncated, off, len(c.buf))
	}
	c.pos = off
	return nil
}

// take returns the next n bytes and advances past them.
func (c *Cursor) take(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, c.pos, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) ReadU16(order binary.ByteOrder) (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

func (c *Cursor) ReadU32(order binary.ByteOrder) (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// ReadI24 reads a signed 24-bit integer and sign-extends it to int32.
func (c *Cursor) ReadI24(order binary.ByteOrder) (int32, error) {
	b, err := c.take(3)
	if err != nil {
		return 0, err
	}
	var u uint32
	if isLittleEndian(order) {
		u = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	} else {
		u = uint32(b[2]) | uint32(b[1])<<8 | uint32(b[0])<<16
	}
	return int32(u<<8) >> 8, nil
}

func isLittleEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{1, 0}) == 1
}
