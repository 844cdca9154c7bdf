package smf

import "encoding/binary"

// Cursor is a sequential big-endian reader over a fixed byte buffer.
// Every read is bounds-checked before it touches the buffer.
type Cursor struct {
	buf    []byte
	offset int
}

// NewCursor returns a cursor positioned at the start of buf.
// The buffer is never modified.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.offset
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.offset
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.Remaining() < n {
		return truncationError(c.offset, n)
	}
	return nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.buf[c.offset]
	c.offset++
	return b, nil
}

// PeekU8 returns the next byte without consuming it.
func (c *Cursor) PeekU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return c.buf[c.offset], nil
}

// ReadU16 reads a big-endian 16-bit integer.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.offset:])
	c.offset += 2
	return v, nil
}

// ReadU32 reads a big-endian 32-bit integer.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.offset:])
	c.offset += 4
	return v, nil
}

// ReadBytes reads n bytes and returns a copy, so callers may keep the
// result after the input buffer is reused.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[c.offset:c.offset+n])
	c.offset += n
	return out, nil
}

// ReadTag reads an n-byte ASCII chunk identifier.
func (c *Cursor) ReadTag(n int) (string, error) {
	if err := c.need(n); err != nil {
		return "", err
	}
	tag := string(c.buf[c.offset : c.offset+n])
	c.offset += n
	return tag, nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.offset += n
	return nil
}
