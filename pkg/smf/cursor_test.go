package smf

import (
	"errors"
	"testing"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x4D, 0x54, 0x68, 0x64, 0x12, 0x34, 0x00, 0x00, 0x01, 0xE0, 0xAB})

	tag, err := c.ReadTag(4)
	if err != nil || tag != "MThd" {
		t.Fatalf("ReadTag = %q, %v", tag, err)
	}
	u16, err := c.ReadU16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16 = 0x%X, %v", u16, err)
	}
	u32, err := c.ReadU32()
	if err != nil || u32 != 0x000001E0 {
		t.Fatalf("ReadU32 = 0x%X, %v", u32, err)
	}
	peek, err := c.PeekU8()
	if err != nil || peek != 0xAB {
		t.Fatalf("PeekU8 = 0x%X, %v", peek, err)
	}
	if c.Offset() != 10 {
		t.Errorf("PeekU8 moved the cursor to %d", c.Offset())
	}
	u8, err := c.ReadU8()
	if err != nil || u8 != 0xAB {
		t.Fatalf("ReadU8 = 0x%X, %v", u8, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestCursorTruncation(t *testing.T) {
	tests := []struct {
		name      string
		read      func(c *Cursor) error
		requested int
	}{
		{"u8", func(c *Cursor) error { _, err := c.ReadU8(); return err }, 1},
		{"peek", func(c *Cursor) error { _, err := c.PeekU8(); return err }, 1},
		{"u16", func(c *Cursor) error { _, err := c.ReadU16(); return err }, 2},
		{"u32", func(c *Cursor) error { _, err := c.ReadU32(); return err }, 4},
		{"bytes", func(c *Cursor) error { _, err := c.ReadBytes(5); return err }, 5},
		{"tag", func(c *Cursor) error { _, err := c.ReadTag(4); return err }, 4},
		{"skip", func(c *Cursor) error { return c.Skip(3) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor([]byte{0x01, 0x02, 0x03})
			// leave one byte fewer than requested, or none at all
			c.offset = max(0, 4-tt.requested)
			at := c.Offset()

			err := tt.read(c)
			if !errors.Is(err, ErrUnexpectedEndOfData) {
				t.Fatalf("expected ErrUnexpectedEndOfData, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Offset != at || pe.Requested != tt.requested {
				t.Errorf("error offset/requested = %d/%d, want %d/%d", pe.Offset, pe.Requested, at, tt.requested)
			}
			if pe.Category() != CategoryTruncation {
				t.Errorf("Category = %s, want %s", pe.Category(), CategoryTruncation)
			}
			if c.Offset() != at {
				t.Errorf("failed read moved cursor from %d to %d", at, c.Offset())
			}
		})
	}
}

func TestCursorReadBytesCopies(t *testing.T) {
	buf := []byte{1, 2, 3}
	c := NewCursor(buf)
	out, err := c.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	buf[0] = 99
	if out[0] != 1 {
		t.Error("ReadBytes result aliases the input buffer")
	}
}
